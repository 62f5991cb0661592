package plotpage

// Theme selects the report color scheme.
type Theme string

// Available themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeConfig holds the resolved colors for a theme.
type ThemeConfig struct {
	Background      string
	Surface         string
	Border          string
	TextPrimary     string
	TextSecondary   string
	TextMuted       string
	Accent          string
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
	EChartsTheme    string
}

// GetThemeConfig returns the color configuration for a theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return ThemeConfig{
			Background:      "#0c1420",
			Surface:         "#16202e",
			Border:          "#2a3a4e",
			TextPrimary:     "#e6edf5",
			TextSecondary:   "#a8b8ca",
			TextMuted:       "#6e8098",
			Accent:          "#4cc3e8",
			ChartBackground: "transparent",
			ChartGrid:       "#2a3a4e",
			ChartAxis:       "#6e8098",
			ChartText:       "#e6edf5",
			ChartTextMuted:  "#a8b8ca",
			EChartsTheme:    "dark",
		}
	}

	return ThemeConfig{
		Background:      "#f6f8fa",
		Surface:         "#ffffff",
		Border:          "#d8e0e8",
		TextPrimary:     "#1a2633",
		TextSecondary:   "#46586c",
		TextMuted:       "#7a8aa0",
		Accent:          "#0e7499",
		ChartBackground: "transparent",
		ChartGrid:       "#e4eaf0",
		ChartAxis:       "#9aa8ba",
		ChartText:       "#1a2633",
		ChartTextMuted:  "#46586c",
		EChartsTheme:    "westeros",
	}
}

// ChartPalette returns the series colors for a theme, ordered by priority.
func ChartPalette(theme Theme) []string {
	if theme == ThemeDark {
		return []string{
			"#4cc3e8", "#5ad8b0", "#e8b84c", "#e87a9a",
			"#9a8ae8", "#e8a05a", "#6ab4f0", "#b0d86a",
		}
	}

	return []string{
		"#0e7499", "#159a80", "#c28a1a", "#c2486e",
		"#6a58c2", "#c26a2a", "#2a7ec2", "#7aa02a",
	}
}

// DivergingPalette returns colors for signed fields, most negative to most
// positive, with white at zero.
func DivergingPalette() []string {
	return []string{
		"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8",
		"#ffffff",
		"#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026",
	}
}

// SequentialPalette returns colors for unsigned fields, low to high.
func SequentialPalette() []string {
	return []string{
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1",
		"#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b",
	}
}
