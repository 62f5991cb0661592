package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	templatesErr  error
)

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		funcMap := template.FuncMap{
			"odd": func(i int) bool { return i%2 == 1 },
		}

		templates, templatesErr = template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	})

	return templates, templatesErr
}

func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}

// mustRenderTemplate renders a template and returns empty HTML on error.
// Component Render methods use it where an error cannot propagate.
func mustRenderTemplate(name string, data any) template.HTML {
	html, err := renderTemplate(name, data)
	if err != nil {
		return ""
	}

	return html
}

type pageData struct {
	Title       string
	Description string
	ProjectName string
	DarkClass   string
	Theme       ThemeConfig
	ExtraCSS    template.CSS
	Header      template.HTML
	Content     template.HTML
	Scripts     template.HTML
}

type headerData struct {
	ProjectName     string
	Subtitle        string
	Title           string
	Description     string
	ShowThemeToggle bool
}

type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
	Hint     *hintData
}

type hintData struct {
	Title string
	Items []template.HTML
}

type gridData struct {
	ColClass string
	Gap      string
	Items    []template.HTML
}

type statData struct {
	Label       string
	Value       string
	Detail      string
	DetailClass string
}

type tableData struct {
	Headers []string
	Rows    [][]template.HTML
	Striped bool
}

type alertData struct {
	Title       string
	Message     string
	BgClass     string
	BorderClass string
	TitleClass  string
	TextClass   string
}
