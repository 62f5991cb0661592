package plotpage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderDiagnosticPage_CreatesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	renderer := &MultiPageRenderer{
		OutputDir: dir,
		Title:     "ocean.stats.c96",
		Theme:     ThemeLight,
	}

	sections := []Section{
		{Title: "Overturning Streamfunction", Subtitle: "Global"},
		{Title: "AMOC Time Series", Subtitle: "Annual means"},
	}

	err := renderer.RenderDiagnosticPage("moc", "Meridional Overturning", sections)
	if err != nil {
		t.Fatalf("RenderDiagnosticPage: %v", err)
	}

	outPath := filepath.Join(dir, "moc.html")

	data, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("Expected file %s to exist: %v", outPath, readErr)
	}

	html := string(data)

	// Verify standalone HTML with echarts + tailwind CDN.
	if !strings.Contains(html, "cdn.tailwindcss.com") {
		t.Error("Expected Tailwind CDN")
	}

	if !strings.Contains(html, "echarts.min.js") {
		t.Error("Expected ECharts CDN")
	}

	// Verify sections appear.
	if !strings.Contains(html, "Overturning Streamfunction") {
		t.Error("Expected section title 'Overturning Streamfunction'")
	}

	if !strings.Contains(html, "AMOC Time Series") {
		t.Error("Expected section title 'AMOC Time Series'")
	}

	// Verify page title.
	if !strings.Contains(html, "Meridional Overturning") {
		t.Error("Expected page title")
	}

	// Verify back-to-index navigation.
	if !strings.Contains(html, "index.html") {
		t.Error("Expected navigation link to index.html")
	}
}

func TestRenderDiagnosticPage_DarkTheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	renderer := &MultiPageRenderer{
		OutputDir: dir,
		Title:     "Case",
		Theme:     ThemeDark,
	}

	err := renderer.RenderDiagnosticPage("test", "Test", []Section{
		{Title: "S1"},
	})
	if err != nil {
		t.Fatalf("RenderDiagnosticPage: %v", err)
	}

	data, readErr := os.ReadFile(filepath.Join(dir, "test.html"))
	if readErr != nil {
		t.Fatalf("ReadFile: %v", readErr)
	}

	if !strings.Contains(string(data), `class="dark"`) {
		t.Error("Expected dark theme class")
	}
}

func TestRenderIndex_CreatesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	renderer := &MultiPageRenderer{
		OutputDir: dir,
		Title:     "My Case",
		Theme:     ThemeLight,
	}

	pages := []PageMeta{
		{ID: "moc", Title: "Meridional Overturning", Description: "Streamfunction and AMOC"},
		{ID: "surface", Title: "Surface Fields", Description: "Area-weighted regional stats"},
		{ID: "forcing", Title: "Surface Forcing", Description: "Freshwater and heat fluxes"},
	}

	err := renderer.RenderIndex(pages)
	if err != nil {
		t.Fatalf("RenderIndex: %v", err)
	}

	outPath := filepath.Join(dir, "index.html")

	data, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("Expected index.html to exist: %v", readErr)
	}

	html := string(data)

	// Verify standalone HTML.
	if !strings.Contains(html, "cdn.tailwindcss.com") {
		t.Error("Expected Tailwind CDN")
	}

	// Verify all diagnostic links.
	for _, name := range []string{"moc.html", "surface.html", "forcing.html"} {
		if !strings.Contains(html, name) {
			t.Errorf("Expected link to %s", name)
		}
	}

	// Verify titles and descriptions appear.
	if !strings.Contains(html, "Meridional Overturning") {
		t.Error("Expected 'Meridional Overturning' title")
	}

	if !strings.Contains(html, "Streamfunction and AMOC") {
		t.Error("Expected page description")
	}

	// Verify report title appears.
	if !strings.Contains(html, "My Case") {
		t.Error("Expected report title")
	}
}

func TestMultiPageRenderer_AllPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	renderer := &MultiPageRenderer{
		OutputDir: dir,
		Title:     "Full Report",
		Theme:     ThemeLight,
	}

	pages := []PageMeta{
		{ID: "moc", Title: "Overturning"},
		{ID: "surface", Title: "Surface"},
		{ID: "forcing", Title: "Forcing"},
	}

	for _, p := range pages {
		renderErr := renderer.RenderDiagnosticPage(p.ID, p.Title, []Section{
			{Title: p.Title + " Section"},
		})
		if renderErr != nil {
			t.Fatalf("RenderDiagnosticPage(%s): %v", p.ID, renderErr)
		}
	}

	err := renderer.RenderIndex(pages)
	if err != nil {
		t.Fatalf("RenderIndex: %v", err)
	}

	expectedFiles := []string{"moc.html", "surface.html", "forcing.html", "index.html"}
	for _, name := range expectedFiles {
		fpath := filepath.Join(dir, name)

		_, statErr := os.Stat(fpath)
		if os.IsNotExist(statErr) {
			t.Errorf("Expected file %s to exist", name)
		}
	}
}
