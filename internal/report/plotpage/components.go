package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

const (
	maxGridColumns = 4
)

// Tone selects the semantic color of stats and alerts.
type Tone string

// Tone constants.
const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneWarning Tone = "warning"
	ToneBad     Tone = "bad"
	ToneInfo    Tone = "info"
)

// Text renders plain text content.
type Text struct {
	Content string
}

// NewText creates a new text block.
func NewText(content string) *Text {
	return &Text{Content: content}
}

// Render writes the text content.
func (t *Text) Render(w io.Writer) error {
	_, err := w.Write([]byte(template.HTMLEscapeString(t.Content)))
	if err != nil {
		return fmt.Errorf("writing text: %w", err)
	}

	return nil
}

// Grid renders a responsive grid layout.
type Grid struct {
	Columns int
	Gap     string
	Items   []Renderable
}

// NewGrid creates a new grid layout.
func NewGrid(columns int, items ...Renderable) *Grid {
	if columns < 1 {
		columns = 1
	}

	if columns > maxGridColumns {
		columns = maxGridColumns
	}

	return &Grid{Columns: columns, Gap: "gap-4", Items: items}
}

// Render writes the grid HTML.
func (g *Grid) Render(w io.Writer) error {
	colClass := map[int]string{
		1: "grid-cols-1",
		2: "grid-cols-1 md:grid-cols-2",
		3: "grid-cols-1 md:grid-cols-2 lg:grid-cols-3",
		4: "grid-cols-1 md:grid-cols-2 lg:grid-cols-4",
	}[g.Columns]

	items := make([]template.HTML, len(g.Items))

	for i, item := range g.Items {
		if item != nil {
			var buf bytes.Buffer

			err := item.Render(&buf)
			if err != nil {
				return fmt.Errorf("rendering grid item %d: %w", i, err)
			}

			items[i] = template.HTML(buf.String())
		}
	}

	html := mustRenderTemplate("grid.html", gridData{
		ColClass: colClass,
		Gap:      g.Gap,
		Items:    items,
	})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing grid: %w", err)
	}

	return nil
}

// Stat renders a single metric with an optional detail line, such as a
// transport extremum with the cell where it occurs.
type Stat struct {
	Label  string
	Value  string
	Detail string
	Tone   Tone
}

// NewStat creates a new stat display.
func NewStat(label, value string) *Stat {
	return &Stat{Label: label, Value: value}
}

// WithDetail sets the detail line and its tone.
func (s *Stat) WithDetail(detail string, tone Tone) *Stat {
	s.Detail = detail
	s.Tone = tone

	return s
}

// Render writes the stat HTML.
func (s *Stat) Render(w io.Writer) error {
	detailClass := "text-slate-500 dark:text-slate-400"

	switch s.Tone {
	case ToneGood:
		detailClass = "text-emerald-600 dark:text-emerald-400"
	case ToneBad:
		detailClass = "text-rose-600 dark:text-rose-400"
	case ToneWarning:
		detailClass = "text-amber-600 dark:text-amber-400"
	case ToneInfo:
		detailClass = "text-sky-600 dark:text-sky-400"
	case ToneNeutral:
		detailClass = "text-slate-500 dark:text-slate-400"
	}

	html := mustRenderTemplate("stat.html", statData{
		Label:       s.Label,
		Value:       s.Value,
		Detail:      s.Detail,
		DetailClass: detailClass,
	})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing stat: %w", err)
	}

	return nil
}

// Alert renders an alert/notification box.
type Alert struct {
	Title   string
	Message string
	Tone    Tone
}

// NewAlert creates a new alert.
func NewAlert(title, message string, tone Tone) *Alert {
	return &Alert{Title: title, Message: message, Tone: tone}
}

// Render writes the alert HTML.
func (a *Alert) Render(w io.Writer) error {
	var bgClass, borderClass, textClass, titleClass string

	switch a.Tone {
	case ToneGood:
		bgClass = "bg-emerald-50 dark:bg-emerald-950"
		borderClass = "border-emerald-500"
		textClass = "text-emerald-700 dark:text-emerald-300"
		titleClass = "text-emerald-800 dark:text-emerald-200"
	case ToneWarning:
		bgClass = "bg-amber-50 dark:bg-amber-950"
		borderClass = "border-amber-500"
		textClass = "text-amber-700 dark:text-amber-300"
		titleClass = "text-amber-800 dark:text-amber-200"
	case ToneBad:
		bgClass = "bg-rose-50 dark:bg-rose-950"
		borderClass = "border-rose-500"
		textClass = "text-rose-700 dark:text-rose-300"
		titleClass = "text-rose-800 dark:text-rose-200"
	case ToneInfo:
		bgClass = "bg-sky-50 dark:bg-sky-950"
		borderClass = "border-sky-500"
		textClass = "text-sky-700 dark:text-sky-300"
		titleClass = "text-sky-800 dark:text-sky-200"
	case ToneNeutral:
		bgClass = "bg-slate-50 dark:bg-slate-900"
		borderClass = "border-slate-500"
		textClass = "text-slate-700 dark:text-slate-300"
		titleClass = "text-slate-800 dark:text-slate-200"
	default:
		bgClass = "bg-slate-50 dark:bg-slate-900"
		borderClass = "border-slate-500"
		textClass = "text-slate-700 dark:text-slate-300"
		titleClass = "text-slate-800 dark:text-slate-200"
	}

	html := mustRenderTemplate("alert.html", alertData{
		Title:       a.Title,
		Message:     a.Message,
		BgClass:     bgClass,
		BorderClass: borderClass,
		TitleClass:  titleClass,
		TextClass:   textClass,
	})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing alert: %w", err)
	}

	return nil
}

// Stack renders components vertically in document order.
type Stack struct {
	Items []Renderable
}

// NewStack creates a vertical stack of components.
func NewStack(items ...Renderable) *Stack {
	return &Stack{Items: items}
}

// Render writes the stacked items.
func (s *Stack) Render(w io.Writer) error {
	_, err := io.WriteString(w, `<div class="space-y-4">`)
	if err != nil {
		return fmt.Errorf("writing stack: %w", err)
	}

	for i, item := range s.Items {
		if item == nil {
			continue
		}

		_, err = io.WriteString(w, `<div>`)
		if err != nil {
			return fmt.Errorf("writing stack item %d: %w", i, err)
		}

		renderErr := item.Render(w)
		if renderErr != nil {
			return fmt.Errorf("rendering stack item %d: %w", i, renderErr)
		}

		_, err = io.WriteString(w, `</div>`)
		if err != nil {
			return fmt.Errorf("writing stack item %d: %w", i, err)
		}
	}

	_, err = io.WriteString(w, `</div>`)
	if err != nil {
		return fmt.Errorf("writing stack: %w", err)
	}

	return nil
}

// Table renders an HTML table.
type Table struct {
	Headers []string
	Rows    [][]string
	Striped bool
}

// NewTable creates a new table.
func NewTable(headers []string) *Table {
	return &Table{Headers: headers, Striped: true}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)

	return t
}

// WithStriped enables/disables striping.
func (t *Table) WithStriped(striped bool) *Table {
	t.Striped = striped

	return t
}

// Render writes the table HTML.
func (t *Table) Render(w io.Writer) error {
	// Convert string rows to template.HTML to allow raw HTML in cells.
	htmlRows := make([][]template.HTML, len(t.Rows))
	for i, row := range t.Rows {
		htmlRows[i] = make([]template.HTML, len(row))
		for j, cell := range row {
			htmlRows[i][j] = template.HTML(cell)
		}
	}

	html := mustRenderTemplate("table.html", tableData{
		Headers: t.Headers,
		Rows:    htmlRows,
		Striped: t.Striped,
	})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	return nil
}
