package moc

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
)

const (
	// maxHeatMapColumns caps the latitude resolution of a rendered
	// section so the HTML stays responsive on high-resolution grids.
	maxHeatMapColumns = 180

	statGridColumns = 4
)

// Sections builds the report sections for one overturning analysis: the
// global and Atlantic streamfunction sections with their annotated extrema,
// then the overturning strength time series.
func Sections(a *Analysis, theme plotpage.Theme) []plotpage.Section {
	co := plotpage.NewChartOpts(theme)
	palette := plotpage.ChartPalette(theme)

	sections := []plotpage.Section{
		profileSection(a.Global, a, co, globalAnnotations,
			"Global Overturning Streamfunction",
			[]string{
				"Positive cells circulate clockwise: northward flow near the surface, southward at depth.",
				"The negative cell below 2000 m is the abyssal circulation fed from the Southern Ocean.",
				"The color range is clipped at the strongest cell of this section.",
			}),
		profileSection(a.Atlantic, a, co, atlanticAnnotations,
			"Atlantic Overturning Streamfunction",
			[]string{
				"The maximum near 1000 m in the subtropics is the upper AMOC cell.",
				"The RAPID band value is directly comparable to the observed transport at 26.5N.",
				"Masked Pacific and Indian cells do not contribute to this section.",
			}),
		seriesSection(a, co, palette),
	}

	return sections
}

// profileSection renders one streamfunction as a latitude-depth heatmap with
// its annotated extrema underneath. Annotation windows that matched no cell
// on this grid are called out in a warning.
func profileSection(p Profile, a *Analysis, co *plotpage.ChartOpts, anns []annotation, title string, hints []string) plotpage.Section {
	xLabels, yLabels, cells, limit := heatMapData(p.Psi, a.Lat, a.InterfaceDepth)

	chart := plotpage.BuildHeatMap(
		co,
		"Latitude", xLabels,
		"Depth (m)", yLabels,
		cells,
		-limit, limit,
		plotpage.DivergingPalette(),
	)

	subtitle := fmt.Sprintf("Time-mean %s section in %s.", p.Name, a.Units)
	if len(a.Years) > 0 {
		subtitle = fmt.Sprintf("Time-mean %s section in %s, years %04d to %04d.",
			p.Name, a.Units, a.Years[0], a.Years[len(a.Years)-1])
	}

	items := []plotpage.Renderable{plotpage.WrapChart(chart), extremaGrid(p, a.Units)}

	if missing := missingAnnotations(p, anns); len(missing) > 0 {
		items = append(items, plotpage.NewAlert(
			"Empty annotation windows",
			fmt.Sprintf("No cells fall inside: %s.", strings.Join(missing, ", ")),
			plotpage.ToneWarning,
		))
	}

	return plotpage.Section{
		Title:    title,
		Subtitle: subtitle,
		Chart:    plotpage.NewStack(items...),
		Hint: plotpage.Hint{
			Title: "How to interpret:",
			Items: hints,
		},
	}
}

// missingAnnotations lists the annotation labels a profile has no extremum
// for.
func missingAnnotations(p Profile, anns []annotation) []string {
	located := make(map[string]bool, len(p.Extrema))
	for _, e := range p.Extrema {
		located[e.Label] = true
	}

	var missing []string

	for _, ann := range anns {
		if !located[ann.label] {
			missing = append(missing, ann.label)
		}
	}

	return missing
}

// seriesSection renders the annual overturning strength at the reference
// latitude bands.
func seriesSection(a *Analysis, co *plotpage.ChartOpts, palette []string) plotpage.Section {
	if len(a.Years) == 0 {
		return plotpage.Section{
			Title:    "Overturning Strength",
			Subtitle: "Annual-mean Atlantic overturning maximum at the reference latitude bands.",
			Chart:    plotpage.NewText("No annual records to plot."),
		}
	}

	labels := make([]string, len(a.Years))
	data26 := make([]plotpage.SeriesData, len(a.Years))
	data45 := make([]plotpage.SeriesData, len(a.Years))

	for t, year := range a.Years {
		labels[t] = fmt.Sprintf("%04d", year)
		data26[t] = round2(a.Series26[t])
		data45[t] = round2(a.Series45[t])
	}

	chart := plotpage.BuildLineChart(co, labels, []plotpage.LineSeries{
		{Name: "AMOC 26.5N", Data: data26, Color: palette[0]},
		{Name: "AMOC 45N", Data: data45, Color: palette[1]},
	}, a.Units)

	return plotpage.Section{
		Title:    "Overturning Strength",
		Subtitle: "Annual-mean Atlantic overturning maximum at the reference latitude bands.",
		Chart:    plotpage.WrapChart(chart),
		Hint: plotpage.Hint{
			Title: "How to interpret:",
			Items: []string{
				"Each point is one annual mean; submonthly variability is averaged out.",
				"A sustained multi-decade drift means the overturning has not equilibrated.",
				"26.5N tracks the RAPID array; 45N tracks the subpolar gyre boundary.",
			},
		},
	}
}

// extremaGrid lays the annotated extrema of a profile out as stat cards.
func extremaGrid(p Profile, units string) *plotpage.Grid {
	items := make([]plotpage.Renderable, len(p.Extrema))

	for i, e := range p.Extrema {
		value := fmt.Sprintf("%.1f %s", e.Cell.Value, units)
		detail := fmt.Sprintf("at %s, %.0f m", latLabel(e.Cell.Lat), -e.Cell.Depth)

		items[i] = plotpage.NewStat(e.Label, value).WithDetail(detail, plotpage.ToneInfo)
	}

	return plotpage.NewGrid(statGridColumns, items...)
}

// heatMapData flattens a [interface, y] streamfunction into heatmap cells.
// Latitude columns are strided down to maxHeatMapColumns, and the y axis is
// reversed so the surface renders at the top. limit is the largest finite
// cell magnitude of the strided section.
func heatMapData(psi *sparse.DenseArray, lat, interfaceDepth []float64) (xLabels, yLabels []string, cells []plotpage.HeatMapCell, limit float64) {
	nzi := psi.Shape[0]
	ny := psi.Shape[1]

	stride := 1
	if ny > maxHeatMapColumns {
		stride = (ny + maxHeatMapColumns - 1) / maxHeatMapColumns
	}

	for j := 0; j < ny; j += stride {
		xLabels = append(xLabels, fmt.Sprintf("%.1f", lat[j]))
	}

	yLabels = make([]string, nzi)
	for k := range nzi {
		yLabels[k] = fmt.Sprintf("%.0f", -interfaceDepth[nzi-1-k])
	}

	for k := range nzi {
		row := nzi - 1 - k

		for x, j := 0, 0; j < ny; x, j = x+1, j+stride {
			v := psi.Elements[k*ny+j]
			if math.IsNaN(v) {
				continue
			}

			if mag := math.Abs(v); mag > limit {
				limit = mag
			}

			cells = append(cells, plotpage.HeatMapCell{X: x, Y: row, Value: round2(v)})
		}
	}

	return xLabels, yLabels, cells, math.Ceil(limit)
}

// latLabel formats a latitude with its hemisphere suffix.
func latLabel(lat float64) string {
	if lat < 0 {
		return fmt.Sprintf("%.1fS", -lat)
	}

	return fmt.Sprintf("%.1fN", lat)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
