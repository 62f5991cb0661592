package regstats

import (
	"fmt"
	"math"

	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
)

// meanStat is the statistic plotted as the per-region time series.
const meanStat = "mean"

// Sections builds one report section per variable: the regional mean time
// series with a table of time-averaged statistics underneath.
func Sections(vars []*VariableStats, theme plotpage.Theme) []plotpage.Section {
	co := plotpage.NewChartOpts(theme)
	palette := plotpage.ChartPalette(theme)

	sections := make([]plotpage.Section, len(vars))
	for i, v := range vars {
		sections[i] = variableSection(v, co, palette)
	}

	return sections
}

func variableSection(v *VariableStats, co *plotpage.ChartOpts, palette []string) plotpage.Section {
	title := v.Variable
	if v.Long != "" {
		title = fmt.Sprintf("%s (%s)", v.Long, v.Variable)
	}

	if len(v.Labels) == 0 {
		return plotpage.Section{
			Title:    title,
			Subtitle: "Area-weighted regional means per record.",
			Chart:    plotpage.NewText("No records to plot for this variable."),
		}
	}

	series := make([]plotpage.LineSeries, len(v.Regions))

	for r, region := range v.Regions {
		values := v.StatSeries(region, meanStat)

		// NaN stays nil so the chart shows a gap instead of failing to
		// serialize.
		data := make([]plotpage.SeriesData, len(values))
		for t, x := range values {
			if !math.IsNaN(x) {
				data[t] = x
			}
		}

		series[r] = plotpage.LineSeries{
			Name:  region,
			Data:  data,
			Color: palette[r%len(palette)],
		}
	}

	chart := plotpage.BuildLineChart(co, v.Labels, series, v.Units)

	return plotpage.Section{
		Title:    title,
		Subtitle: "Area-weighted regional means per record.",
		Chart:    plotpage.NewStack(plotpage.WrapChart(chart), meanBarChart(v, co, palette), statTable(v)),
		Hint: plotpage.Hint{
			Title: "How to interpret:",
			Items: []string{
				"Each line is the area-weighted horizontal mean inside one region.",
				"The bars compare the record-averaged mean across regions.",
				"A region with no wet cells reports NaN rather than zero.",
			},
		},
	}
}

// meanBarChart compares the time-averaged mean across regions.
func meanBarChart(v *VariableStats, co *plotpage.ChartOpts, palette []string) plotpage.Renderable {
	data := make([]plotpage.SeriesData, len(v.Regions))
	for r, region := range v.Regions {
		if x := v.TimeAverage(region, meanStat); !math.IsNaN(x) {
			data[r] = x
		}
	}

	chart := plotpage.BuildBarChart(co, v.Regions, []plotpage.BarSeries{
		{Name: "Record-averaged mean", Data: data, Color: palette[0]},
	}, v.Units)

	return plotpage.WrapChart(chart)
}

// statTable lists each region's time-averaged statistics.
func statTable(v *VariableStats) *plotpage.Table {
	headers := append([]string{"Region"}, StatLabels...)
	table := plotpage.NewTable(headers)

	for _, region := range v.Regions {
		row := make([]string, 0, len(headers))
		row = append(row, region)

		for _, stat := range StatLabels {
			row = append(row, fmt.Sprintf("%.4g", v.TimeAverage(region, stat)))
		}

		table.AddRow(row...)
	}

	return table
}
