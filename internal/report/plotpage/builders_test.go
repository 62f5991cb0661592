package plotpage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
)

func TestBuildLineChart(t *testing.T) {
	t.Parallel()

	opts := plotpage.DefaultChartOpts()
	labels := []string{"0001", "0002", "0003"}
	series := []plotpage.LineSeries{
		{
			Name:  "AMOC 26.5N",
			Data:  []plotpage.SeriesData{16.5, 17.1, 15.9},
			Color: "#0e7499",
		},
		{
			Name: "AMOC 45N",
			Data: []plotpage.SeriesData{12.2, 12.8, 11.7},
		},
	}

	chart := plotpage.BuildLineChart(opts, labels, series, "Sv")
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 2)
	require.Equal(t, "AMOC 26.5N", chart.MultiSeries[0].Name)
	require.Equal(t, "AMOC 45N", chart.MultiSeries[1].Name)
}

func TestBuildLineChart_NilOpts(t *testing.T) {
	t.Parallel()

	labels := []string{"0001"}
	series := []plotpage.LineSeries{
		{Name: "Mean", Data: []plotpage.SeriesData{3.5}},
	}

	chart := plotpage.BuildLineChart(nil, labels, series, "degC")
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
}

func TestBuildBarChart(t *testing.T) {
	t.Parallel()

	opts := plotpage.DefaultChartOpts()
	labels := []string{"Global", "Atlantic", "Pacific"}
	series := []plotpage.BarSeries{
		{
			Name:  "Mean",
			Data:  []plotpage.SeriesData{3.5, 4.1, 3.2},
			Color: "#159a80",
		},
	}

	chart := plotpage.BuildBarChart(opts, labels, series, "degC")
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
	require.Equal(t, "Mean", chart.MultiSeries[0].Name)
}

func TestBuildHeatMap(t *testing.T) {
	t.Parallel()

	opts := plotpage.NewChartOpts(plotpage.ThemeLight)
	xLabels := []string{"-30", "0", "30"}
	yLabels := []string{"0", "500", "1000"}
	cells := []plotpage.HeatMapCell{
		{X: 0, Y: 0, Value: -4.2},
		{X: 1, Y: 1, Value: 0},
		{X: 2, Y: 2, Value: 12.7},
	}

	chart := plotpage.BuildHeatMap(
		opts,
		"Latitude", xLabels,
		"Depth (m)", yLabels,
		cells,
		-15, 15,
		plotpage.DivergingPalette(),
	)
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
	require.Len(t, chart.MultiSeries[0].Data, len(cells))
}

func TestBuildHeatMap_NilOpts(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildHeatMap(
		nil,
		"x", []string{"a"},
		"y", []string{"b"},
		[]plotpage.HeatMapCell{{X: 0, Y: 0, Value: 1}},
		0, 1,
		plotpage.SequentialPalette(),
	)
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
}
