package regstats

import (
	"math"
	"slices"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/regions"
)

// twoRegionSet splits a [1, 4] grid into a left and a right half.
func twoRegionSet(t *testing.T) *regions.Set {
	t.Helper()

	masks := dense(t, []int{2, 1, 4}, []float64{
		1, 1, 0, 0,
		0, 0, 1, 1,
	})

	set, err := regions.NewSet([]string{"Left", "Right"}, masks)
	require.NoError(t, err)

	return set
}

func TestCollectStacksRecords(t *testing.T) {
	t.Parallel()

	set := twoRegionSet(t)
	weights := uniform([]int{1, 4}, 1.0)

	records := []*sparse.DenseArray{
		dense(t, []int{1, 4}, []float64{1, 1, 5, 5}),
		dense(t, []int{1, 4}, []float64{2, 2, 8, 8}),
	}

	cube, err := Collect(records, weights, set)
	require.NoError(t, err)
	require.Equal(t, []int{2, len(StatLabels), 2}, cube.Shape)

	vs := &VariableStats{
		Variable: "tos",
		Labels:   []string{"0001-01", "0001-02"},
		Regions:  set.Names,
		Stats:    cube,
	}

	assert.Equal(t, []float64{1, 2}, vs.StatSeries("Left", "mean"))
	assert.Equal(t, []float64{5, 8}, vs.StatSeries("Right", "mean"))
	assert.Equal(t, []float64{5, 8}, vs.StatSeries("Right", "min"))
	assert.Equal(t, []float64{5, 8}, vs.StatSeries("Right", "rms"))
	assert.Equal(t, []float64{0, 0}, vs.StatSeries("Left", "std"))
}

func TestCollectEmptySeries(t *testing.T) {
	t.Parallel()

	set := twoRegionSet(t)

	_, err := Collect(nil, uniform([]int{1, 4}, 1.0), set)
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestCollectShapeErrorNamesRecord(t *testing.T) {
	t.Parallel()

	set := twoRegionSet(t)
	weights := uniform([]int{1, 4}, 1.0)

	records := []*sparse.DenseArray{
		dense(t, []int{1, 4}, []float64{1, 1, 5, 5}),
		uniform([]int{2, 4}, 1.0),
	}

	_, err := Collect(records, weights, set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestStatSeriesUnknownLabels(t *testing.T) {
	t.Parallel()

	vs := &VariableStats{
		Regions: []string{"Left"},
		Stats:   sparse.ZerosDense(1, len(StatLabels), 2),
	}

	assert.Nil(t, vs.StatSeries("Nowhere", "mean"))
	assert.Nil(t, vs.StatSeries("Left", "median"))
}

func TestTimeAverageSkipsNaN(t *testing.T) {
	t.Parallel()

	meanIdx := slices.Index(StatLabels, "mean")
	require.GreaterOrEqual(t, meanIdx, 0)

	nt := 3
	stats := sparse.ZerosDense(1, len(StatLabels), nt)
	stats.Elements[meanIdx*nt+0] = 4
	stats.Elements[meanIdx*nt+1] = math.NaN()
	stats.Elements[meanIdx*nt+2] = 6

	vs := &VariableStats{Regions: []string{"Left"}, Stats: stats}

	assert.InDelta(t, 5.0, vs.TimeAverage("Left", "mean"), 1e-12)
	assert.True(t, math.IsNaN(vs.TimeAverage("Nowhere", "mean")))
}
