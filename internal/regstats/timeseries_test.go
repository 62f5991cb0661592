package regstats

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/regions"
)

// seriesFixture builds a [2, 1, 2, 2] field, unit weights, and the two-row
// region split.
func seriesFixture(t *testing.T) (field, weights *sparse.DenseArray, set *regions.Set) {
	t.Helper()

	field = dense(t, []int{2, 1, 2, 2}, []float64{
		// t=0
		1, 2,
		3, 4,
		// t=1
		2, 4,
		6, 8,
	})
	weights = uniform([]int{1, 2, 2}, 1.0)
	set = twoRowRegions(t, 2)

	return field, weights, set
}

func TestMeanSeries(t *testing.T) {
	t.Parallel()

	field, weights, set := seriesFixture(t)

	out, err := MeanSeries(field, weights, set)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1}, out.Shape)

	// Region order, then time, then z.
	assert.InDelta(t, 1.5, out.Get(0, 0, 0), 1e-12) // Top, t=0
	assert.InDelta(t, 3.0, out.Get(0, 1, 0), 1e-12) // Top, t=1
	assert.InDelta(t, 3.5, out.Get(1, 0, 0), 1e-12) // Bottom, t=0
	assert.InDelta(t, 7.0, out.Get(1, 1, 0), 1e-12) // Bottom, t=1
}

func TestRMSESeries(t *testing.T) {
	t.Parallel()

	field, weights, set := seriesFixture(t)

	out, err := RMSESeries(field, weights, set)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt((1.0+4.0)/2.0), out.Get(0, 0, 0), 1e-12)
	assert.InDelta(t, math.Sqrt((9.0+16.0)/2.0), out.Get(1, 0, 0), 1e-12)
}

func TestSeriesWeightedByLevel(t *testing.T) {
	t.Parallel()

	// Two z levels with different weights on the top row.
	field := dense(t, []int{1, 2, 2, 2}, []float64{
		1, 3,
		0, 0,

		5, 7,
		0, 0,
	})
	weights := dense(t, []int{2, 2, 2}, []float64{
		1, 3,
		1, 1,

		2, 2,
		1, 1,
	})
	set := twoRowRegions(t, 2)

	out, err := MeanSeries(field, weights, set)
	require.NoError(t, err)

	// Top region, z=0: (1*1 + 3*3) / 4 = 2.5; z=1: (5*2 + 7*2) / 4 = 6.
	assert.InDelta(t, 2.5, out.Get(0, 0, 0), 1e-12)
	assert.InDelta(t, 6.0, out.Get(0, 0, 1), 1e-12)
}

// A field gap leaves its weight in the total: the mean dips instead of
// renormalizing. The weight mask must track the field's wet cells.
func TestSeriesMissingFieldKeepsWeightTotal(t *testing.T) {
	t.Parallel()

	field := dense(t, []int{1, 1, 2, 2}, []float64{
		math.NaN(), 2,
		3, 4,
	})
	weights := uniform([]int{1, 2, 2}, 1.0)
	set := twoRowRegions(t, 2)

	out, err := MeanSeries(field, weights, set)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, out.Get(0, 0, 0), 1e-12) // 2 / 2, not 2 / 1
}

func TestSeriesEmptyRegionIsNaN(t *testing.T) {
	t.Parallel()

	field := dense(t, []int{1, 1, 2, 2}, []float64{1, 2, 3, 4})
	weights := uniform([]int{1, 2, 2}, 1.0)

	masks := sparse.ZerosDense(1, 2, 2) // region covers nothing
	set, err := regions.NewSet([]string{"Empty"}, masks)
	require.NoError(t, err)

	out, err := MeanSeries(field, weights, set)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out.Get(0, 0, 0)))
}

func TestSeriesValidation(t *testing.T) {
	t.Parallel()

	set := twoRowRegions(t, 2)
	field := sparse.ZerosDense(1, 1, 2, 2)
	weights := uniform([]int{1, 2, 2}, 1.0)

	_, err := MeanSeries(sparse.ZerosDense(1, 2, 2), weights, set)
	require.ErrorIs(t, err, ErrFieldRank)

	_, err = MeanSeries(field, sparse.ZerosDense(2, 2), set)
	require.ErrorIs(t, err, ErrWeightsRank3)

	_, err = MeanSeries(field, uniform([]int{1, 2, 3}, 1.0), set)
	require.ErrorIs(t, err, ErrAxisMismatch)
	assert.Contains(t, err.Error(), "axis x")

	bad := &regions.Set{Names: nil, Masks: sparse.ZerosDense(1, 2, 2)}
	_, err = RMSESeries(field, weights, bad)
	require.ErrorIs(t, err, regions.ErrNoRegionAxis)
}
