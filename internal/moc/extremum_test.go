package moc

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coordGrids builds [nz, ny] latitude and depth arrays: latitude varies along
// y, depth (negative down) along the leading axis.
func coordGrids(lats, depths []float64) (lat2, depth2 *sparse.DenseArray) {
	nz := len(depths)
	ny := len(lats)
	lat2 = sparse.ZerosDense(nz, ny)
	depth2 = sparse.ZerosDense(nz, ny)

	for k := range nz {
		for j := range ny {
			lat2.Set(lats[j], k, j)
			depth2.Set(depths[k], k, j)
		}
	}

	return lat2, depth2
}

func TestFindExtremumUnboundedEqualsGlobal(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{-60, 0, 30, 60}, []float64{-100, -1000, -3000})

	psi := sparse.ZerosDense(3, 4)
	values := []float64{
		1.5, -2.25, 18.0, 3.0,
		0.5, 7.75, -11.5, 2.0,
		-1.0, 4.0, 9.0, -6.5,
	}
	copy(psi.Elements, values)

	maxCell, err := FindExtremum(lat2, depth2, psi, UnboundedWindow(), SignMax)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, maxCell.Value, 0)
	assert.Equal(t, 0, maxCell.J)
	assert.Equal(t, 2, maxCell.I)
	assert.InDelta(t, 30.0, maxCell.Lat, 0)
	assert.InDelta(t, -100.0, maxCell.Depth, 0)

	minCell, err := FindExtremum(lat2, depth2, psi, UnboundedWindow(), SignMin)
	require.NoError(t, err)
	assert.InDelta(t, -11.5, minCell.Value, 0)
	assert.Equal(t, 1, minCell.J)
	assert.Equal(t, 2, minCell.I)
}

func TestFindExtremumWindowRestricts(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{-60, 0, 30, 60}, []float64{-100, -1000, -3000})

	psi := sparse.ZerosDense(3, 4)
	copy(psi.Elements, []float64{
		1.5, -2.25, 18.0, 3.0,
		0.5, 7.75, -11.5, 2.0,
		-1.0, 4.0, 9.0, -6.5,
	})

	// Only cells deeper than 500 m and north of 20N qualify: -11.5, 2.0,
	// 9.0, -6.5. The max among them is 9.0.
	window := Window{MinLat: 20, MaxLat: 90, MinDepth: 500}

	cell, err := FindExtremum(lat2, depth2, psi, window, SignMax)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, cell.Value, 0)
	assert.Equal(t, 2, cell.J)
	assert.Equal(t, 2, cell.I)
}

// The located cell may sit outside the window: the window only selects the
// value, and the position search runs over the full array in row-major order.
func TestFindExtremumLocatesOverFullArray(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{0, 40}, []float64{-100, -2000})

	// 5.0 appears at (0,0), outside the window, before the windowed cell
	// (1,1) holding the same value.
	psi := sparse.ZerosDense(2, 2)
	copy(psi.Elements, []float64{
		5.0, 1.0,
		2.0, 5.0,
	})

	window := Window{MinLat: 30, MaxLat: 90, MinDepth: 1000}

	cell, err := FindExtremum(lat2, depth2, psi, window, SignMax)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, cell.Value, 0)
	assert.Equal(t, 0, cell.J, "first row-major match wins")
	assert.Equal(t, 0, cell.I)
	assert.InDelta(t, 0.0, cell.Lat, 0)
}

func TestFindExtremumFirstMatchTieBreak(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{0, 10, 20}, []float64{-500})

	psi := sparse.ZerosDense(1, 3)
	copy(psi.Elements, []float64{3.5, 3.5, 3.5})

	cell, err := FindExtremum(lat2, depth2, psi, UnboundedWindow(), SignMax)
	require.NoError(t, err)
	assert.Equal(t, 0, cell.J)
	assert.Equal(t, 0, cell.I)
}

func TestFindExtremumSkipsNaNInWindow(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{0, 10}, []float64{-500})

	psi := sparse.ZerosDense(1, 2)
	psi.Elements[0] = math.NaN()
	psi.Elements[1] = -4.0

	cell, err := FindExtremum(lat2, depth2, psi, UnboundedWindow(), SignMax)
	require.NoError(t, err)
	assert.InDelta(t, -4.0, cell.Value, 0)
}

func TestFindExtremumEmptyWindow(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{0, 10}, []float64{-500})
	psi := sparse.ZerosDense(1, 2)

	_, err := FindExtremum(lat2, depth2, psi, Window{MinLat: 50, MaxLat: 60, MinDepth: 0}, SignMax)
	require.ErrorIs(t, err, ErrEmptyWindow)

	// A window deeper than every cell is empty too.
	_, err = FindExtremum(lat2, depth2, psi, Window{MinLat: -90, MaxLat: 90, MinDepth: 6000}, SignMax)
	require.ErrorIs(t, err, ErrEmptyWindow)
}

func TestFindExtremumShapeMismatch(t *testing.T) {
	t.Parallel()

	lat2, depth2 := coordGrids([]float64{0, 10}, []float64{-500})
	psi := sparse.ZerosDense(2, 2)

	_, err := FindExtremum(lat2, depth2, psi, UnboundedWindow(), SignMax)
	require.ErrorIs(t, err, ErrCoordShape)
}
