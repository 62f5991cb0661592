package grid

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/ncio"
)

const (
	testNY = 2
	testNX = 3
)

type staticVars map[string][]float64

// writeStatic writes a [2, 3] static grid file with the given fields.
func writeStatic(t *testing.T, vars staticVars) string {
	t.Helper()

	d := &ncio.Dataset{}
	d.AddCoord("yh", []float64{-10, 10})
	d.AddCoord("xh", []float64{0, 120, 240})

	for name, values := range vars {
		a := sparse.ZerosDense(testNY, testNX)
		copy(a.Elements, values)
		d.AddFloat(name, []string{"yh", "xh"}, a)
	}

	path := filepath.Join(t.TempDir(), "static.nc")
	require.NoError(t, ncio.Write(path, d))

	return path
}

func fullStatic(t *testing.T) staticVars {
	t.Helper()

	return staticVars{
		"geolat":    {-10, -10, -10, 10, 10, 10},
		"geolon":    {0, 120, 240, 0, 120, 240},
		"geolat_c":  {-9, -8, -9.5, 11, 12, 10.5},
		"deptho":    {1000, math.NaN(), 2000, 3000, 4000, 500},
		"areacello": {1, 2, 3, 4, 5, 6},
		"wet":       {1, 0, 1, 1, 1, 0},
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	g, err := Load(writeStatic(t, fullStatic(t)))
	require.NoError(t, err)

	ny, nx := g.Shape()
	assert.Equal(t, testNY, ny)
	assert.Equal(t, testNX, nx)
	assert.Equal(t, 1000.0, g.Depth.Elements[0])
	assert.Equal(t, 1.0, g.Wet.Elements[0])
}

func TestLoadFallbackNames(t *testing.T) {
	t.Parallel()

	vars := fullStatic(t)
	vars["depth_ocean"] = vars["deptho"]
	vars["area_t"] = vars["areacello"]
	delete(vars, "deptho")
	delete(vars, "areacello")
	delete(vars, "geolat_c")

	g, err := Load(writeStatic(t, vars))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, g.Depth.Elements[0])
	assert.Equal(t, 1.0, g.Area.Elements[0])
	// Corner latitudes fall back to cell centers.
	assert.Equal(t, g.Lat.Elements, g.CornerLat.Elements)
}

func TestLoadMissingField(t *testing.T) {
	t.Parallel()

	vars := fullStatic(t)
	delete(vars, "wet")

	_, err := Load(writeStatic(t, vars))
	require.ErrorIs(t, err, ErrMissingVar)
	assert.Contains(t, err.Error(), "wet")
}

func TestAreaWeights(t *testing.T) {
	t.Parallel()

	g, err := Load(writeStatic(t, fullStatic(t)))
	require.NoError(t, err)

	w := g.AreaWeights()

	assert.Equal(t, 1.0, w.Elements[0])
	assert.True(t, math.IsNaN(w.Elements[1]), "dry cell keeps no weight")
	assert.True(t, math.IsNaN(w.Elements[5]))
	assert.Equal(t, 5.0, w.Elements[4])

	// The grid's own area field is untouched.
	assert.Equal(t, 2.0, g.Area.Elements[1])
}

func TestFloorDepth(t *testing.T) {
	t.Parallel()

	g, err := Load(writeStatic(t, fullStatic(t)))
	require.NoError(t, err)

	d := g.FloorDepth()

	assert.Equal(t, 0.0, d.Elements[1])
	assert.Equal(t, 1000.0, d.Elements[0])
	assert.True(t, math.IsNaN(g.Depth.Elements[1]), "source depth keeps NaN")
}

func TestMeridionalLat(t *testing.T) {
	t.Parallel()

	g, err := Load(writeStatic(t, fullStatic(t)))
	require.NoError(t, err)

	assert.Equal(t, []float64{-8, 12}, g.MeridionalLat())
}
