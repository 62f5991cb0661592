// Package grid loads the static horizontal grid of a MOM6 case: cell
// coordinates, corner latitudes, floor depth, cell area and the wet mask.
// Variable names follow the static file conventions, with fallbacks for
// older diagnostics.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/ncio"
)

// Static file variable candidates, in preference order.
var (
	latVars   = []string{"geolat"}
	lonVars   = []string{"geolon"}
	depthVars = []string{"deptho", "depth_ocean"}
	areaVars  = []string{"areacello", "area_t"}
	wetVars   = []string{"wet"}

	// cornerLatVars fall back to cell centers when the corner field was
	// not written.
	cornerLatVars = []string{"geolat_c", "geolat"}
)

const rankYX = 2

// Sentinel errors for grid loading.
var (
	// ErrMissingVar indicates a static file without any candidate for a
	// required field.
	ErrMissingVar = errors.New("static grid variable not found")

	// ErrGridShape indicates grid fields that disagree on shape.
	ErrGridShape = errors.New("grid fields disagree on shape")
)

// Grid holds the static fields of one model case, all [y, x].
type Grid struct {
	Lat       *sparse.DenseArray
	Lon       *sparse.DenseArray
	CornerLat *sparse.DenseArray
	Depth     *sparse.DenseArray
	Area      *sparse.DenseArray
	Wet       *sparse.DenseArray
}

// Load reads the static grid file of a case.
func Load(path string) (*Grid, error) {
	f, err := ncio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := &Grid{}

	fields := []struct {
		dst        **sparse.DenseArray
		candidates []string
	}{
		{dst: &g.Lat, candidates: latVars},
		{dst: &g.Lon, candidates: lonVars},
		{dst: &g.CornerLat, candidates: cornerLatVars},
		{dst: &g.Depth, candidates: depthVars},
		{dst: &g.Area, candidates: areaVars},
		{dst: &g.Wet, candidates: wetVars},
	}

	for _, field := range fields {
		a, err := readAny(f, field.candidates)
		if err != nil {
			return nil, err
		}

		*field.dst = a
	}

	if err := g.check(); err != nil {
		return nil, err
	}

	return g, nil
}

// readAny reads the first present candidate variable.
func readAny(f *ncio.File, candidates []string) (*sparse.DenseArray, error) {
	for _, name := range candidates {
		if !f.Has(name) {
			continue
		}

		a, err := f.Read(name)
		if err != nil {
			return nil, err
		}

		return a, nil
	}

	return nil, fmt.Errorf("%w: %v in %s", ErrMissingVar, candidates, f.Path())
}

func (g *Grid) check() error {
	ny, nx := g.Shape()

	for _, a := range []*sparse.DenseArray{g.Lat, g.Lon, g.Depth, g.Area, g.Wet} {
		if len(a.Shape) != rankYX || a.Shape[0] != ny || a.Shape[1] != nx {
			return fmt.Errorf("%w: want [%d %d], have %v", ErrGridShape, ny, nx, a.Shape)
		}
	}

	if len(g.CornerLat.Shape) != rankYX {
		return fmt.Errorf("%w: corner latitudes have shape %v", ErrGridShape, g.CornerLat.Shape)
	}

	return nil
}

// Shape returns the tracer grid extents.
func (g *Grid) Shape() (int, int) {
	return g.Lat.Shape[0], g.Lat.Shape[1]
}

// AreaWeights returns cell areas over wet cells; land cells are NaN so they
// drop out of weighted reductions.
func (g *Grid) AreaWeights() *sparse.DenseArray {
	w := g.Area.Copy()

	for i, wet := range g.Wet.Elements {
		if !(wet > 0) {
			w.Elements[i] = math.NaN()
		}
	}

	return w
}

// FloorDepth returns the ocean floor depth with missing cells zeroed, the
// form basin derivation expects.
func (g *Grid) FloorDepth() *sparse.DenseArray {
	d := g.Depth.Copy()

	for i, v := range d.Elements {
		if math.IsNaN(v) {
			d.Elements[i] = 0
		}
	}

	return d
}

// MeridionalLat collapses corner latitudes to one value per row, the
// northernmost corner.
func (g *Grid) MeridionalLat() []float64 {
	ny := g.CornerLat.Shape[0]
	nx := g.CornerLat.Shape[1]
	out := make([]float64, ny)

	for j := range ny {
		maxLat := math.Inf(-1)

		for i := range nx {
			if v := g.CornerLat.Elements[j*nx+i]; v > maxLat {
				maxLat = v
			}
		}

		out[j] = maxLat
	}

	return out
}
