package moc

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Signs select which end of the streamfunction range an extremum search
// targets.
const (
	// SignMax selects the most positive cell inside the window.
	SignMax = 1.0
	// SignMin selects the most negative cell inside the window.
	SignMin = -1.0
)

// Latitude bounds of an unrestricted window.
const (
	latitudeSouthPole = -90.0
	latitudeNorthPole = 90.0
)

// Sentinel errors for extremum searches.
var (
	// ErrCoordShape indicates latitude, depth, and streamfunction arrays
	// whose shapes differ.
	ErrCoordShape = errors.New("latitude, depth, and streamfunction arrays must share one shape")

	// ErrEmptyWindow indicates a window that excludes every finite cell.
	ErrEmptyWindow = errors.New("no finite streamfunction cells inside the search window")
)

// Window bounds an extremum search in latitude and depth. MinDepth is a
// positive magnitude in meters; only cells strictly deeper than it (depth
// coordinate < -MinDepth) qualify.
type Window struct {
	MinLat   float64
	MaxLat   float64
	MinDepth float64
}

// UnboundedWindow returns a window that admits every cell.
func UnboundedWindow() Window {
	return Window{MinLat: latitudeSouthPole, MaxLat: latitudeNorthPole, MinDepth: 0}
}

// contains reports whether a cell at the given latitude and depth falls
// inside the window. Depth is negative downward.
func (w Window) contains(lat, depth float64) bool {
	return lat >= w.MinLat && lat <= w.MaxLat && depth < -w.MinDepth
}

// Extremum is a located streamfunction extremum.
type Extremum struct {
	Value float64 `json:"value"`
	J     int     `json:"j"`
	I     int     `json:"i"`
	Lat   float64 `json:"lat"`
	Depth float64 `json:"depth"`
}

// FindExtremum finds the signed extremum of psi inside the window and then
// locates it. lat, depth, and psi are rank-2 arrays sharing one shape, with
// depth negative downward. sign is SignMax or SignMin.
//
// The search runs in two stages. Stage one scans only windowed cells for the
// extremum value sign*max(sign*psi). Stage two locates that value by the
// smallest |psi - value| over the FULL array, first match in row-major order
// winning. A cell outside the window can therefore be reported when it
// carries the same value; downstream consumers depend on this placement
// behavior, so it is deliberate.
func FindExtremum(lat, depth, psi *sparse.DenseArray, window Window, sign float64) (Extremum, error) {
	if !sameShape(lat, psi) || !sameShape(depth, psi) {
		return Extremum{}, fmt.Errorf("%w: lat %v, depth %v, psi %v",
			ErrCoordShape, lat.Shape, depth.Shape, psi.Shape)
	}

	target, found := windowExtremum(lat, depth, psi, window, sign)
	if !found {
		return Extremum{}, fmt.Errorf("%w: lat [%g, %g], depth > %g m",
			ErrEmptyWindow, window.MinLat, window.MaxLat, window.MinDepth)
	}

	idx := nearestIndex(psi, target)
	cols := psi.Shape[1]

	return Extremum{
		Value: psi.Elements[idx],
		J:     idx / cols,
		I:     idx % cols,
		Lat:   lat.Elements[idx],
		Depth: depth.Elements[idx],
	}, nil
}

// windowExtremum scans windowed cells for the signed extremum value.
func windowExtremum(lat, depth, psi *sparse.DenseArray, window Window, sign float64) (float64, bool) {
	best := math.Inf(-1)
	found := false

	for idx, v := range psi.Elements {
		if math.IsNaN(v) {
			continue
		}

		if !window.contains(lat.Elements[idx], depth.Elements[idx]) {
			continue
		}

		if s := sign * v; s > best {
			best = s
		}

		found = true
	}

	return sign * best, found
}

// nearestIndex returns the first row-major index minimizing |psi - target|.
func nearestIndex(psi *sparse.DenseArray, target float64) int {
	bestIdx := 0
	bestDist := math.Inf(1)

	for idx, v := range psi.Elements {
		if d := math.Abs(v - target); d < bestDist {
			bestDist = d
			bestIdx = idx
		}
	}

	return bestIdx
}

// sameShape reports whether two arrays have identical shapes.
func sameShape(a, b *sparse.DenseArray) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}

	for i, n := range a.Shape {
		if b.Shape[i] != n {
			return false
		}
	}

	return true
}
