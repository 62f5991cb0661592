// Package moc computes meridional overturning circulation diagnostics from
// layer transport fields: the overturning streamfunction on layer interfaces,
// signed extrema inside latitude/depth windows, and overturning strength time
// series at reference latitude bands.
package moc

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
)

// DiagID identifies the overturning diagnostic in store directories and
// report pages.
const DiagID = "moc"

// UnitsSv is the presentation unit for converted streamfunction values.
const UnitsSv = "Sv"

// Reference search windows. Bands follow the RAPID (26.5N) and OSNAP-era
// (45N) observing latitudes; annotation windows mirror the climatological
// cells of the global and Atlantic overturning.
var (
	// Band26N brackets the RAPID array latitude.
	Band26N = Window{MinLat: 26, MaxLat: 27, MinDepth: 0}
	// Band45N brackets the subpolar North Atlantic.
	Band45N = Window{MinLat: 44, MaxLat: 46, MinDepth: 0}
)

// ErrShapeMismatch indicates driver inputs whose axis lengths disagree.
var ErrShapeMismatch = errors.New("input axis lengths disagree")

// Input carries everything the overturning analysis needs. Transport arrays
// are [layer, y, x], top layer first, with invalid cells already filled with
// zero. Conversion scales accumulated transport into Sverdrups.
type Input struct {
	CaseName       string
	Conversion     float64
	Lat            []float64 // meridional coordinate per y row
	InterfaceDepth []float64 // positive-down interface depths, length layer+1
	Mean           *sparse.DenseArray
	Years          []int
	Annual         []*sparse.DenseArray
	AtlanticMask   *sparse.DenseArray // v-point mask [y, x]
}

// LabeledExtremum is an extremum tied to the window that produced it.
type LabeledExtremum struct {
	Label  string   `json:"label"`
	Window Window   `json:"window"`
	Sign   float64  `json:"sign"`
	Cell   Extremum `json:"cell"`
}

// Profile is one overturning streamfunction with its annotated extrema.
// Psi is [interface, y] in Sverdrups.
type Profile struct {
	Name    string
	Psi     *sparse.DenseArray
	Extrema []LabeledExtremum
}

// Analysis is the full overturning diagnostic for one model case.
type Analysis struct {
	CaseName       string    `json:"case_name"`
	Units          string    `json:"units"`
	Lat            []float64 `json:"lat"`
	InterfaceDepth []float64 `json:"interface_depth"` // negative down
	Years          []int     `json:"years"`
	Global         Profile   `json:"-"`
	Atlantic       Profile   `json:"-"`
	Series26       []float64 `json:"series_26n"`
	Series45       []float64 `json:"series_45n"`
}

// Windows annotated on each profile.
var globalAnnotations = []annotation{
	{label: "Southern Ocean cell", window: Window{MinLat: latitudeSouthPole, MaxLat: -30, MinDepth: 0}, sign: SignMax},
	{label: "Northern Hemisphere cell", window: Window{MinLat: 25, MaxLat: latitudeNorthPole, MinDepth: 0}, sign: SignMax},
	{label: "Deep cell", window: Window{MinLat: latitudeSouthPole, MaxLat: latitudeNorthPole, MinDepth: 2000}, sign: SignMin},
}

var atlanticAnnotations = []annotation{
	{label: "RAPID band", window: Window{MinLat: 26.5, MaxLat: 27, MinDepth: 0}, sign: SignMax},
	{label: "South Atlantic", window: Window{MinLat: latitudeSouthPole, MaxLat: -33, MinDepth: 0}, sign: SignMax},
	{label: "Basin maximum", window: Window{MinLat: latitudeSouthPole, MaxLat: latitudeNorthPole, MinDepth: 0}, sign: SignMax},
	{label: "North of 5N", window: Window{MinLat: 5, MaxLat: latitudeNorthPole, MinDepth: 0}, sign: SignMax},
}

type annotation struct {
	label  string
	window Window
	sign   float64
}

// Analyze computes global and Atlantic overturning profiles from the
// time-mean transport plus 26N/45N strength series from the annual means.
func Analyze(in Input) (*Analysis, error) {
	err := in.check()
	if err != nil {
		return nil, err
	}

	global, err := profile("Global", in.Mean, nil, in)
	if err != nil {
		return nil, err
	}

	atlantic, err := profile("Atlantic", in.Mean, in.AtlanticMask, in)
	if err != nil {
		return nil, err
	}

	series26, series45, err := strengthSeries(in)
	if err != nil {
		return nil, err
	}

	depth := make([]float64, len(in.InterfaceDepth))
	for i, d := range in.InterfaceDepth {
		depth[i] = -d
	}

	return &Analysis{
		CaseName:       in.CaseName,
		Units:          UnitsSv,
		Lat:            in.Lat,
		InterfaceDepth: depth,
		Years:          in.Years,
		Global:         global,
		Atlantic:       atlantic,
		Series26:       series26,
		Series45:       series45,
	}, nil
}

func (in Input) check() error {
	if in.Mean == nil || len(in.Mean.Shape) != rankLayerYX {
		return fmt.Errorf("%w: time-mean transport must be [layer, y, x]", ErrTransportRank)
	}

	nz := in.Mean.Shape[0]
	ny := in.Mean.Shape[1]

	if len(in.Lat) != ny {
		return fmt.Errorf("%w: %d latitude rows for %d transport rows", ErrShapeMismatch, len(in.Lat), ny)
	}

	if len(in.InterfaceDepth) != nz+1 {
		return fmt.Errorf("%w: %d interface depths for %d layers", ErrShapeMismatch, len(in.InterfaceDepth), nz)
	}

	if len(in.Annual) != len(in.Years) {
		return fmt.Errorf("%w: %d annual transports for %d years", ErrShapeMismatch, len(in.Annual), len(in.Years))
	}

	return nil
}

// profile builds one [interface, y] streamfunction in Sverdrups and locates
// its annotated extrema on the layer-midpoint average, matching how the
// values are read off a plotted section.
func profile(name string, transport, mask *sparse.DenseArray, in Input) (Profile, error) {
	psi, err := Streamfunction(transport, mask)
	if err != nil {
		return Profile{}, fmt.Errorf("%s streamfunction: %w", name, err)
	}

	Scale(psi, in.Conversion)

	mid := InterfaceMidpoints(psi)
	lat2, depth2 := midpointCoords(in.Lat, in.InterfaceDepth)

	annotations := globalAnnotations
	if mask != nil {
		annotations = atlanticAnnotations
	}

	extrema := make([]LabeledExtremum, 0, len(annotations))

	for _, a := range annotations {
		cell, findErr := FindExtremum(lat2, depth2, mid, a.window, a.sign)
		if findErr != nil {
			if errors.Is(findErr, ErrEmptyWindow) {
				continue
			}

			return Profile{}, fmt.Errorf("%s %s: %w", name, a.label, findErr)
		}

		extrema = append(extrema, LabeledExtremum{Label: a.label, Window: a.window, Sign: a.sign, Cell: cell})
	}

	return Profile{Name: name, Psi: psi, Extrema: extrema}, nil
}

// strengthSeries computes the Atlantic overturning strength per annual mean
// at the 26N and 45N bands.
func strengthSeries(in Input) (series26, series45 []float64, err error) {
	series26 = make([]float64, len(in.Annual))
	series45 = make([]float64, len(in.Annual))
	lat2, depth2 := midpointCoords(in.Lat, in.InterfaceDepth)

	for t, transport := range in.Annual {
		psi, psiErr := Streamfunction(transport, in.AtlanticMask)
		if psiErr != nil {
			return nil, nil, fmt.Errorf("year %d streamfunction: %w", in.Years[t], psiErr)
		}

		mid := InterfaceMidpoints(Scale(psi, in.Conversion))

		at26, findErr := FindExtremum(lat2, depth2, mid, Band26N, SignMax)
		if findErr != nil {
			return nil, nil, fmt.Errorf("year %d at 26N: %w", in.Years[t], findErr)
		}

		at45, findErr := FindExtremum(lat2, depth2, mid, Band45N, SignMax)
		if findErr != nil {
			return nil, nil, fmt.Errorf("year %d at 45N: %w", in.Years[t], findErr)
		}

		series26[t] = at26.Value
		series45[t] = at45.Value
	}

	return series26, series45, nil
}

// midpointCoords broadcasts the meridional coordinate and the layer-midpoint
// depth (negative down) to the [layer, y] shape used by extremum searches.
func midpointCoords(lat, interfaceDepth []float64) (lat2, depth2 *sparse.DenseArray) {
	nz := len(interfaceDepth) - 1
	ny := len(lat)
	lat2 = sparse.ZerosDense(nz, ny)
	depth2 = sparse.ZerosDense(nz, ny)

	for k := range nz {
		zMid := -0.5 * (interfaceDepth[k] + interfaceDepth[k+1])

		for j := range ny {
			lat2.Elements[k*ny+j] = lat[j]
			depth2.Elements[k*ny+j] = zMid
		}
	}

	return lat2, depth2
}
