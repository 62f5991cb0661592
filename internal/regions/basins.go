package regions

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Basin codes assigned to ocean cells. Land is 0.
const (
	CodeLand        = 0
	CodeSouthern    = 1
	CodeAtlantic    = 2
	CodePacific     = 3
	CodeArctic      = 4
	CodeIndian      = 5
	CodeMedSea      = 6
	CodeBlackSea    = 7
	CodeHudsonBay   = 8
	CodeBaltic      = 9
	CodeRedSea      = 10
	CodePersianGulf = 11
)

// overturningCodes are the basins folded into the Atlantic-sector
// overturning mask: Atlantic, Arctic, Mediterranean, Black Sea, Hudson Bay.
var overturningCodes = map[int]bool{
	CodeAtlantic:  true,
	CodeArctic:    true,
	CodeMedSea:    true,
	CodeBlackSea:  true,
	CodeHudsonBay: true,
}

// Box is a closed latitude/longitude rectangle. Longitudes are in [-180, 180].
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func (b Box) contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Sub-basin bounding boxes refined out of the primary basin codes.
var (
	labSeaBox    = Box{MinLat: 50, MaxLat: 65, MinLon: -64, MaxLon: -44}
	baffinBayBox = Box{MinLat: 66, MaxLat: 80, MinLon: -82, MaxLon: -50}
)

// Marginal sea boxes used when deriving codes from geography alone.
var (
	medSeaBox      = Box{MinLat: 29, MaxLat: 47, MinLon: -6, MaxLon: 37}
	blackSeaBox    = Box{MinLat: 40, MaxLat: 48, MinLon: 26, MaxLon: 42}
	balticBox      = Box{MinLat: 53, MaxLat: 66, MinLon: 9, MaxLon: 31}
	hudsonBayBox   = Box{MinLat: 51, MaxLat: 65, MinLon: -96, MaxLon: -75}
	redSeaBox      = Box{MinLat: 12, MaxLat: 30, MinLon: 32, MaxLon: 44}
	persianGulfBox = Box{MinLat: 23, MaxLat: 31, MinLon: 47, MaxLon: 57}

	// Gulf of Mexico and Caribbean sit west of the -70 meridian but drain
	// into the Atlantic.
	atlanticWestBox = Box{MinLat: 6, MaxLat: 31, MinLon: -98, MaxLon: -70}
)

// Latitude bounds separating the primary basins.
const (
	southernOceanNorthEdge = -34.0
	arcticSouthEdge        = 66.5
)

// DefaultNames is the region selection reported by the statistics
// diagnostics, in axis order.
var DefaultNames = []string{
	"Global",
	"PersianGulf",
	"Arctic",
	"Pacific",
	"Atlantic",
	"Indian",
	"Southern",
	"LabSea",
	"BaffinBay",
}

// codeSelectors map region names to basin-code membership.
var codeSelectors = map[string]map[int]bool{
	"Global":      nil, // every wet cell
	"PersianGulf": {CodePersianGulf: true},
	"Arctic":      {CodeArctic: true},
	"Pacific":     {CodePacific: true},
	"Atlantic":    {CodeAtlantic: true},
	"Indian":      {CodeIndian: true},
	"Southern":    {CodeSouthern: true},
}

// boxSelectors map sub-basin region names to a geographic box refined out of
// parent basin codes.
var boxSelectors = map[string]struct {
	box     Box
	parents map[int]bool
}{
	"LabSea":    {box: labSeaBox, parents: map[int]bool{CodeAtlantic: true}},
	"BaffinBay": {box: baffinBayBox, parents: map[int]bool{CodeAtlantic: true, CodeArctic: true}},
}

// FromCodes assembles the default named region collection from a basin-code
// array. geolat and geolon locate the sub-basin boxes; all three arrays are
// [y, x].
func FromCodes(codes, geolat, geolon *sparse.DenseArray) (*Set, error) {
	ny := codes.Shape[0]
	nx := codes.Shape[1]

	if geolat.Shape[0] != ny || geolat.Shape[1] != nx || geolon.Shape[0] != ny || geolon.Shape[1] != nx {
		return nil, fmt.Errorf("%w: codes %v, geolat %v, geolon %v",
			ErrMaskRank, codes.Shape, geolat.Shape, geolon.Shape)
	}

	masks := sparse.ZerosDense(len(DefaultNames), ny, nx)

	for r, name := range DefaultNames {
		for j := range ny {
			for i := range nx {
				code := int(codes.Get(j, i))
				if code == CodeLand {
					continue
				}

				if memberOf(name, code, geolat.Get(j, i), geolon.Get(j, i)) {
					masks.Set(1, r, j, i)
				}
			}
		}
	}

	return NewSet(DefaultNames, masks)
}

func memberOf(name string, code int, lat, lon float64) bool {
	if sel, ok := boxSelectors[name]; ok {
		return sel.parents[code] && sel.box.contains(lat, lon)
	}

	sel := codeSelectors[name]
	if sel == nil {
		return true // Global
	}

	return sel[code]
}

// OverturningMask returns the [y, x] cell mask of the Atlantic-sector
// overturning domain: 1 where the basin code belongs to overturningCodes.
func OverturningMask(codes *sparse.DenseArray) *sparse.DenseArray {
	mask := sparse.ZerosDense(codes.Shape...)

	for idx, c := range codes.Elements {
		if overturningCodes[int(c)] {
			mask.Elements[idx] = 1
		}
	}

	return mask
}

// VPointMask moves a cell mask onto meridional velocity points: a v-point is
// open only when the cell and its northern neighbor are both open,
//
//	vmsk = m * roll(m, -1, y-axis)
//
// with the roll wrapping the northernmost row back to the first.
func VPointMask(m *sparse.DenseArray) *sparse.DenseArray {
	ny := m.Shape[0]
	nx := m.Shape[1]
	vmsk := sparse.ZerosDense(ny, nx)

	for j := range ny {
		north := (j + 1) % ny

		for i := range nx {
			vmsk.Elements[j*nx+i] = m.Elements[j*nx+i] * m.Elements[north*nx+i]
		}
	}

	return vmsk
}

// DeriveCodes assigns basin codes from geography alone, for static files
// that do not ship a basin variable. depth is positive-down ocean floor
// depth with NaN or 0 on land.
func DeriveCodes(geolat, geolon, depth *sparse.DenseArray) *sparse.DenseArray {
	ny := geolat.Shape[0]
	nx := geolat.Shape[1]
	codes := sparse.ZerosDense(ny, nx)

	for j := range ny {
		for i := range nx {
			d := depth.Get(j, i)
			if math.IsNaN(d) || d <= 0 {
				continue
			}

			codes.Set(float64(deriveCode(geolat.Get(j, i), geolon.Get(j, i))), j, i)
		}
	}

	return codes
}

// deriveCode classifies one wet cell. Marginal seas take precedence, then
// the circumpolar Southern Ocean and Arctic caps, then the open basins split
// by longitude.
func deriveCode(lat, lon float64) int {
	lon = wrapLongitude(lon)

	switch {
	case persianGulfBox.contains(lat, lon):
		return CodePersianGulf
	case redSeaBox.contains(lat, lon):
		return CodeRedSea
	case blackSeaBox.contains(lat, lon):
		return CodeBlackSea
	case medSeaBox.contains(lat, lon):
		return CodeMedSea
	case balticBox.contains(lat, lon):
		return CodeBaltic
	case hudsonBayBox.contains(lat, lon):
		return CodeHudsonBay
	case lat <= southernOceanNorthEdge:
		return CodeSouthern
	case lat >= arcticSouthEdge:
		return CodeArctic
	case lon >= 20 && lon < 147:
		return CodeIndian
	case (lon >= 147 || lon < -70) && !atlanticWestBox.contains(lat, lon):
		return CodePacific
	default:
		return CodeAtlantic
	}
}

// wrapLongitude maps a longitude into [-180, 180).
func wrapLongitude(lon float64) float64 {
	for lon >= 180 {
		lon -= 360
	}

	for lon < -180 {
		lon += 360
	}

	return lon
}
