package regstats

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/regions"
)

// rankTZYX is the rank of a [time, z, y, x] series field.
const rankTZYX = 4

// Sentinel errors for horizontal-mean series inputs.
var (
	// ErrFieldRank indicates a series field that is not [time, z, y, x].
	ErrFieldRank = errors.New("series field must be a [time, z, y, x] array")

	// ErrWeightsRank3 indicates weights that are not [z, y, x] in a
	// regional series reduction.
	ErrWeightsRank3 = errors.New("weights must be a [z, y, x] array when regions are provided")
)

// horizontal reducers.
type seriesKind int

const (
	seriesMean seriesKind = iota
	seriesRMSE
)

// MeanSeries reduces a [time, z, y, x] field to per-region weighted
// horizontal means [region, time, z]. The region masks broadcast over z, and
// the weight total per (region, z) counts every finite masked weight.
func MeanSeries(field, weights *sparse.DenseArray, set *regions.Set) (*sparse.DenseArray, error) {
	return horizontalSeries(field, weights, set, seriesMean)
}

// RMSESeries reduces a [time, z, y, x] field to per-region weighted
// horizontal root-mean-squares [region, time, z]. Feed it a model-minus-
// reference difference to obtain an RMSE profile series.
func RMSESeries(field, weights *sparse.DenseArray, set *regions.Set) (*sparse.DenseArray, error) {
	return horizontalSeries(field, weights, set, seriesRMSE)
}

func horizontalSeries(field, weights *sparse.DenseArray, set *regions.Set, kind seriesKind) (*sparse.DenseArray, error) {
	err := set.Validate()
	if err != nil {
		return nil, err
	}

	if len(field.Shape) != rankTZYX {
		return nil, fmt.Errorf("%w: got rank %d", ErrFieldRank, len(field.Shape))
	}

	if len(weights.Shape) != rankZYX {
		return nil, fmt.Errorf("%w: got rank %d", ErrWeightsRank3, len(weights.Shape))
	}

	nt := field.Shape[0]
	nz := field.Shape[1]
	ny := field.Shape[2]
	nx := field.Shape[3]

	for i, name := range axisNames {
		if weights.Shape[i] != field.Shape[i+1] {
			return nil, fmt.Errorf("%w %s: field %d, weights %d",
				ErrAxisMismatch, name, field.Shape[i+1], weights.Shape[i])
		}
	}

	if set.NY() != ny || set.NX() != nx {
		return nil, fmt.Errorf("%w y/x: masks [%d %d], field %v", ErrAxisMismatch, set.NY(), set.NX(), field.Shape)
	}

	out := sparse.ZerosDense(set.Len(), nt, nz)

	for r := range set.Len() {
		// Weight totals per z level, reused across time records.
		totals := make([]float64, nz)

		for z := range nz {
			for j := range ny {
				for i := range nx {
					if !set.In(r, j, i) {
						continue
					}

					w := weights.Get(z, j, i)
					if !math.IsNaN(w) {
						totals[z] += w
					}
				}
			}
		}

		for t := range nt {
			for z := range nz {
				out.Set(reduceLevel(field, weights, set, kind, r, t, z, totals[z]), r, t, z)
			}
		}
	}

	return out, nil
}

// reduceLevel reduces one (region, time, z) horizontal slab.
func reduceLevel(field, weights *sparse.DenseArray, set *regions.Set, kind seriesKind, r, t, z int, totalW float64) float64 {
	ny := field.Shape[2]
	nx := field.Shape[3]
	sum := 0.0

	for j := range ny {
		for i := range nx {
			if !set.In(r, j, i) {
				continue
			}

			f := field.Get(t, z, j, i)
			w := weights.Get(z, j, i)

			if math.IsNaN(f) || math.IsNaN(w) {
				continue
			}

			if kind == seriesRMSE {
				sum += f * f * w
			} else {
				sum += f * w
			}
		}
	}

	v := sum / totalW
	if kind == seriesRMSE {
		v = math.Sqrt(v)
	}

	return v
}
