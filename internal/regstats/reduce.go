// Package regstats computes weighted regional statistics over ocean model
// fields: min, max, and weighted mean, standard deviation, and
// root-mean-square, globally or per named region, plus horizontal-mean time
// series of model-minus-reference differences.
//
// Numeric contract: a zero total weight yields NaN statistics, never an
// error and never zero. The weight total counts every finite weight, even
// where the field is missing; align the weight mask with the field's missing
// cells to keep the two consistent.
package regstats

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/regions"
)

// Field and weight ranks accepted by Reduce.
const (
	rankYX  = 2
	rankZYX = 3
)

// Axis names used in validation errors, trailing axes last.
var axisNames = []string{"z", "y", "x"}

// Sentinel errors for reducer inputs.
var (
	// ErrWeightsRank indicates weights that are neither [y, x] nor [z, y, x].
	ErrWeightsRank = errors.New("weights must be a [y, x] or [z, y, x] array")

	// ErrAxisMismatch indicates a field and weight axis of different length.
	ErrAxisMismatch = errors.New("field and weights disagree on axis")
)

// StatLabels is the fixed order of statistics along a "stats" axis.
var StatLabels = []string{"min", "max", "mean", "std", "rms"}

// Summary holds the five statistics of one reduction.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	RMS  float64 `json:"rms"`
}

// Values returns the statistics in StatLabels order.
func (s Summary) Values() []float64 {
	return []float64{s.Min, s.Max, s.Mean, s.Std, s.RMS}
}

// Reduce computes the five statistics of field under weights. Both arrays
// share one [y, x] or [z, y, x] shape. Min and max are plain extrema over
// finite field cells. Mean is sum(f*w)/sum(w); std is
// sqrt(sum((f-mean)^2*w)/sum(w)) with the mean finalized before the second
// pass; rms is sqrt(sum(f^2*w)/sum(w)).
func Reduce(field, weights *sparse.DenseArray) (Summary, error) {
	err := checkShapes(field, weights)
	if err != nil {
		return Summary{}, err
	}

	sumW := 0.0
	sumFW := 0.0
	sumF2W := 0.0
	minV := math.NaN()
	maxV := math.NaN()

	for idx, f := range field.Elements {
		w := weights.Elements[idx]
		if !math.IsNaN(w) {
			sumW += w
		}

		if math.IsNaN(f) {
			continue
		}

		if math.IsNaN(minV) || f < minV {
			minV = f
		}

		if math.IsNaN(maxV) || f > maxV {
			maxV = f
		}

		if !math.IsNaN(w) {
			sumFW += f * w
			sumF2W += f * f * w
		}
	}

	if sumW == 0 {
		return Summary{Min: minV, Max: maxV, Mean: math.NaN(), Std: math.NaN(), RMS: math.NaN()}, nil
	}

	mean := sumFW / sumW

	// Second pass with the finalized mean.
	sumDev2W := 0.0

	for idx, f := range field.Elements {
		w := weights.Elements[idx]
		if math.IsNaN(f) || math.IsNaN(w) {
			continue
		}

		d := f - mean
		sumDev2W += d * d * w
	}

	return Summary{
		Min:  minV,
		Max:  maxV,
		Mean: mean,
		Std:  math.Sqrt(sumDev2W / sumW),
		RMS:  math.Sqrt(sumF2W / sumW),
	}, nil
}

// RegionSummary pairs a region label with its statistics.
type RegionSummary struct {
	Region  string  `json:"region"`
	Summary Summary `json:"summary"`
}

// ReduceRegions computes per-region statistics: region r's reduction sees
// the field and weights only inside mask r. field and weights are [y, x] or
// [z, y, x]; a [region, y, x] mask broadcasts over any leading z axis.
// Results follow the set's region order.
func ReduceRegions(field, weights *sparse.DenseArray, set *regions.Set) ([]RegionSummary, error) {
	err := set.Validate()
	if err != nil {
		return nil, err
	}

	shapeErr := checkShapes(field, weights)
	if shapeErr != nil {
		return nil, shapeErr
	}

	rank := len(field.Shape)
	ny := field.Shape[rank-2]
	nx := field.Shape[rank-1]

	if set.NY() != ny || set.NX() != nx {
		return nil, fmt.Errorf("%w y/x: masks [%d %d], field %v", ErrAxisMismatch, set.NY(), set.NX(), field.Shape)
	}

	out := make([]RegionSummary, set.Len())

	for r := range set.Len() {
		masked := maskByRegion(field, set, r)
		maskedW := maskByRegion(weights, set, r)

		summary, reduceErr := Reduce(masked, maskedW)
		if reduceErr != nil {
			return nil, fmt.Errorf("region %s: %w", set.Names[r], reduceErr)
		}

		out[r] = RegionSummary{Region: set.Names[r], Summary: summary}
	}

	return out, nil
}

// maskByRegion copies a with NaN outside region r. A rank-3 input broadcasts
// the mask over the leading axis.
func maskByRegion(a *sparse.DenseArray, set *regions.Set, r int) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	ny := set.NY()
	nx := set.NX()
	plane := ny * nx

	for idx, v := range a.Elements {
		cell := idx % plane
		if set.In(r, cell/nx, cell%nx) {
			out.Elements[idx] = v
		} else {
			out.Elements[idx] = math.NaN()
		}
	}

	return out
}

// checkShapes requires matching rank-2 or rank-3 shapes, naming the first
// axis that disagrees.
func checkShapes(field, weights *sparse.DenseArray) error {
	rank := len(weights.Shape)
	if rank != rankYX && rank != rankZYX {
		return fmt.Errorf("%w: got rank %d", ErrWeightsRank, rank)
	}

	if len(field.Shape) != rank {
		return fmt.Errorf("%w rank: field %v, weights %v", ErrAxisMismatch, field.Shape, weights.Shape)
	}

	offset := len(axisNames) - rank

	for i, n := range field.Shape {
		if weights.Shape[i] != n {
			return fmt.Errorf("%w %s: field %d, weights %d",
				ErrAxisMismatch, axisNames[offset+i], n, weights.Shape[i])
		}
	}

	return nil
}
