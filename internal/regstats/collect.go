package regstats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/regions"
)

// ErrNoRecords indicates a series with no time records to reduce.
var ErrNoRecords = errors.New("series contains no time records")

// VariableStats is the full regional statistics record of one model
// variable: one Summary per region per time record, plus the time-mean
// field. It is the unit of persistence and plotting for the surface
// diagnostics.
type VariableStats struct {
	Variable string             `json:"variable"`
	Units    string             `json:"units"`
	Long     string             `json:"long_name"`
	Labels   []string           `json:"labels"` // one per record, e.g. "0001-01"
	Regions  []string           `json:"regions"`
	Stats    *sparse.DenseArray `json:"-"` // [region, stat, time] in StatLabels order
	TimeMean *sparse.DenseArray `json:"-"` // time mean of the field, NaN over land
}

// Collect reduces each record of a time series to per-region statistics,
// stacked as a [region, stat, time] cube in StatLabels order. Records share
// one [y, x] or [z, y, x] shape with weights.
func Collect(records []*sparse.DenseArray, weights *sparse.DenseArray, set *regions.Set) (*sparse.DenseArray, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	nt := len(records)
	out := sparse.ZerosDense(set.Len(), len(StatLabels), nt)

	for t, rec := range records {
		summaries, err := ReduceRegions(rec, weights, set)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", t, err)
		}

		for r, rs := range summaries {
			for s, v := range rs.Summary.Values() {
				out.Elements[(r*len(StatLabels)+s)*nt+t] = v
			}
		}
	}

	return out, nil
}

// StatSeries returns the time series of one statistic for one region, or
// nil when either label is unknown.
func (v *VariableStats) StatSeries(region, stat string) []float64 {
	r := slices.Index(v.Regions, region)
	s := slices.Index(StatLabels, stat)

	if r < 0 || s < 0 || v.Stats == nil {
		return nil
	}

	nt := v.Stats.Shape[2]
	out := make([]float64, nt)

	for t := range nt {
		out[t] = v.Stats.Elements[(r*len(StatLabels)+s)*nt+t]
	}

	return out
}

// TimeAverage returns the mean of one statistic series, skipping NaN
// records. An unknown label or an all-NaN series yields NaN.
func (v *VariableStats) TimeAverage(region, stat string) float64 {
	series := v.StatSeries(region, stat)

	sum := 0.0
	n := 0

	for _, x := range series {
		if math.IsNaN(x) {
			continue
		}

		sum += x
		n++
	}

	if n == 0 {
		return math.NaN()
	}

	return sum / float64(n)
}
