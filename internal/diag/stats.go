package diag

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/grid"
	"github.com/tidewater-labs/oceanstat/internal/ncio"
	"github.com/tidewater-labs/oceanstat/internal/regions"
	"github.com/tidewater-labs/oceanstat/internal/regstats"
	"github.com/tidewater-labs/oceanstat/internal/store"
)

// Diagnostic identifiers of the regional statistics drivers.
const (
	DiagSurface = "surface"
	DiagForcing = "forcing"
)

// statsIndexName is the store basename of the per-diagnostic variable index.
const statsIndexName = "index"

const monthsPerYear = 12

// Sentinel errors for the statistics drivers.
var (
	// ErrNoVariables indicates a run in which every requested variable was
	// missing from the history files.
	ErrNoVariables = errors.New("no requested variable present in history files")

	// ErrFieldRank indicates a time-mean field that is neither [y, x] nor
	// [z, y, x].
	ErrFieldRank = errors.New("time-mean field must be [y, x] or [z, y, x]")
)

// StatsResult is what one regional statistics diagnostic produced.
type StatsResult struct {
	DiagID  string
	Vars    []*regstats.VariableStats
	Skipped []string
	Files   []string
}

// RunStats computes per-region weighted statistics for each named variable,
// writes the NetCDF products and persists the results under diagID.
// Variables absent from the history files are skipped with a warning.
func RunStats(ctx context.Context, opts Options, diagID string, varNames []string) (*StatsResult, error) {
	err := opts.check()
	if err != nil {
		return nil, err
	}

	log := opts.logger().With("diag", diagID, "case", opts.CaseName)

	in, err := loadCase(opts)
	if err != nil {
		return nil, err
	}

	head, err := ncio.Open(in.paths[0])
	if err != nil {
		return nil, err
	}
	defer head.Close()

	set, err := regions.FromCodes(in.codes, in.grid.Lat, in.grid.Lon)
	if err != nil {
		return nil, err
	}

	weights := in.grid.AreaWeights()

	err = ensureOutDir(opts)
	if err != nil {
		return nil, err
	}

	result := &StatsResult{DiagID: diagID}

	for _, name := range varNames {
		if !head.Has(name) {
			log.Warn("variable not in history files, skipping", "variable", name)
			result.Skipped = append(result.Skipped, name)

			continue
		}

		vs, times, err := collectVariable(ctx, opts, in, head, set, weights, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		files, err := writeStatsFiles(opts, in.grid, vs, times)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		log.Info("variable reduced", "variable", name, "records", len(vs.Labels))

		result.Vars = append(result.Vars, vs)
		result.Files = append(result.Files, files...)
	}

	if len(result.Vars) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoVariables, varNames)
	}

	err = SaveStats(opts.Store, diagID, result.Vars)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// LoadStats reads back every variable persisted under diagID by RunStats.
func LoadStats(st *store.Store, diagID string) ([]*regstats.VariableStats, error) {
	var names []string

	err := st.LoadJSON(diagID, statsIndexName, &names)
	if err != nil {
		return nil, err
	}

	out := make([]*regstats.VariableStats, 0, len(names))

	for _, name := range names {
		vs := &regstats.VariableStats{}

		err = st.LoadJSON(diagID, name, vs)
		if err != nil {
			return nil, err
		}

		vs.Stats, err = st.LoadArray(diagID, name+"_stats")
		if err != nil {
			return nil, err
		}

		vs.TimeMean, err = st.LoadArray(diagID, name+"_time_ave")
		if err != nil {
			return nil, err
		}

		out = append(out, vs)
	}

	return out, nil
}

// collectVariable reduces one variable's monthly records to the
// [region, stat, time] cube plus its time-mean field, returning the
// fractional-year time value of each record alongside.
func collectVariable(
	ctx context.Context,
	opts Options,
	in *caseInputs,
	head *ncio.File,
	set *regions.Set,
	weights *sparse.DenseArray,
	name string,
) (*regstats.VariableStats, []float64, error) {
	recs, err := dataset.LoadMonthly(ctx, in.paths, name, opts.Years, opts.Workers)
	if err != nil {
		return nil, nil, err
	}

	fields := make([]*sparse.DenseArray, len(recs))
	labels := make([]string, len(recs))
	times := make([]float64, len(recs))

	for i, rec := range recs {
		fields[i] = rec.Data
		labels[i] = fmt.Sprintf("%04d-%02d", rec.Year, rec.Month)
		times[i] = float64(rec.Year) + (float64(rec.Month)-0.5)/monthsPerYear
	}

	cube, err := regstats.Collect(fields, weights, set)
	if err != nil {
		return nil, nil, err
	}

	mean, err := dataset.MeanOf(fields)
	if err != nil {
		return nil, nil, err
	}

	vs := &regstats.VariableStats{
		Variable: name,
		Units:    head.AttrString(name, "units"),
		Long:     head.AttrString(name, "long_name"),
		Labels:   labels,
		Regions:  set.Names,
		Stats:    cube,
		TimeMean: mean,
	}

	return vs, times, nil
}

// SaveStats persists every variable and the index LoadStats reads them
// back through.
func SaveStats(st *store.Store, diagID string, vars []*regstats.VariableStats) error {
	names := make([]string, len(vars))

	for i, vs := range vars {
		names[i] = vs.Variable

		err := st.SaveJSON(diagID, vs.Variable, vs)
		if err != nil {
			return err
		}

		err = st.SaveArray(diagID, vs.Variable+"_stats", vs.Stats)
		if err != nil {
			return err
		}

		err = st.SaveArray(diagID, vs.Variable+"_time_ave", vs.TimeMean)
		if err != nil {
			return err
		}
	}

	return st.SaveJSON(diagID, statsIndexName, names)
}

func writeStatsFiles(opts Options, g *grid.Grid, vs *regstats.VariableStats, times []float64) ([]string, error) {
	statsPath := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%s_stats.nc", opts.CaseName, vs.Variable))

	err := writeStatsFile(statsPath, vs, times)
	if err != nil {
		return nil, err
	}

	avePath := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%s_time_ave.nc", opts.CaseName, vs.Variable))

	err = writeTimeMeanFile(avePath, g, vs)
	if err != nil {
		return nil, err
	}

	return []string{statsPath, avePath}, nil
}

// daLabels carries the statistic names with the prefix the archived stats
// coordinate uses.
func daLabels() []string {
	out := make([]string, len(regstats.StatLabels))
	for i, s := range regstats.StatLabels {
		out[i] = "da_" + s
	}

	return out
}

// writeStatsFile writes the [basin, stats, time] cube with label
// coordinates on the basin and stats axes.
func writeStatsFile(path string, vs *regstats.VariableStats, times []float64) error {
	d := &ncio.Dataset{GlobalAttrs: []ncio.Attr{
		{Name: "title", Value: "Regional statistics of " + vs.Variable},
	}}
	d.AddLabels("basin", vs.Regions)
	d.AddLabels("stats", daLabels())
	d.AddCoord("time", times, ncio.Attr{Name: "units", Value: "year"})
	d.AddFloat(vs.Variable, []string{"basin", "stats", "time"}, vs.Stats,
		ncio.Attr{Name: "units", Value: vs.Units},
		ncio.Attr{Name: "long_name", Value: vs.Long},
	)

	return ncio.Write(path, d)
}

// writeTimeMeanFile writes the time-mean field with the grid coordinates of
// its cells.
func writeTimeMeanFile(path string, g *grid.Grid, vs *regstats.VariableStats) error {
	shape := vs.TimeMean.Shape

	d := &ncio.Dataset{}

	var dims []string

	switch len(shape) {
	case 2:
		dims = []string{"yh", "xh"}
		d.Dims = append(d.Dims,
			ncio.Dim{Name: "yh", Len: shape[0]},
			ncio.Dim{Name: "xh", Len: shape[1]},
		)
	case 3:
		dims = []string{"z_l", "yh", "xh"}
		d.Dims = append(d.Dims,
			ncio.Dim{Name: "z_l", Len: shape[0]},
			ncio.Dim{Name: "yh", Len: shape[1]},
			ncio.Dim{Name: "xh", Len: shape[2]},
		)
	default:
		return fmt.Errorf("%w: %s has shape %v", ErrFieldRank, vs.Variable, shape)
	}

	d.AddFloat("geolat", []string{"yh", "xh"}, g.Lat,
		ncio.Attr{Name: "units", Value: "degrees_north"})
	d.AddFloat("geolon", []string{"yh", "xh"}, g.Lon,
		ncio.Attr{Name: "units", Value: "degrees_east"})
	d.AddFloat(vs.Variable, dims, vs.TimeMean,
		ncio.Attr{Name: "units", Value: vs.Units},
		ncio.Attr{Name: "long_name", Value: vs.Long},
		ncio.Attr{Name: "cell_methods", Value: "time: mean"},
	)

	return ncio.Write(path, d)
}
