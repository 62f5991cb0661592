package diag

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/moc"
	"github.com/tidewater-labs/oceanstat/internal/ncio"
	"github.com/tidewater-labs/oceanstat/internal/regions"
	"github.com/tidewater-labs/oceanstat/internal/store"
)

// Store basenames of the overturning diagnostic.
const (
	mocStateName   = "analysis"
	mocSummaryName = "summary"
)

// MOCResult is what the overturning diagnostic produced.
type MOCResult struct {
	Analysis *moc.Analysis
	Files    []string
}

// MOCSummary is the scalar digest of an overturning analysis, stored as
// JSON beside the full state.
type MOCSummary struct {
	Case      string                `json:"case"`
	Units     string                `json:"units"`
	FirstYear int                   `json:"first_year"`
	LastYear  int                   `json:"last_year"`
	Mean26N   float64               `json:"amoc_26n_mean"`
	Mean45N   float64               `json:"amoc_45n_mean"`
	Global    []moc.LabeledExtremum `json:"global_extrema"`
	Atlantic  []moc.LabeledExtremum `json:"atlantic_extrema"`
}

// NewMOCSummary digests an analysis into its scalar summary.
func NewMOCSummary(a *moc.Analysis) MOCSummary {
	s := MOCSummary{
		Case:     a.CaseName,
		Units:    a.Units,
		Mean26N:  seriesMean(a.Series26),
		Mean45N:  seriesMean(a.Series45),
		Global:   a.Global.Extrema,
		Atlantic: a.Atlantic.Extrema,
	}

	if len(a.Years) > 0 {
		s.FirstYear = a.Years[0]
		s.LastYear = a.Years[len(a.Years)-1]
	}

	return s
}

func seriesMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// RunMOC computes the overturning diagnostic of the case: global and
// Atlantic streamfunction profiles from the time-mean transport, annual
// 26N/45N strength series, NetCDF products and store entries.
func RunMOC(ctx context.Context, opts Options) (*MOCResult, error) {
	err := opts.check()
	if err != nil {
		return nil, err
	}

	log := opts.logger().With("diag", moc.DiagID, "case", opts.CaseName)

	in, err := loadCase(opts)
	if err != nil {
		return nil, err
	}

	log.Info("loading meridional transport", "files", len(in.paths))

	tr, err := dataset.LoadTransport(ctx, in.paths, opts.Years, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("load transport: %w", err)
	}

	zi, err := dataset.InterfaceDepths(in.paths[0])
	if err != nil {
		return nil, err
	}

	mask := regions.VPointMask(regions.OverturningMask(in.codes))

	a, err := moc.Analyze(moc.Input{
		CaseName:       opts.CaseName,
		Conversion:     tr.Transport.Conversion,
		Lat:            in.grid.MeridionalLat(),
		InterfaceDepth: zi,
		Mean:           tr.Mean,
		Years:          tr.Years,
		Annual:         tr.Annual,
		AtlanticMask:   mask,
	})
	if err != nil {
		return nil, err
	}

	files, err := writeMOCFiles(opts, a)
	if err != nil {
		return nil, err
	}

	err = SaveMOC(opts.Store, a)
	if err != nil {
		return nil, err
	}

	log.Info("overturning diagnostic complete", "years", len(a.Years), "products", len(files))

	return &MOCResult{Analysis: a, Files: files}, nil
}

// LoadMOC reads back the overturning analysis persisted by RunMOC.
func LoadMOC(st *store.Store) (*moc.Analysis, error) {
	a := &moc.Analysis{}

	err := st.LoadState(moc.DiagID, mocStateName, store.NewGobCodec(), a)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// SaveMOC persists an overturning analysis and its summary digest.
func SaveMOC(st *store.Store, a *moc.Analysis) error {
	err := st.SaveState(moc.DiagID, mocStateName, store.NewGobCodec(), a)
	if err != nil {
		return err
	}

	return st.SaveJSON(moc.DiagID, mocSummaryName, NewMOCSummary(a))
}

func writeMOCFiles(opts Options, a *moc.Analysis) ([]string, error) {
	err := ensureOutDir(opts)
	if err != nil {
		return nil, err
	}

	section := filepath.Join(opts.OutDir, opts.CaseName+"_MOC.nc")

	err = writeSectionFile(section, a)
	if err != nil {
		return nil, err
	}

	series26 := filepath.Join(opts.OutDir, opts.CaseName+"_MOC_26N_time_series.nc")

	err = writeSeriesFile(series26, "amoc_26n", "AMOC strength at 26.5N", a.Years, a.Series26)
	if err != nil {
		return nil, err
	}

	series45 := filepath.Join(opts.OutDir, opts.CaseName+"_MOC_45N_time_series.nc")

	err = writeSeriesFile(series45, "amoc_45n", "AMOC strength at 45N", a.Years, a.Series45)
	if err != nil {
		return nil, err
	}

	return []string{section, series26, series45}, nil
}

// writeSectionFile writes both streamfunction profiles against their
// latitude and interface-depth coordinates.
func writeSectionFile(path string, a *moc.Analysis) error {
	depth := make([]float64, len(a.InterfaceDepth))
	for i, d := range a.InterfaceDepth {
		depth[i] = -d // stored negative down, written positive down
	}

	d := &ncio.Dataset{GlobalAttrs: []ncio.Attr{
		{Name: "title", Value: "Meridional overturning circulation"},
		{Name: "case", Value: a.CaseName},
	}}
	d.AddCoord("z_i", depth,
		ncio.Attr{Name: "units", Value: "m"},
		ncio.Attr{Name: "positive", Value: "down"},
	)
	d.AddCoord("yq", a.Lat, ncio.Attr{Name: "units", Value: "degrees_north"})
	d.AddFloat("moc_global", []string{"z_i", "yq"}, a.Global.Psi,
		ncio.Attr{Name: "units", Value: a.Units},
		ncio.Attr{Name: "long_name", Value: "Global meridional overturning streamfunction"},
	)
	d.AddFloat("moc_atlantic", []string{"z_i", "yq"}, a.Atlantic.Psi,
		ncio.Attr{Name: "units", Value: a.Units},
		ncio.Attr{Name: "long_name", Value: "Atlantic meridional overturning streamfunction"},
	)

	return ncio.Write(path, d)
}

// writeSeriesFile writes one annual strength series against its years.
func writeSeriesFile(path, name, long string, years []int, values []float64) error {
	times := make([]float64, len(years))
	for i, y := range years {
		times[i] = float64(y)
	}

	series := sparse.ZerosDense(len(values))
	copy(series.Elements, values)

	d := &ncio.Dataset{}
	d.AddCoord("time", times, ncio.Attr{Name: "units", Value: "year"})
	d.AddFloat(name, []string{"time"}, series,
		ncio.Attr{Name: "units", Value: moc.UnitsSv},
		ncio.Attr{Name: "long_name", Value: long},
	)

	return ncio.Write(path, d)
}
