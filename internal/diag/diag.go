// Package diag runs the diagnostics of one model case end to end: it
// discovers the history output, reduces it, writes NetCDF products into the
// case output directory and persists results for the render phase.
package diag

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/grid"
	"github.com/tidewater-labs/oceanstat/internal/regions"
	"github.com/tidewater-labs/oceanstat/internal/store"
)

const outDirPerm = 0o750

// Sentinel errors for driver options.
var (
	// ErrNoCase indicates options without a case name.
	ErrNoCase = errors.New("case name is required")

	// ErrNoRunDir indicates options without a history directory.
	ErrNoRunDir = errors.New("run directory is required")

	// ErrNoOutDir indicates options without a NetCDF product directory.
	ErrNoOutDir = errors.New("output directory is required")

	// ErrNoStore indicates options without a result store.
	ErrNoStore = errors.New("result store is required")
)

// Options carries the resolved inputs shared by every diagnostic.
type Options struct {
	CaseName string
	RunDir   string // directory holding the history and static files
	OutDir   string // directory receiving NetCDF products
	Store    *store.Store
	Years    dataset.YearRange
	Workers  int
	Log      *slog.Logger
}

func (o Options) check() error {
	switch {
	case o.CaseName == "":
		return ErrNoCase
	case o.RunDir == "":
		return ErrNoRunDir
	case o.OutDir == "":
		return ErrNoOutDir
	case o.Store == nil:
		return ErrNoStore
	default:
		return nil
	}
}

// logger returns the configured logger or the process default.
func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}

	return slog.Default()
}

// caseInputs bundles the per-case state every diagnostic starts from.
type caseInputs struct {
	paths []string
	grid  *grid.Grid
	codes *sparse.DenseArray
}

// loadCase scans the history files of the case and loads its static grid,
// deriving basin codes from geography.
func loadCase(opts Options) (*caseInputs, error) {
	paths, err := dataset.Scan(opts.RunDir, opts.CaseName)
	if err != nil {
		return nil, err
	}

	g, err := grid.Load(dataset.StaticPath(opts.RunDir, opts.CaseName))
	if err != nil {
		return nil, err
	}

	codes := regions.DeriveCodes(g.Lat, g.Lon, g.FloorDepth())

	return &caseInputs{paths: paths, grid: g, codes: codes}, nil
}

// ensureOutDir creates the NetCDF product directory.
func ensureOutDir(opts Options) error {
	err := os.MkdirAll(opts.OutDir, outDirPerm)
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return nil
}
