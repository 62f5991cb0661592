// Package dataset discovers MOM6 history output and loads variables from it
// as calendar-tagged records. Files are read by an ordered worker pool sized
// from a memory budget, and records reduce to annual or monthly means with
// NaN-aware cell averaging.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"time"

	"github.com/ctessum/sparse"

	"github.com/tidewater-labs/oceanstat/internal/ncio"
)

// History file layout of one model case.
const (
	historySuffix = ".mom6.hm_*.nc"
	staticSuffix  = ".mom6.static.nc"
)

// Sentinel errors for dataset loading.
var (
	// ErrNoFiles indicates a case directory without history files.
	ErrNoFiles = errors.New("no history files match case")

	// ErrNoRecords indicates a selection that matched no time records.
	ErrNoRecords = errors.New("no records in selected years")

	// ErrShapeMismatch indicates records of one variable that disagree on
	// shape across files.
	ErrShapeMismatch = errors.New("record shapes disagree")
)

// Record is one time record of one variable.
type Record struct {
	Year  int
	Month time.Month
	Data  *sparse.DenseArray
}

// YearRange bounds record selection by calendar year. A zero value leaves
// that side unbounded.
type YearRange struct {
	Start int
	End   int
}

func (r YearRange) contains(year int) bool {
	if r.Start != 0 && year < r.Start {
		return false
	}

	if r.End != 0 && year > r.End {
		return false
	}

	return true
}

// Scan globs the monthly history files of a case, in lexical order.
func Scan(dir, caseName string) ([]string, error) {
	pattern := filepath.Join(dir, caseName+historySuffix)

	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	slices.Sort(paths)

	return paths, nil
}

// StaticPath returns the static grid file of a case.
func StaticPath(dir, caseName string) string {
	return filepath.Join(dir, caseName+staticSuffix)
}

// ReadRecords loads every time record of one variable from an open file.
func ReadRecords(f *ncio.File, name string) ([]Record, error) {
	ax, err := TimeAxisFromFile(f)
	if err != nil {
		return nil, err
	}

	dims, err := f.Dims(name)
	if err != nil {
		return nil, err
	}

	if len(dims) < 2 || dims[0] != ax.Len() {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoTimeAxis, name, f.Path())
	}

	recs := make([]Record, 0, ax.Len())

	for i := range ax.Len() {
		data, err := f.ReadRecord(name, i)
		if err != nil {
			return nil, err
		}

		year, month := ax.Date(i)
		recs = append(recs, Record{Year: year, Month: month, Data: data})
	}

	return recs, nil
}

// Series loads every record of one variable across files, in input order.
// The first failed file cancels the remaining reads.
func Series(ctx context.Context, paths []string, name string, workers int) ([]Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	read := func(path string) ([]Record, error) {
		f, err := ncio.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return ReadRecords(f, name)
	}

	var (
		recs    []Record
		loadErr error
	)

	for fr := range NewPool(workers).Read(ctx, paths, read) {
		if loadErr != nil {
			continue
		}

		if fr.Err != nil {
			loadErr = fmt.Errorf("load %q: %w", name, fr.Err)

			cancel()

			continue
		}

		recs = append(recs, fr.Records...)
	}

	if loadErr != nil {
		return nil, loadErr
	}

	return recs, nil
}

// FilterYears returns the records whose year falls inside r.
func FilterYears(recs []Record, r YearRange) []Record {
	out := make([]Record, 0, len(recs))

	for _, rec := range recs {
		if r.contains(rec.Year) {
			out = append(out, rec)
		}
	}

	return out
}

// AnnualMeans groups records by calendar year, in first-seen order, and
// averages each group.
func AnnualMeans(recs []Record) ([]int, []*sparse.DenseArray, error) {
	if len(recs) == 0 {
		return nil, nil, ErrNoRecords
	}

	var years []int

	groups := make(map[int][]*sparse.DenseArray)

	for _, rec := range recs {
		if _, ok := groups[rec.Year]; !ok {
			years = append(years, rec.Year)
		}

		groups[rec.Year] = append(groups[rec.Year], rec.Data)
	}

	means := make([]*sparse.DenseArray, len(years))

	for i, year := range years {
		mean, err := MeanOf(groups[year])
		if err != nil {
			return nil, nil, fmt.Errorf("year %d: %w", year, err)
		}

		means[i] = mean
	}

	return years, means, nil
}

// MonthlyMeans collapses records sharing a calendar month into one mean
// record, in first-seen order.
func MonthlyMeans(recs []Record) ([]Record, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}

	type stamp struct {
		year  int
		month time.Month
	}

	var order []stamp

	groups := make(map[stamp][]*sparse.DenseArray)

	for _, rec := range recs {
		key := stamp{year: rec.Year, month: rec.Month}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], rec.Data)
	}

	out := make([]Record, len(order))

	for i, key := range order {
		mean, err := MeanOf(groups[key])
		if err != nil {
			return nil, fmt.Errorf("%d-%02d: %w", key.year, key.month, err)
		}

		out[i] = Record{Year: key.year, Month: key.month, Data: mean}
	}

	return out, nil
}

// MeanOf averages arrays cell-wise, skipping NaN values. Cells missing in
// every array stay NaN.
func MeanOf(arrs []*sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(arrs) == 0 {
		return nil, ErrNoRecords
	}

	first := arrs[0]
	sum := sparse.ZerosDense(first.Shape...)
	count := make([]int, len(first.Elements))

	for _, a := range arrs {
		if !slices.Equal(a.Shape, first.Shape) {
			return nil, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.Shape, first.Shape)
		}

		for i, v := range a.Elements {
			if math.IsNaN(v) {
				continue
			}

			sum.Elements[i] += v
			count[i]++
		}
	}

	for i := range sum.Elements {
		if count[i] == 0 {
			sum.Elements[i] = math.NaN()
		} else {
			sum.Elements[i] /= float64(count[i])
		}
	}

	return sum, nil
}

// FillMissing replaces NaN cells in place and returns the array.
func FillMissing(a *sparse.DenseArray, fill float64) *sparse.DenseArray {
	for i, v := range a.Elements {
		if math.IsNaN(v) {
			a.Elements[i] = fill
		}
	}

	return a
}

// TransportData is the meridional transport of a case reduced to annual
// means and a period mean, missing cells zeroed.
type TransportData struct {
	Transport Transport
	Years     []int
	Annual    []*sparse.DenseArray
	Mean      *sparse.DenseArray
}

// LoadTransport detects the transport variable of a case and loads its
// records. The period mean weights years equally, not months.
func LoadTransport(ctx context.Context, paths []string, years YearRange, workers int) (*TransportData, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	f, err := ncio.Open(paths[0])
	if err != nil {
		return nil, err
	}

	tr, err := SelectTransport(f)

	f.Close()

	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, paths[0])
	}

	recs, err := Series(ctx, paths, tr.Name, workers)
	if err != nil {
		return nil, err
	}

	recs = FilterYears(recs, years)
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoRecords, tr.Name)
	}

	yearList, annual, err := AnnualMeans(recs)
	if err != nil {
		return nil, err
	}

	mean, err := MeanOf(annual)
	if err != nil {
		return nil, err
	}

	for _, a := range annual {
		FillMissing(a, 0)
	}

	FillMissing(mean, 0)

	return &TransportData{Transport: tr, Years: yearList, Annual: annual, Mean: mean}, nil
}

// Vertical interface coordinate names, in preference order. zw is the older
// name.
var interfaceVars = []string{"z_i", "zw"}

// ErrNoInterfaceAxis indicates a file without a vertical interface
// coordinate.
var ErrNoInterfaceAxis = errors.New(`could not find "z_i" or "zw"`)

// InterfaceDepths reads the vertical interface coordinate of a history
// file, in meters positive down.
func InterfaceDepths(path string) ([]float64, error) {
	f, err := ncio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, name := range interfaceVars {
		if !f.Has(name) {
			continue
		}

		depths, err := f.Floats1D(name)
		if err != nil {
			return nil, err
		}

		return depths, nil
	}

	return nil, fmt.Errorf("%w in %s", ErrNoInterfaceAxis, path)
}

// LoadMonthly loads one variable as monthly mean records, missing cells
// kept NaN.
func LoadMonthly(ctx context.Context, paths []string, name string, years YearRange, workers int) ([]Record, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	recs, err := Series(ctx, paths, name, workers)
	if err != nil {
		return nil, err
	}

	recs = FilterYears(recs, years)
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoRecords, name)
	}

	return MonthlyMeans(recs)
}
