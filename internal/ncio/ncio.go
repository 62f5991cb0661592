// Package ncio reads and writes NetCDF-3 files through a pure-Go codec,
// moving whole variables or single leading-axis records in and out of dense
// float64 arrays. Fill values declared by a variable become NaN on read.
package ncio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Attribute names recognized as fill markers, checked in order.
var fillAttrs = []string{"_FillValue", "missing_value"}

// Sentinel errors for NetCDF access.
var (
	// ErrNoVariable indicates a variable absent from a file.
	ErrNoVariable = errors.New("variable not in file")

	// ErrBufferType indicates a variable stored in a type this package
	// does not decode.
	ErrBufferType = errors.New("unsupported variable storage type")
)

// File couples an open NetCDF file with its underlying handle.
type File struct {
	cdf  *cdf.File
	file *os.File
	path string
}

// Open opens a NetCDF file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &File{cdf: cf, file: f, path: path}, nil
}

// Close releases the file handle.
func (f *File) Close() error {
	err := f.file.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}

	return nil
}

// Path returns the file path the handle was opened from.
func (f *File) Path() string {
	return f.path
}

// Has reports whether the file defines a variable.
func (f *File) Has(name string) bool {
	return slices.Contains(f.cdf.Header.Variables(), name)
}

// Dims returns the dimension lengths of a variable.
func (f *File) Dims(name string) ([]int, error) {
	if !f.Has(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoVariable, name, f.path)
	}

	return f.cdf.Header.Lengths(name), nil
}

// Attr returns a variable attribute, or nil when absent. An empty name
// addresses global attributes.
func (f *File) Attr(varName, attrName string) any {
	return f.cdf.Header.GetAttribute(varName, attrName)
}

// AttrString returns a string attribute, or "" when absent or non-string.
func (f *File) AttrString(varName, attrName string) string {
	s, _ := f.Attr(varName, attrName).(string)

	return s
}

// Read loads a whole variable into a dense array, mapping declared fill
// values to NaN.
func (f *File) Read(name string) (*sparse.DenseArray, error) {
	dims, err := f.Dims(name)
	if err != nil {
		return nil, err
	}

	r := f.cdf.Reader(name, nil, nil)
	buf := r.Zero(-1)

	_, err = r.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %q from %s: %w", name, f.path, err)
	}

	return f.toDense(name, dims, buf)
}

// ReadRecord loads one slice of a variable along its leading axis, returning
// an array shaped by the remaining axes.
func (f *File) ReadRecord(name string, rec int) (*sparse.DenseArray, error) {
	dims, err := f.Dims(name)
	if err != nil {
		return nil, err
	}

	if len(dims) < 2 {
		return nil, fmt.Errorf("%w: %q has no leading record axis", ErrNoVariable, name)
	}

	rest := dims[1:]
	n := 1

	for _, d := range rest {
		n *= d
	}

	start := make([]int, len(dims))
	end := make([]int, len(dims))
	start[0], end[0] = rec, rec+1

	r := f.cdf.Reader(name, start, end)
	buf := r.Zero(n)

	_, err = r.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %q[%d] from %s: %w", name, rec, f.path, err)
	}

	return f.toDense(name, rest, buf)
}

// toDense converts a typed read buffer into a DenseArray, applying the
// variable's fill value.
func (f *File) toDense(name string, dims []int, buf any) (*sparse.DenseArray, error) {
	out := sparse.ZerosDense(dims...)

	switch data := buf.(type) {
	case []float64:
		copy(out.Elements, data)
	case []float32:
		for i, v := range data {
			out.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range data {
			out.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range data {
			out.Elements[i] = float64(v)
		}
	case []int8:
		for i, v := range data {
			out.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("%w: %q is %T", ErrBufferType, name, buf)
	}

	if fill, ok := f.fillValue(name); ok {
		for i, v := range out.Elements {
			if v == fill {
				out.Elements[i] = math.NaN()
			}
		}
	}

	return out, nil
}

// fillValue returns the declared fill value of a variable.
func (f *File) fillValue(name string) (float64, bool) {
	for _, attr := range fillAttrs {
		switch v := f.Attr(name, attr).(type) {
		case []float64:
			if len(v) > 0 {
				return v[0], true
			}
		case []float32:
			if len(v) > 0 {
				return float64(v[0]), true
			}
		case []int32:
			if len(v) > 0 {
				return float64(v[0]), true
			}
		}
	}

	return 0, false
}

// Floats1D reads a rank-1 variable as a plain slice.
func (f *File) Floats1D(name string) ([]float64, error) {
	a, err := f.Read(name)
	if err != nil {
		return nil, err
	}

	if len(a.Shape) != 1 {
		return nil, fmt.Errorf("%w: %q is not rank 1", ErrNoVariable, name)
	}

	return a.Elements, nil
}
