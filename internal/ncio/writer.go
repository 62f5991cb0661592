package ncio

import (
	"errors"
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Attr is one ordered attribute. Values are strings or typed slices, as the
// NetCDF-3 header requires.
type Attr struct {
	Name  string
	Value any
}

// Var declares one output variable backed by a dense float64 array whose
// shape must multiply out to the product of its dimensions.
type Var struct {
	Name  string
	Dims  []string
	Attrs []Attr
	Data  *sparse.DenseArray
}

// TextVar declares one char variable: fixed-width label rows along an
// existing dimension. A companion string-length dimension named
// "<name>_strlen" is added at write time.
type TextVar struct {
	Name   string
	Dim    string
	Labels []string
}

// Dataset is an in-memory description of a NetCDF file to write.
type Dataset struct {
	Dims        []Dim
	GlobalAttrs []Attr
	Vars        []Var
	TextVars    []TextVar
}

// Dim is one named dimension.
type Dim struct {
	Name string
	Len  int
}

// Sentinel errors for dataset writing.
var (
	// ErrNoDims indicates a dataset without dimensions.
	ErrNoDims = errors.New("dataset declares no dimensions")

	// ErrHeader indicates a header the codec rejected.
	ErrHeader = errors.New("invalid netcdf header")
)

// AddFloat appends a float64 variable built from a dense array.
func (d *Dataset) AddFloat(name string, dims []string, data *sparse.DenseArray, attrs ...Attr) {
	d.Vars = append(d.Vars, Var{Name: name, Dims: dims, Attrs: attrs, Data: data})
}

// AddCoord appends a rank-1 float64 coordinate variable and its dimension.
func (d *Dataset) AddCoord(name string, values []float64, attrs ...Attr) {
	d.Dims = append(d.Dims, Dim{Name: name, Len: len(values)})

	coord := sparse.ZerosDense(len(values))
	copy(coord.Elements, values)

	d.AddFloat(name, []string{name}, coord, attrs...)
}

// AddLabels appends a char label coordinate and its dimension.
func (d *Dataset) AddLabels(name string, labels []string) {
	d.Dims = append(d.Dims, Dim{Name: name, Len: len(labels)})
	d.TextVars = append(d.TextVars, TextVar{Name: name, Dim: name, Labels: labels})
}

// width returns the fixed row width of the char variable, at least 1.
func (tv TextVar) width() int {
	w := 1

	for _, label := range tv.Labels {
		if len(label) > w {
			w = len(label)
		}
	}

	return w
}

// strlenDim names the companion string-length dimension.
func (tv TextVar) strlenDim() string {
	return tv.Name + "_strlen"
}

// Write creates path and writes the dataset into it.
func Write(path string, d *Dataset) error {
	if len(d.Dims) == 0 {
		return ErrNoDims
	}

	names := make([]string, 0, len(d.Dims)+len(d.TextVars))
	lengths := make([]int, 0, len(d.Dims)+len(d.TextVars))

	for _, dim := range d.Dims {
		names = append(names, dim.Name)
		lengths = append(lengths, dim.Len)
	}

	for _, tv := range d.TextVars {
		names = append(names, tv.strlenDim())
		lengths = append(lengths, tv.width())
	}

	h := cdf.NewHeader(names, lengths)

	for _, attr := range d.GlobalAttrs {
		h.AddAttribute("", attr.Name, attr.Value)
	}

	for _, v := range d.Vars {
		h.AddVariable(v.Name, v.Dims, []float64{0})

		for _, attr := range v.Attrs {
			h.AddAttribute(v.Name, attr.Name, attr.Value)
		}
	}

	for _, tv := range d.TextVars {
		h.AddVariable(tv.Name, []string{tv.Dim, tv.strlenDim()}, "")
	}

	h.Define()

	for _, err := range h.Check() {
		if err != nil {
			return fmt.Errorf("%w: %s", ErrHeader, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}

	dimLen := make(map[string]int, len(d.Dims))
	for _, dim := range d.Dims {
		dimLen[dim.Name] = dim.Len
	}

	for _, v := range d.Vars {
		start := make([]int, len(v.Dims))
		end := make([]int, len(v.Dims))

		for i, name := range v.Dims {
			end[i] = dimLen[name]
		}

		w := cf.Writer(v.Name, start, end)

		_, err = w.Write(v.Data.Elements)
		if err != nil {
			return fmt.Errorf("write %q to %s: %w", v.Name, path, err)
		}
	}

	for _, tv := range d.TextVars {
		width := tv.width()

		for i, label := range tv.Labels {
			row := label
			for len(row) < width {
				row += "\x00"
			}

			w := cf.Writer(tv.Name, []int{i, 0}, []int{i + 1, 0})

			_, err = w.Write(row)
			if err != nil {
				return fmt.Errorf("write %q row %d to %s: %w", tv.Name, i, path, err)
			}
		}
	}

	return nil
}
