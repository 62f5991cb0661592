package ncio

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFillValue = -999.0

// writeFixture writes a small dataset with a record axis, a fill-marked
// field and coordinate variables, returning its path.
func writeFixture(t *testing.T) string {
	t.Helper()

	field := sparse.ZerosDense(2, 2, 3)
	for i := range field.Elements {
		field.Elements[i] = float64(i)
	}

	field.Elements[4] = testFillValue

	d := &Dataset{
		GlobalAttrs: []Attr{{Name: "title", Value: "fixture"}},
	}
	d.AddCoord("time", []float64{15, 45}, Attr{Name: "units", Value: "days since 2000-01-01"})
	d.AddCoord("lat", []float64{-30, 30}, Attr{Name: "units", Value: "degrees_north"})
	d.AddCoord("lon", []float64{0, 120, 240}, Attr{Name: "units", Value: "degrees_east"})
	d.AddFloat("thetao", []string{"time", "lat", "lon"}, field,
		Attr{Name: "units", Value: "degC"},
		Attr{Name: "_FillValue", Value: []float64{testFillValue}},
	)

	path := filepath.Join(t.TempDir(), "fixture.nc")
	require.NoError(t, Write(path, d))

	return path
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)

	f, err := Open(path)
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, path, f.Path())
	assert.True(t, f.Has("thetao"))
	assert.True(t, f.Has("lat"))
	assert.False(t, f.Has("salinity"))

	dims, err := f.Dims("thetao")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 3}, dims)

	got, err := f.Read("thetao")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 3}, got.Shape)
	assert.Equal(t, 0.0, got.Elements[0])
	assert.Equal(t, 11.0, got.Elements[11])
}

func TestReadMapsFillValueToNaN(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	got, err := f.Read("thetao")
	require.NoError(t, err)

	assert.True(t, math.IsNaN(got.Elements[4]))
	assert.Equal(t, 3.0, got.Elements[3])
	assert.Equal(t, 5.0, got.Elements[5])
}

func TestReadRecordSlicesLeadingAxis(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	rec, err := f.ReadRecord("thetao", 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, rec.Shape)
	assert.Equal(t, 6.0, rec.Elements[0])
	assert.Equal(t, 11.0, rec.Elements[5])
}

func TestReadRecordRejectsRank1(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	_, err = f.ReadRecord("lat", 0)
	require.ErrorIs(t, err, ErrNoVariable)
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, "fixture", f.AttrString("", "title"))
	assert.Equal(t, "degC", f.AttrString("thetao", "units"))
	assert.Equal(t, "", f.AttrString("thetao", "long_name"))
}

func TestFloats1D(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	lat, err := f.Floats1D("lat")
	require.NoError(t, err)
	assert.Equal(t, []float64{-30, 30}, lat)

	_, err = f.Floats1D("thetao")
	require.ErrorIs(t, err, ErrNoVariable)
}

func TestMissingVariable(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t))
	require.NoError(t, err)

	defer f.Close()

	_, err = f.Dims("vmo")
	require.ErrorIs(t, err, ErrNoVariable)

	_, err = f.Read("vmo")
	require.ErrorIs(t, err, ErrNoVariable)
}

func TestWriteRejectsEmptyDataset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.nc")
	err := Write(path, &Dataset{})
	require.ErrorIs(t, err, ErrNoDims)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "absent.nc"))
	require.Error(t, err)
}

func TestWriteLabelCoordinates(t *testing.T) {
	t.Parallel()

	cube := sparse.ZerosDense(2, 3, 2)
	for i := range cube.Elements {
		cube.Elements[i] = float64(i)
	}

	d := &Dataset{}
	d.AddCoord("time", []float64{1, 2})
	d.AddLabels("basin", []string{"Global", "Atlantic"})
	d.AddLabels("stats", []string{"min", "max", "mean"})
	d.AddFloat("tos", []string{"basin", "stats", "time"}, cube)

	path := filepath.Join(t.TempDir(), "labels.nc")
	require.NoError(t, Write(path, d))

	f, err := Open(path)
	require.NoError(t, err)

	defer f.Close()

	assert.True(t, f.Has("basin"))
	assert.True(t, f.Has("stats"))

	dims, err := f.Dims("basin")
	require.NoError(t, err)
	assert.Equal(t, []int{2, len("Atlantic")}, dims)

	dims, err = f.Dims("stats")
	require.NoError(t, err)
	assert.Equal(t, []int{3, len("mean")}, dims)

	got, err := f.Read("tos")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 2}, got.Shape)
	assert.Equal(t, 11.0, got.Elements[11])
}
