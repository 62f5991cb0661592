package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummary struct {
	Case  string    `json:"case"`
	Value float64   `json:"value"`
	Cells []float64 `json:"cells"`
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	in := fakeSummary{Case: "tidecase", Value: 17.5, Cells: []float64{1, 2, 3}}

	require.NoError(t, s.SaveJSON("moc", "analysis", in))

	var out fakeSummary

	require.NoError(t, s.LoadJSON("moc", "analysis", &out))
	assert.Equal(t, in, out)

	_, err := os.Stat(filepath.Join(s.Root(), "moc", "analysis.json"))
	require.NoError(t, err)
}

func TestSaveLoadGobState(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	in := fakeSummary{Case: "tidecase", Value: -2}

	require.NoError(t, s.SaveState("surface", "stats", NewGobCodec(), in))

	var out fakeSummary

	require.NoError(t, s.LoadState("surface", "stats", NewGobCodec(), &out))
	assert.Equal(t, in, out)
}

func TestLoadMissingState(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())

	var out fakeSummary

	require.Error(t, s.LoadJSON("moc", "absent", &out))
}

func TestArrayRoundTripCompressed(t *testing.T) {
	t.Parallel()

	a := sparse.ZerosDense(40, 30)
	for i := range a.Elements {
		a.Elements[i] = float64(i % 7)
	}

	s := New(t.TempDir())
	require.NoError(t, s.SaveArray("moc", "psi", a))

	info, err := os.Stat(filepath.Join(s.Root(), "moc", "psi.gob.lz4"))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(a.Elements)*8), "repetitive payload compresses")

	got, err := s.LoadArray("moc", "psi")
	require.NoError(t, err)
	assert.Equal(t, a.Shape, got.Shape)
	assert.Equal(t, a.Elements, got.Elements)
}

func TestArrayRoundTripTinyPayload(t *testing.T) {
	t.Parallel()

	a := sparse.ZerosDense(2)
	a.Elements[0] = math.Pi
	a.Elements[1] = -math.E

	s := New(t.TempDir())
	require.NoError(t, s.SaveArray("moc", "tiny", a))

	got, err := s.LoadArray("moc", "tiny")
	require.NoError(t, err)
	assert.Equal(t, a.Elements, got.Elements)
}

func TestLoadArrayCorruptFrame(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())

	dir, err := s.Dir("moc")
	require.NoError(t, err)

	path := filepath.Join(dir, "bad"+arrayExtension)
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, filePerm))

	_, err = s.LoadArray("moc", "bad")
	require.ErrorIs(t, err, ErrCorruptFrame)
}

func TestExpandFrameLengthChecks(t *testing.T) {
	t.Parallel()

	frame := compressFrame([]byte("abcabcabcabcabcabcabcabc"))

	_, err := expandFrame(frame[:len(frame)-1])
	require.ErrorIs(t, err, ErrCorruptFrame)

	raw, err := expandFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, "abcabcabcabcabcabcabcabc", string(raw))
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	in := &Manifest{
		Case:        "tidecase",
		CreatedAt:   time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		Diagnostics: []string{"moc", "surface"},
	}

	require.NoError(t, s.SaveManifest(in))

	out, err := s.LoadManifest()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
