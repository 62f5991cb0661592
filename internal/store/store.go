// Package store persists diagnostic results between the run and render
// phases. Summaries are codec-encoded files under one directory per
// diagnostic; dense arrays are gob frames compressed with LZ4 blocks.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/sparse"
	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	jsonExtension  = ".json"
	gobExtension   = ".gob"
	arrayExtension = ".gob.lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

const (
	manifestName = "manifest"

	dirPerm  = 0o755
	filePerm = 0o644

	// frameHeaderSize holds two little-endian uint64 lengths: uncompressed
	// and compressed. A zero compressed length marks a raw payload.
	frameHeaderSize = 16
)

// ErrCorruptFrame indicates an array file whose frame header disagrees with
// its payload.
var ErrCorruptFrame = errors.New("corrupt array frame")

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode using gob encoding.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	err := gob.NewEncoder(w).Encode(state)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using gob decoding.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	err := gob.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for gob files.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// Store reads and writes diagnostic state under one root directory.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Dir ensures the directory of one diagnostic exists and returns it.
func (s *Store) Dir(diag string) (string, error) {
	dir := filepath.Join(s.root, diag)

	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create store dir: %w", err)
	}

	return dir, nil
}

// SaveState writes codec-encoded state under a diagnostic's directory.
func (s *Store) SaveState(diag, basename string, codec Codec, state any) error {
	dir, err := s.Dir(diag)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer file.Close()

	err = codec.Encode(file, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return nil
}

// LoadState reads codec-encoded state from a diagnostic's directory. The
// state parameter must be a pointer to the target.
func (s *Store) LoadState(diag, basename string, codec Codec, state any) error {
	path := filepath.Join(s.root, diag, basename+codec.Extension())

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// SaveJSON writes state as pretty-printed JSON.
func (s *Store) SaveJSON(diag, basename string, state any) error {
	return s.SaveState(diag, basename, NewJSONCodec(), state)
}

// LoadJSON reads JSON state written by SaveJSON.
func (s *Store) LoadJSON(diag, basename string, state any) error {
	return s.LoadState(diag, basename, NewJSONCodec(), state)
}

// SaveArray writes a dense array as a compressed gob frame.
func (s *Store) SaveArray(diag, basename string, a *sparse.DenseArray) error {
	dir, err := s.Dir(diag)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = NewGobCodec().Encode(&buf, a)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, basename+arrayExtension)

	err = os.WriteFile(path, compressFrame(buf.Bytes()), filePerm)
	if err != nil {
		return fmt.Errorf("write array file: %w", err)
	}

	return nil
}

// LoadArray reads a dense array written by SaveArray.
func (s *Store) LoadArray(diag, basename string) (*sparse.DenseArray, error) {
	path := filepath.Join(s.root, diag, basename+arrayExtension)

	framed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read array file: %w", err)
	}

	raw, err := expandFrame(framed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	a := &sparse.DenseArray{}

	err = NewGobCodec().Decode(bytes.NewReader(raw), a)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Manifest records what a run produced, for the render phase.
type Manifest struct {
	Case        string    `json:"case"`
	CreatedAt   time.Time `json:"created_at"`
	Diagnostics []string  `json:"diagnostics"`
}

// SaveManifest writes the run manifest at the store root.
func (s *Store) SaveManifest(m *Manifest) error {
	return s.SaveState(".", manifestName, NewJSONCodec(), m)
}

// LoadManifest reads the run manifest.
func (s *Store) LoadManifest() (*Manifest, error) {
	m := &Manifest{}

	err := s.LoadState(".", manifestName, NewJSONCodec(), m)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// compressFrame prefixes an LZ4 block with uncompressed and compressed
// lengths. Payloads the block codec cannot shrink are stored raw.
func compressFrame(raw []byte) []byte {
	bound := lz4.CompressBlockBound(len(raw))
	frame := make([]byte, frameHeaderSize+bound)

	binary.LittleEndian.PutUint64(frame, uint64(len(raw)))

	written, err := lz4.CompressBlock(raw, frame[frameHeaderSize:], nil)
	if err != nil || written == 0 {
		frame = append(frame[:frameHeaderSize], raw...)
		binary.LittleEndian.PutUint64(frame[8:frameHeaderSize], 0)

		return frame
	}

	binary.LittleEndian.PutUint64(frame[8:frameHeaderSize], uint64(written))

	return frame[:frameHeaderSize+written]
}

// expandFrame reverses compressFrame.
func expandFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, ErrCorruptFrame
	}

	rawLen := binary.LittleEndian.Uint64(frame)
	compLen := binary.LittleEndian.Uint64(frame[8:frameHeaderSize])
	payload := frame[frameHeaderSize:]

	if compLen == 0 {
		if uint64(len(payload)) != rawLen {
			return nil, ErrCorruptFrame
		}

		return payload, nil
	}

	if uint64(len(payload)) != compLen {
		return nil, ErrCorruptFrame
	}

	raw := make([]byte, rawLen)

	n, err := lz4.UncompressBlock(payload, raw)
	if err != nil || uint64(n) != rawLen {
		return nil, ErrCorruptFrame
	}

	return raw, nil
}
