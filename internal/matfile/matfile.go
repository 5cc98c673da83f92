// Package matfile reads and writes matrices for the CLI.
//
// Two encodings are supported, chosen by file extension:
//
//	.json  {"rows":R,"cols":C,"data":[...]}
//	.f32   raw little-endian float32, no header; shape supplied by the caller
package matfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sys/unix"

	"github.com/samcharles93/cudamm/internal/tensor"
)

var (
	ErrUnknownFormat = errors.New("unknown matrix file format")
	ErrSize          = errors.New("matrix file size does not match shape")
	ErrNoShape       = errors.New("raw matrix files need explicit rows and cols")
)

type Format int

const (
	FormatJSON Format = iota
	FormatRaw
)

// FormatFor picks the encoding from path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".f32", ".bin":
		return FormatRaw, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

type jsonMatrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float32 `json:"data"`
}

// Load reads a rows x cols matrix. For JSON files rows and cols may be 0, in
// which case the shape stored in the file is used; otherwise it must match.
func Load(path string, rows, cols int) (*tensor.Tensor, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatRaw:
		if rows <= 0 || cols <= 0 {
			return nil, ErrNoShape
		}
		want, err := tensor.Elems(rows, cols)
		if err != nil {
			return nil, err
		}
		data, err := readRaw(path, want)
		if err != nil {
			return nil, err
		}
		return tensor.New2D(data, rows, cols)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return DecodeJSON(f, rows, cols)
	}
}

// DecodeJSON decodes one JSON matrix and checks it against rows and cols
// when they are non-zero.
func DecodeJSON(r io.Reader, rows, cols int) (*tensor.Tensor, error) {
	var m jsonMatrix
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	if (rows != 0 && m.Rows != rows) || (cols != 0 && m.Cols != cols) {
		return nil, fmt.Errorf("%w: file is %dx%d, want %dx%d", ErrSize, m.Rows, m.Cols, rows, cols)
	}
	return tensor.New2D(m.Data, m.Rows, m.Cols)
}

func EncodeJSON(w io.Writer, t *tensor.Tensor) error {
	return json.NewEncoder(w).Encode(jsonMatrix{Rows: t.Rows(), Cols: t.Cols(), Data: t.Data})
}

// Save writes t to path in the format implied by its extension.
func Save(path string, t *tensor.Tensor) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatRaw:
		err = writeRaw(f, t.Data)
	default:
		err = EncodeJSON(f, t)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// readRaw maps path read-only and decodes want float32 values. If mmap is
// unavailable it falls back to ReadAt. The result never aliases the mapping.
func readRaw(path string, want int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() != int64(want)*4 {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSize, path, stat.Size(), int64(want)*4)
	}
	if want == 0 {
		return []float32{}, nil
	}

	size := int(stat.Size())
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		out := decodeRaw(data)
		return out, unix.Munmap(data)
	}

	// Fallback path that does not require mmap support.
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return decodeRaw(buf), nil
}

func decodeRaw(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func writeRaw(w io.Writer, data []float32) error {
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}
