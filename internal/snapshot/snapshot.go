// Package snapshot dumps the contents and shape descriptor of an array view
// to a sectioned file, and reads it back. Payloads may be zstd or lz4
// compressed and carry rolling xxh3 checksums.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/qrv0/devarray/internal/array"
)

var (
	// ErrFormat is returned for files that are not valid snapshots.
	ErrFormat = errors.New("snapshot: bad format")
	// ErrChecksum is returned when a payload does not match its checksums.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
)

const formatVersion = 1

// Meta is the JSON metadata section.
type Meta struct {
	FormatVersion int           `json:"format_version"`
	DType         string        `json:"dtype"`
	Extents       []int         `json:"extents"`
	Bases         []int         `json:"bases"`
	Compression   string        `json:"compression"`
	Checksum      ChecksumIndex `json:"checksum"`
}

// Elements is the number of elements the shape describes.
func (m Meta) Elements() int {
	n := 1
	for _, e := range m.Extents {
		n *= e
	}
	return n
}

// Options control Save.
type Options struct {
	Compression uint32 // FlagCompZSTD, FlagCompLZ4 or zero
	ChunkSize   int    // checksum chunk, DefaultChunkSize when zero
}

func dtypeOf[T array.Element]() string {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32:
		return "F32"
	case reflect.Float64:
		return "F64"
	case reflect.Int32:
		return "I32"
	case reflect.Int64:
		return "I64"
	}
	return ""
}

// Save writes v's shape and elements to path. The view is only read.
func Save[T array.Element](path string, v array.View[T], opt Options) error {
	var data bytes.Buffer
	if err := binary.Write(&data, binary.LittleEndian, v.Data()); err != nil {
		return err
	}
	chunk := opt.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	meta := Meta{
		FormatVersion: formatVersion,
		DType:         dtypeOf[T](),
		Extents:       v.Shape(),
		Bases:         v.Bases(),
		Compression:   CompressionName(opt.Compression),
		Checksum:      newChecksumIndex(data.Bytes(), chunk),
	}
	mb, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	w := NewWriter()
	w.AddSection(TypeMeta, mb, 0)
	w.AddSection(TypeData, data.Bytes(), opt.Compression)
	return w.Write(path)
}

func readMeta(r *Reader) (Meta, error) {
	mb, err := r.SectionUncompressed(TypeMeta)
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(mb, &m); err != nil {
		return Meta{}, fmt.Errorf("%w: meta: %v", ErrFormat, err)
	}
	if m.FormatVersion != formatVersion {
		return Meta{}, fmt.Errorf("%w: version %d", ErrFormat, m.FormatVersion)
	}
	return m, nil
}

// Inspect returns the metadata of the snapshot at path.
func Inspect(path string) (Meta, error) {
	r, err := Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer r.Close()
	return readMeta(r)
}

// Verify recomputes the data checksums of the snapshot at path.
func Verify(path string) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	m, err := readMeta(r)
	if err != nil {
		return err
	}
	data, err := r.SectionUncompressed(TypeData)
	if err != nil {
		return err
	}
	return m.Checksum.check(data)
}

// Load reads a snapshot into a freshly allocated buffer and returns a view
// over it. The buffer belongs to the caller through the returned view's
// Data.
func Load[T array.Element](path string) (array.View[T], error) {
	r, err := Open(path)
	if err != nil {
		return array.View[T]{}, err
	}
	defer r.Close()
	m, err := readMeta(r)
	if err != nil {
		return array.View[T]{}, err
	}
	if want := dtypeOf[T](); m.DType != want {
		return array.View[T]{}, fmt.Errorf("%w: dtype %s, want %s", ErrFormat, m.DType, want)
	}
	raw, err := r.SectionUncompressed(TypeData)
	if err != nil {
		return array.View[T]{}, err
	}
	if err := m.Checksum.check(raw); err != nil {
		return array.View[T]{}, err
	}
	n := m.Elements()
	var zero T
	if len(raw) != n*binary.Size(zero) {
		return array.View[T]{}, fmt.Errorf("%w: %d data bytes for %d elements", ErrFormat, len(raw), n)
	}
	buf := make([]T, n)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, buf); err != nil {
		return array.View[T]{}, err
	}
	return array.NewWithBases(buf, m.Extents, m.Bases)
}
