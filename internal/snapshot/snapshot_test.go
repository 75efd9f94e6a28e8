package snapshot

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrv0/devarray/internal/array"
)

func TestWriterReaderWithCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.devarr")
	meta := []byte(`{"hello":"world"}`)
	raw := bytes.Repeat([]byte{1, 2, 3, 4}, 1024)
	zst := bytes.Repeat([]byte{5, 6, 7, 8}, 2048)

	w := NewWriter()
	w.AddSection(TypeMeta, meta, 0)
	w.AddSection(TypeData, raw, FlagCompLZ4)
	w.AddSection(7, zst, FlagCompZSTD)
	require.NoError(t, w.Write(path))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.TOC, 3)
	for _, e := range r.TOC {
		assert.Zero(t, e.Offset%sectionAlign, "section %d offset %d", e.TypeID, e.Offset)
	}

	got, err := r.SectionUncompressed(TypeMeta)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
	got, err = r.SectionUncompressed(TypeData)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	got, err = r.SectionUncompressed(7)
	require.NoError(t, err)
	assert.Equal(t, zst, got)

	stored, err := r.Section(7)
	require.NoError(t, err)
	assert.Less(t, len(stored), len(zst), "zstd should shrink a repetitive payload")

	_, err = r.Section(99)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestWriterRequiresSections(t *testing.T) {
	err := NewWriter().Write(filepath.Join(t.TempDir(), "empty"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(path, []byte("CAWSF\x00\x00\x00 not ours"), 0o644))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpenRejectsDamagedHeaderAndTOC(t *testing.T) {
	// header.Num sits after the magic and Ver; the first TOC entry follows
	// the 12-byte header as TypeID, Offset, Size, Flags.
	const (
		numAt    = 12
		offsetAt = 24
		sizeAt   = 32
	)
	u32 := func(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
	u64 := func(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

	cases := map[string]func(t *testing.T, f *os.File){
		"section count larger than file": func(t *testing.T, f *os.File) {
			_, err := f.WriteAt(u32(0xFFFFFFFF), numAt)
			require.NoError(t, err)
		},
		"section size past end": func(t *testing.T, f *os.File) {
			_, err := f.WriteAt(u64(1<<62), sizeAt)
			require.NoError(t, err)
		},
		"offset and size wrap around": func(t *testing.T, f *os.File) {
			_, err := f.WriteAt(u64(8), offsetAt)
			require.NoError(t, err)
			_, err = f.WriteAt(u64(^uint64(0)-4), sizeAt)
			require.NoError(t, err)
		},
		"offset past end": func(t *testing.T, f *os.File) {
			_, err := f.WriteAt(u64(1<<40), offsetAt)
			require.NoError(t, err)
		},
		"truncated toc": func(t *testing.T, f *os.File) {
			require.NoError(t, f.Truncate(20+10)) // header and part of one entry
		},
		"truncated header": func(t *testing.T, f *os.File) {
			require.NoError(t, f.Truncate(numAt))
		},
	}
	for name, damage := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "d.devarr")
			require.NoError(t, Save(path, array.Must(array.New([]float32{1, 2, 3}, 3)), Options{}))
			f, err := os.OpenFile(path, os.O_RDWR, 0)
			require.NoError(t, err)
			damage(t, f)
			require.NoError(t, f.Close())

			_, err = Open(path)
			assert.ErrorIs(t, err, ErrFormat)
			_, err = Inspect(path)
			assert.ErrorIs(t, err, ErrFormat)
			assert.ErrorIs(t, Verify(path), ErrFormat)
			_, err = Load[float32](path)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	data := make([]float32, 6*5)
	for i := range data {
		data[i] = float32(i) * 0.5
	}
	v := array.Must(array.NewWithBases(data, []int{6, 5}, []int{1, 0}))

	for _, comp := range []string{"none", "zstd", "lz4"} {
		t.Run(comp, func(t *testing.T) {
			flags, err := ParseCompression(comp)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "v.devarr")
			require.NoError(t, Save(path, v, Options{Compression: flags, ChunkSize: 16}))
			require.NoError(t, Verify(path))

			m, err := Inspect(path)
			require.NoError(t, err)
			assert.Equal(t, "F32", m.DType)
			assert.Equal(t, []int{6, 5}, m.Extents)
			assert.Equal(t, []int{1, 0}, m.Bases)
			assert.Equal(t, comp, m.Compression)
			assert.Equal(t, 8, m.Checksum.Count, "120 bytes in 16-byte chunks")

			got, err := Load[float32](path)
			require.NoError(t, err)
			assert.Equal(t, v.Shape(), got.Shape())
			assert.Equal(t, v.Bases(), got.Bases())
			assert.Equal(t, data, got.Data())
			assert.Equal(t, v.Get(6, 4), got.Get(6, 4))
		})
	}
}

func TestLoadRejectsWrongDType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i.devarr")
	require.NoError(t, Save(path, array.Must(array.New([]int64{1, 2, 3}, 3)), Options{}))

	_, err := Load[float64](path)
	assert.ErrorIs(t, err, ErrFormat)
	got, err := Load[int64](path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got.Data())
}

func TestVerifyDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.devarr")
	v := array.Must(array.New([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8))
	require.NoError(t, Save(path, v, Options{ChunkSize: 8}))

	r, err := Open(path)
	require.NoError(t, err)
	var off int64
	for _, e := range r.TOC {
		if e.TypeID == TypeData {
			off = int64(e.Offset)
		}
	}
	require.NoError(t, r.Close())
	require.NotZero(t, off)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xff}, off+17)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = Verify(path)
	require.ErrorIs(t, err, ErrChecksum)
	assert.Contains(t, err.Error(), "chunk 2")

	_, err = Load[float64](path)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]uint32{"": 0, "none": 0, "ZSTD": FlagCompZSTD, "lz4": FlagCompLZ4} {
		got, err := ParseCompression(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
}
