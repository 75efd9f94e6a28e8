package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var magic = [8]byte{'D', 'E', 'V', 'A', 'R', 'R', 0, 0}

// Section types.
const (
	TypeMeta = 1
	TypeData = 2
)

// Section flags.
const (
	FlagCompZSTD uint32 = 1 << 0
	FlagCompLZ4  uint32 = 1 << 1
)

const sectionAlign = 4096

type section struct {
	TypeID uint32
	Data   []byte
	Flags  uint32
}

type tocEntry struct {
	TypeID uint32
	Offset uint64
	Size   uint64
	Flags  uint32
}

type header struct{ Ver, Num, Res uint32 }

// Writer assembles a file from sections: magic, header, table of contents,
// then each section payload aligned to 4096 bytes.
type Writer struct {
	sections []section
}

func NewWriter() *Writer { return &Writer{} }

// AddSection appends a section; flags select optional compression.
func (w *Writer) AddSection(t uint32, data []byte, flags uint32) {
	w.sections = append(w.sections, section{TypeID: t, Data: data, Flags: flags})
}

func alignUp(x, a int64) int64 {
	if r := x % a; r != 0 {
		return x + (a - r)
	}
	return x
}

// Write creates path and writes all sections to it.
func (w *Writer) Write(path string) error {
	if len(w.sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrFormat)
	}
	payloads := make([][]byte, len(w.sections))
	for i, s := range w.sections {
		data, err := compress(s.Flags, s.Data)
		if err != nil {
			return fmt.Errorf("section %d: %w", s.TypeID, err)
		}
		payloads[i] = data
	}

	recs := make([]tocEntry, len(w.sections))
	base := int64(len(magic) + binary.Size(header{}) + binary.Size(tocEntry{})*len(w.sections))
	offset := alignUp(base, sectionAlign)
	for i, s := range w.sections {
		recs[i] = tocEntry{TypeID: s.TypeID, Offset: uint64(offset), Size: uint64(len(payloads[i])), Flags: s.Flags}
		offset = alignUp(offset+int64(len(payloads[i])), sectionAlign)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(magic[:]); err != nil {
		return err
	}
	hdr := header{Ver: 1, Num: uint32(len(w.sections))}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	for i := range recs {
		if err := binary.Write(f, binary.LittleEndian, &recs[i]); err != nil {
			return err
		}
	}
	for i := range recs {
		if _, err := f.WriteAt(payloads[i], int64(recs[i].Offset)); err != nil {
			return err
		}
	}
	// pad the tail so the file length is aligned like every section
	if err := f.Truncate(offset); err != nil {
		return err
	}
	return f.Close()
}

// Reader gives access to the sections of a file.
type Reader struct {
	f   *os.File
	TOC []tocEntry
}

// Open reads the header and table of contents of path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !bytes.Equal(head, magic[:]) {
		f.Close()
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, head)
	}
	var hdr header
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := uint64(st.Size())
	tocStart := uint64(len(magic) + binary.Size(header{}))
	if room := (size - tocStart) / uint64(binary.Size(tocEntry{})); uint64(hdr.Num) > room {
		f.Close()
		return nil, fmt.Errorf("%w: %d sections in a %d byte file", ErrFormat, hdr.Num, size)
	}
	toc := make([]tocEntry, hdr.Num)
	for i := range toc {
		if err := binary.Read(f, binary.LittleEndian, &toc[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: toc: %v", ErrFormat, err)
		}
		// Offset+Size may wrap, so compare against what is left after Offset.
		if e := toc[i]; e.Offset > size || e.Size > size-e.Offset {
			f.Close()
			return nil, fmt.Errorf("%w: section %d [%d+%d] past end of %d byte file", ErrFormat, e.TypeID, e.Offset, e.Size, size)
		}
	}
	return &Reader{f: f, TOC: toc}, nil
}

func (r *Reader) Close() error { return r.f.Close() }

func (r *Reader) entry(typeID uint32) (tocEntry, error) {
	for _, e := range r.TOC {
		if e.TypeID == typeID {
			return e, nil
		}
	}
	return tocEntry{}, fmt.Errorf("%w: section %d not found", ErrFormat, typeID)
}

// Section returns the stored bytes of a section, compressed or not.
func (r *Reader) Section(typeID uint32) ([]byte, error) {
	e, err := r.entry(typeID)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, e.Size)
	if _, err := r.f.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, err
	}
	return buf, nil
}

// SectionUncompressed returns the payload of a section after undoing its
// compression flags.
func (r *Reader) SectionUncompressed(typeID uint32) ([]byte, error) {
	e, err := r.entry(typeID)
	if err != nil {
		return nil, err
	}
	buf, err := r.Section(typeID)
	if err != nil {
		return nil, err
	}
	return decompress(e.Flags, buf)
}
