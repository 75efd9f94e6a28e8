package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
)

// ParseCompression maps "none", "zstd" or "lz4" to section flags.
func ParseCompression(name string) (uint32, error) {
	switch strings.ToLower(name) {
	case "", "none", "raw":
		return 0, nil
	case "zstd":
		return FlagCompZSTD, nil
	case "lz4":
		return FlagCompLZ4, nil
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}

// CompressionName is the inverse of ParseCompression.
func CompressionName(flags uint32) string {
	switch {
	case flags&FlagCompZSTD != 0:
		return "zstd"
	case flags&FlagCompLZ4 != 0:
		return "lz4"
	}
	return "none"
}

func compress(flags uint32, b []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, make([]byte, 0, len(b))), nil
	case flags&FlagCompLZ4 != 0:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return b, nil
}

func decompress(flags uint32, b []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
		}
		return out, nil
	case flags&FlagCompLZ4 != 0:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(b))); err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrFormat, err)
		}
		return buf.Bytes(), nil
	}
	return b, nil
}
