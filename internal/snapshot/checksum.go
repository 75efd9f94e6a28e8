package snapshot

import (
	"fmt"
	"strconv"

	xxh3 "github.com/zeebo/xxh3"
)

// DefaultChunkSize is the checksum chunk used when Options leaves it zero.
const DefaultChunkSize = 1 << 20

// ChecksumIndex holds rolling xxh3-64 hashes of a section's uncompressed
// payload. Hashes are hex strings so JSON never rounds them.
type ChecksumIndex struct {
	Algo      string   `json:"algo"`
	ChunkSize int      `json:"chunk_size"`
	Count     int      `json:"count"`
	HashesHex []string `json:"hashes_hex"`
}

func rollXXH3(data []byte, chunk int) []uint64 {
	hashes := make([]uint64, 0, (len(data)+chunk-1)/chunk)
	for i := 0; i < len(data); i += chunk {
		end := min(i+chunk, len(data))
		hashes = append(hashes, xxh3.Hash(data[i:end]))
	}
	return hashes
}

func newChecksumIndex(data []byte, chunk int) ChecksumIndex {
	hs := rollXXH3(data, chunk)
	hex := make([]string, len(hs))
	for i, h := range hs {
		hex[i] = fmt.Sprintf("%016x", h)
	}
	return ChecksumIndex{Algo: "xxh3-64", ChunkSize: chunk, Count: len(hs), HashesHex: hex}
}

func (c ChecksumIndex) check(data []byte) error {
	if c.Algo != "xxh3-64" || c.ChunkSize <= 0 {
		return fmt.Errorf("%w: checksum algo %q chunk %d", ErrFormat, c.Algo, c.ChunkSize)
	}
	have := rollXXH3(data, c.ChunkSize)
	if len(have) != len(c.HashesHex) {
		return fmt.Errorf("%w: chunk count %d, want %d", ErrChecksum, len(have), len(c.HashesHex))
	}
	for i, h := range have {
		want, err := strconv.ParseUint(c.HashesHex[i], 16, 64)
		if err != nil {
			return fmt.Errorf("%w: hash %d: %v", ErrFormat, i, err)
		}
		if h != want {
			return fmt.Errorf("%w: chunk %d", ErrChecksum, i)
		}
	}
	return nil
}
