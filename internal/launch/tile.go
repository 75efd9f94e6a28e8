package launch

import "fmt"

// Tiling splits a loop into consecutive tiles of Size iterations. The last
// tile is padded; Index reports the padding as outside the loop.
type Tiling struct {
	Loop Loop
	Size int
}

// Tile splits l into tiles of size iterations.
func (l Loop) Tile(size int) (Tiling, error) {
	if size < 1 {
		return Tiling{}, fmt.Errorf("%w: tile size %d", ErrInvalidConfig, size)
	}
	return Tiling{Loop: l, Size: size}, nil
}

// NumTiles is ceil(Len/Size).
func (t Tiling) NumTiles() int { return DivideAndRoundUp(t.Loop.Len(), t.Size) }

// Index recovers the loop index of element elem of tile. It returns false
// for elements past the end of the loop.
func (t Tiling) Index(tile, elem int) (int, bool) {
	if elem < 0 || elem >= t.Size || tile < 0 {
		return 0, false
	}
	n := elem + t.Size*tile
	if n >= t.Loop.Len() {
		return 0, false
	}
	return t.Loop.Index(n), true
}

// Grid launches one block per tile with one thread per tile element.
func (t Tiling) Grid() Config {
	return Config{
		Grid:  Dim3{X: t.NumTiles(), Y: 1, Z: 1},
		Block: Dim3{X: t.Size, Y: 1, Z: 1},
	}
}
