package launch

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileCount(t *testing.T) {
	l := Loop{First: 1, Last: 300, Step: 1}
	for size, want := range map[int]int{1: 300, 7: 43, 128: 3, 300: 1, 512: 1} {
		tl, err := l.Tile(size)
		require.NoError(t, err)
		assert.Equal(t, want, tl.NumTiles(), "size %d", size)
	}

	_, err := l.Tile(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	empty, err := Loop{First: 5, Last: 1, Step: 1}.Tile(4)
	require.NoError(t, err)
	assert.Zero(t, empty.NumTiles())
	_, ok := empty.Index(0, 0)
	assert.False(t, ok)
}

func TestTileIndexRecovery(t *testing.T) {
	tl, err := Loop{First: 10, Last: -17, Step: -3}.Tile(4)
	require.NoError(t, err)
	require.Equal(t, 3, tl.NumTiles())

	i, ok := tl.Index(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 10, i)
	i, ok = tl.Index(2, 1)
	assert.True(t, ok)
	assert.Equal(t, -17, i)
	_, ok = tl.Index(2, 2)
	assert.False(t, ok, "padding in the last tile")
	_, ok = tl.Index(0, 4)
	assert.False(t, ok)
}

func TestTiledLaunchVisitsLoopOnce(t *testing.T) {
	l := Loop{First: 2, Last: 200, Step: 3}
	tl, err := l.Tile(16)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[int]int{}
	err = Run(context.Background(), &Device{Workers: 3}, tl.Grid(), func(th Thread) {
		if i, ok := tl.Index(th.BlockIdx.X, th.ThreadIdx.X); ok {
			mu.Lock()
			seen[i]++
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	require.Len(t, seen, l.Len())
	for k := 0; k < l.Len(); k++ {
		assert.Equal(t, 1, seen[l.Index(k)], "index %d", l.Index(k))
	}
}
