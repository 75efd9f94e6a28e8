package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivideAndRoundUpBounds(t *testing.T) {
	for _, b := range []int{1, 2, 3, 32, 64, 128, 256, 1000} {
		for n := 1; n <= 2048; n++ {
			nb := DivideAndRoundUp(n, b)
			if nb*b < n || (nb-1)*b >= n {
				t.Fatalf("n=%d b=%d: numBlocks=%d does not round up", n, b, nb)
			}
		}
	}
}

func TestGrid1D(t *testing.T) {
	cfg, err := Grid1D(300, 128)
	require.NoError(t, err)
	assert.Equal(t, Dim3{X: 3, Y: 1, Z: 1}, cfg.Grid)
	assert.Equal(t, Dim3{X: 128, Y: 1, Z: 1}, cfg.Block)
	assert.Equal(t, 384, cfg.Threads())

	cfg, err = Grid1D(0, 128)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Grid.Count())

	_, err = Grid1D(10, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Grid1D(-1, 128)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	ok := Config{Grid: Dim3{1, 1, 1}, Block: Dim3{4, 1, 1}}
	assert.NoError(t, ok.Validate())

	bad := []Config{
		{Grid: Dim3{1, 1, 1}, Block: Dim3{0, 1, 1}},
		{Grid: Dim3{-1, 1, 1}, Block: Dim3{1, 1, 1}},
		{Grid: Dim3{1, 1, 1}, Block: Dim3{1, 1, 1}, SharedMem: -8},
	}
	for _, c := range bad {
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, "%+v", c)
	}
}

// The 300-element, 128-thread case: global ids 0..383, indices 301..384
// rejected by the guard, 1..300 hit once each.
func TestVectorCoverage300(t *testing.T) {
	const n, block = 300, 128
	cfg, err := Grid1D(n, block)
	require.NoError(t, err)

	hits := make([]int, n+1)
	rejected := 0
	maxGlobal := -1
	for b := 0; b < cfg.Grid.X; b++ {
		for tid := 0; tid < block; tid++ {
			th := Thread{ThreadIdx: Dim3{X: tid}, BlockIdx: Dim3{X: b}, BlockDim: cfg.Block}
			g := th.GlobalX()
			if g > maxGlobal {
				maxGlobal = g
			}
			i := 1 + 1*g
			if !Cond(i, n, 1) {
				rejected++
				continue
			}
			hits[i]++
		}
	}
	assert.Equal(t, 383, maxGlobal)
	assert.Equal(t, 84, rejected)
	for i := 1; i <= n; i++ {
		require.Equal(t, 1, hits[i], "index %d", i)
	}
}
