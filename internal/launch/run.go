package launch

import (
	"context"
	"fmt"
	"sync"
)

// Run executes every block of cfg on dev's worker goroutines and returns
// when all of them have finished. Threads inside a block run in order.
//
// A kernel panic stops the launch and is returned as an error wrapping the
// panic value when it is an error. ctx is checked between blocks only.
func Run(ctx context.Context, dev *Device, cfg Config, k Kernel) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	nblocks := cfg.Grid.Count()
	if nblocks == 0 {
		return nil
	}
	workers := 1
	if dev != nil && dev.Workers > 0 {
		workers = dev.Workers
	}
	if workers > nblocks {
		workers = nblocks
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	stop := make(chan struct{})
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			close(stop)
		})
	}

	blocks := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var shared []byte
			if cfg.SharedMem > 0 {
				shared = make([]byte, cfg.SharedMem)
			}
			for b := range blocks {
				clear(shared)
				if err := runBlock(cfg, b, shared, k); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for b := 0; b < nblocks; b++ {
		select {
		case blocks <- b:
		case <-stop:
			break feed
		case <-ctx.Done():
			fail(ctx.Err())
			break feed
		}
	}
	close(blocks)
	wg.Wait()
	return firstErr
}

func runBlock(cfg Config, b int, shared []byte, k Kernel) (err error) {
	t := Thread{
		BlockIdx: Dim3{
			X: b % cfg.Grid.X,
			Y: b / cfg.Grid.X % cfg.Grid.Y,
			Z: b / (cfg.Grid.X * cfg.Grid.Y),
		},
		BlockDim: cfg.Block,
		GridDim:  cfg.Grid,
		Shared:   shared,
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("launch: block %+v thread %+v: %w", t.BlockIdx, t.ThreadIdx, e)
				return
			}
			err = fmt.Errorf("launch: block %+v thread %+v: panic: %v", t.BlockIdx, t.ThreadIdx, r)
		}
	}()
	for z := 0; z < cfg.Block.Z; z++ {
		for y := 0; y < cfg.Block.Y; y++ {
			for x := 0; x < cfg.Block.X; x++ {
				t.ThreadIdx = Dim3{X: x, Y: y, Z: z}
				k(t)
			}
		}
	}
	return nil
}

// Launch runs k on s, or synchronously on the calling goroutine when s is
// nil. With a stream, errors surface at Synchronize.
func Launch(ctx context.Context, dev *Device, s *Stream, name string, cfg Config, k Kernel) error {
	if s == nil {
		if err := Run(ctx, dev, cfg, k); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
	return s.Enqueue(ctx, name, cfg, k)
}
