package launch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type task struct {
	ctx   context.Context
	name  string
	cfg   Config
	k     Kernel
	fence chan struct{}
}

// Stream orders launches: work enqueued on a stream runs one launch at a
// time in submission order. It carries no other meaning.
type Stream struct {
	id  uuid.UUID
	dev *Device
	log *slog.Logger

	mu     sync.Mutex // guards closed and sends on work
	closed bool
	work   chan task
	done   chan struct{}

	errMu sync.Mutex
	err   error // first failure since the last Synchronize
}

// NewStream starts a stream executing on dev. A nil logger discards.
func NewStream(dev *Device, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Stream{
		id:   uuid.New(),
		dev:  dev,
		work: make(chan task, 64),
		done: make(chan struct{}),
	}
	s.log = logger.With("stream", s.id.String())
	go s.loop()
	return s
}

// ID identifies the stream in logs.
func (s *Stream) ID() uuid.UUID { return s.id }

func (s *Stream) loop() {
	defer close(s.done)
	for t := range s.work {
		if t.fence != nil {
			close(t.fence)
			continue
		}
		start := time.Now()
		err := Run(t.ctx, s.dev, t.cfg, t.k)
		s.log.Debug("kernel finished",
			"kernel", t.name,
			"grid", t.cfg.Grid.X,
			"block", t.cfg.Block.X,
			"elapsed", time.Since(start),
		)
		if err != nil {
			s.log.Error("kernel failed", "kernel", t.name, "err", err)
			s.errMu.Lock()
			if s.err == nil {
				s.err = fmt.Errorf("%s: %w", t.name, err)
			}
			s.errMu.Unlock()
		}
	}
}

func (s *Stream) submit(ctx context.Context, t task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	select {
	case s.work <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue queues a launch behind all earlier work on the stream and
// returns without waiting for it.
func (s *Stream) Enqueue(ctx context.Context, name string, cfg Config, k Kernel) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return s.submit(ctx, task{ctx: ctx, name: name, cfg: cfg, k: k})
}

// Synchronize waits until all work enqueued before the call has run and
// returns the first error seen since the previous Synchronize.
func (s *Stream) Synchronize(ctx context.Context) error {
	fence := make(chan struct{})
	if err := s.submit(ctx, task{fence: fence}); err != nil {
		return err
	}
	select {
	case <-fence:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// Close drains the stream, stops its goroutine and returns any error not
// yet reported by Synchronize. Close is idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.work)
	}
	s.mu.Unlock()
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	err := s.err
	s.err = nil
	return err
}
