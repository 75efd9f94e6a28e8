// Package interop is the scalar-only call boundary between two separately
// built components. Entry points exchange int32 values: the first argument
// by value, the second by reference. Nothing is owned across the boundary
// and no aggregate data crosses it.
package interop

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

var (
	// ErrUnknownEntryPoint is returned when a name is not registered.
	ErrUnknownEntryPoint = errors.New("interop: unknown entry point")
	// ErrSignature is returned when an entry point has the other signature.
	ErrSignature = errors.New("interop: signature mismatch")
)

// Subroutine is an entry point with no result.
type Subroutine func(a int32, b *int32)

// Function is an entry point returning a scalar.
type Function func(a int32, b *int32) int32

// EntryPoints is the contract one side implements and the other consumes.
type EntryPoints interface {
	Subroutine(a int32, b *int32)
	Function(a int32, b *int32) int32
}

// Forwarder implements EntryPoints by calling Target and then logging the
// value left in b.
type Forwarder struct {
	Target EntryPoints
	Logger *slog.Logger
}

func (f Forwarder) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}

func (f Forwarder) Subroutine(a int32, b *int32) {
	f.Target.Subroutine(a, b)
	f.logger().Info("subroutine returned", "a", a, "b", *b)
}

func (f Forwarder) Function(a int32, b *int32) int32 {
	r := f.Target.Function(a, b)
	f.logger().Info("function returned", "a", a, "b", *b, "result", r)
	return r
}

// Funcs adapts a pair of plain functions to EntryPoints.
type Funcs struct {
	Sub Subroutine
	Fn  Function
}

func (p Funcs) Subroutine(a int32, b *int32)     { p.Sub(a, b) }
func (p Funcs) Function(a int32, b *int32) int32 { return p.Fn(a, b) }

// Table is a named set of entry points with fixed signatures.
type Table struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{entries: make(map[string]any)} }

// Register adds fn under name. fn must be a Subroutine or a Function (or a
// func literal with one of those signatures) and must not be nil.
func (t *Table) Register(name string, fn any) error {
	var ok bool
	switch f := fn.(type) {
	case Subroutine:
		fn, ok = f, f != nil
	case Function:
		fn, ok = f, f != nil
	case func(int32, *int32):
		fn, ok = Subroutine(f), f != nil
	case func(int32, *int32) int32:
		fn, ok = Function(f), f != nil
	default:
		return fmt.Errorf("%w: %s has type %T", ErrSignature, name, fn)
	}
	if !ok {
		return fmt.Errorf("%w: %s is nil", ErrSignature, name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = fn
	return nil
}

// Subroutine looks up a subroutine by name.
func (t *Table) Subroutine(name string) (Subroutine, error) {
	e, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	s, ok := e.(Subroutine)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a subroutine", ErrSignature, name)
	}
	return s, nil
}

// Function looks up a function by name.
func (t *Table) Function(name string) (Function, error) {
	e, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	f, ok := e.(Function)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a function", ErrSignature, name)
	}
	return f, nil
}

// Names lists the registered entry points in order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) lookup(name string) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntryPoint, name)
	}
	return e, nil
}

// Bind registers ep's two entry points under prefix+"subroutine" and
// prefix+"function".
func (t *Table) Bind(prefix string, ep EntryPoints) error {
	if err := t.Register(prefix+"subroutine", Subroutine(ep.Subroutine)); err != nil {
		return err
	}
	return t.Register(prefix+"function", Function(ep.Function))
}
