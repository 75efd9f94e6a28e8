package interop

// Accumulator is a reference implementation of EntryPoints: both entry
// points add a to b, and Function also returns the new b.
type Accumulator struct{}

func (Accumulator) Subroutine(a int32, b *int32) { *b += a }

func (Accumulator) Function(a int32, b *int32) int32 {
	*b += a
	return *b
}
