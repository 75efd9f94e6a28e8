package launch

// LoopLen returns the trip count of the counted loop first, first+step, ...
// up to and including last. It is zero for an empty range or a zero step.
func LoopLen(first, last, step int) int {
	if step == 0 {
		return 0
	}
	n := (last - first + step) / step
	if n < 0 {
		return 0
	}
	return n
}

// Cond is the per-thread guard: it reports whether index i still lies inside
// a loop that ends at last when walked with step.
func Cond(i, last, step int) bool {
	switch {
	case step > 0:
		return i <= last
	case step < 0:
		return i >= last
	}
	return false
}

// Loop is a counted loop mapped onto the X dimension of a launch.
type Loop struct {
	First, Last, Step int
}

// Len is the trip count.
func (l Loop) Len() int { return LoopLen(l.First, l.Last, l.Step) }

// Index maps a global thread id to the loop index it owns.
func (l Loop) Index(g int) int { return l.First + l.Step*g }

// Cond reports whether i is inside the loop.
func (l Loop) Cond(i int) bool { return Cond(i, l.Last, l.Step) }

// Grid sizes a 1-D launch for the loop. The block count comes from the
// trip count, not from Last, so strided and descending loops are neither
// over- nor under-launched.
func (l Loop) Grid(block int) (Config, error) { return Grid1D(l.Len(), block) }
