package launch

// Nest is a loop nest collapsed into one linear iteration space, outermost
// loop first. The innermost loop varies fastest, which keeps neighbouring
// threads on neighbouring elements of a column-major array when the nest is
// written as (..., j, i).
type Nest []Loop

// Len is the product of the trip counts.
func (n Nest) Len() int {
	if len(n) == 0 {
		return 0
	}
	total := 1
	for _, l := range n {
		total *= l.Len()
	}
	return total
}

// Indices recovers the loop indices of collapsed iteration idx into out,
// which must have len(n) entries. It returns false when idx is outside the
// iteration space.
func (n Nest) Indices(idx int, out []int) bool {
	total := n.Len()
	if idx < 0 || idx >= total {
		return false
	}
	rem, denom := idx, total
	for k, l := range n {
		denom /= l.Len()
		q := rem / denom
		rem -= q * denom
		out[k] = l.Index(q)
	}
	return true
}

// Grid sizes a 1-D launch over the whole nest.
func (n Nest) Grid(block int) (Config, error) { return Grid1D(n.Len(), block) }
