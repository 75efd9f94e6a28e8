package launch

// CoverageReport summarises how the threads of a launch map onto a loop.
type CoverageReport struct {
	Hit        int // distinct loop indices reached
	Masked     int // threads rejected by the guard
	Duplicates int // extra visits to an already reached index
	Stray      int // admitted indices that the loop does not visit
	Missing    int // loop indices no thread reached
}

// Ok reports full, disjoint coverage.
func (r CoverageReport) Ok() bool { return r.Duplicates == 0 && r.Stray == 0 && r.Missing == 0 }

// Coverage walks every thread of cfg, maps its global X id through l and
// compares the admitted indices with the loop's own iteration set.
func Coverage(l Loop, cfg Config) CoverageReport {
	want := make(map[int]bool, l.Len())
	for k := 0; k < l.Len(); k++ {
		want[l.Index(k)] = true
	}
	var r CoverageReport
	seen := make(map[int]int, len(want))
	for g := 0; g < cfg.Threads(); g++ {
		i := l.Index(g)
		if !l.Cond(i) {
			r.Masked++
			continue
		}
		seen[i]++
	}
	for i, n := range seen {
		if !want[i] {
			r.Stray++
			continue
		}
		r.Hit++
		r.Duplicates += n - 1
	}
	r.Missing = len(want) - r.Hit
	return r
}
