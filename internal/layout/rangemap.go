package layout

// RangeMap resolves addresses to region types. Ranges are consulted in
// insertion order, so on overlap the earliest registration wins; this is
// what gives entry regions priority over the directory headers that
// enclose them.
type RangeMap struct {
	spans []span
}

type span struct {
	start, end uint64 // [start, end)
	typ        string
}

// Add registers [start, start+size) as typ. Later additions never shadow
// earlier overlapping ones.
func (m *RangeMap) Add(start, size uint64, typ string) {
	m.spans = append(m.spans, span{start: start, end: start + size, typ: typ})
}

// Resolve returns the type of the first registered range containing addr.
// The lower bound is inclusive, the upper bound exclusive.
func (m *RangeMap) Resolve(addr uint64) (string, bool) {
	for _, s := range m.spans {
		if addr >= s.start && addr < s.end {
			return s.typ, true
		}
	}
	return "", false
}

// Len returns the number of registered ranges.
func (m *RangeMap) Len() int {
	return len(m.spans)
}
