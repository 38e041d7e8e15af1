package trace

import "fmt"

// Defaults for duplicate aggregation. The multiplicity cap reflects the
// number of core-complex boot processors fetching the same firmware in
// lockstep; the window bounds how far back an address is still considered
// "recent".
const (
	DefaultRecentWindow = 200
	MaxDuplicateCount   = 8
)

// Aggregator merges near-simultaneous reads of the same address, issued by
// multiple concurrent bus masters, into one record carrying a multiplicity
// count. State is local to one Apply call, so an Aggregator is reusable
// across runs.
type Aggregator struct {
	Window int // recency window capacity
	Max    int // multiplicity cap before the window slot is retired
}

// NewAggregator returns an Aggregator with the default window and cap.
func NewAggregator() Aggregator {
	return Aggregator{Window: DefaultRecentWindow, Max: MaxDuplicateCount}
}

type windowSlot struct {
	address  uint64
	original *ReadAccess
}

// Apply walks accesses in start-time order. The first occurrence of an
// address becomes the original; later occurrences within the window bump
// its count and are dropped. Once an original reaches the cap its slot is
// retired, so a further occurrence starts a fresh original. Every survivor
// is tagged with its final multiplicity.
func (g Aggregator) Apply(accesses AccessList) AccessList {
	window := make([]windowSlot, 0, g.Window)
	out := make(AccessList, 0, len(accesses))

	for _, acc := range accesses {
		slot := -1
		for i, s := range window {
			if s.address == acc.Address {
				slot = i
				break
			}
		}

		if slot < 0 {
			acc.DuplicateCount = 1
			out = append(out, acc)

			if len(window) == g.Window {
				window = window[1:] // evict the oldest
			}
			window = append(window, windowSlot{acc.Address, acc})
			continue
		}

		original := window[slot].original
		if original.DuplicateCount < g.Max {
			original.DuplicateCount++
		} else {
			window = append(window[:slot], window[slot+1:]...)
		}
		// the duplicate itself is dropped from the working set
	}

	for _, acc := range out {
		acc.Info = append(acc.Info, fmt.Sprintf("x%d", acc.DuplicateCount))
	}

	return out
}
