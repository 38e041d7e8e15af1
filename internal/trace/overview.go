package trace

// TimeBlockLatencyThreshold is the inter-access latency, in microseconds,
// that is taken as a boot-phase boundary: above it, the overview forgets
// which regions it has already summarized.
const TimeBlockLatencyThreshold = 50

// OverviewRow summarizes every access to one (region, coprocessor) pair
// within a time block, tracking the address span touched.
type OverviewRow struct {
	// Access is the first access of the pair within the block; its index,
	// times and tags represent the whole row.
	Access        *ReadAccess
	LowestAccess  uint64
	HighestAccess uint64
}

type overviewKey struct {
	typ   string
	isCCP bool
}

// Overview reduces accesses, in start-time order, to one row per (region
// type, CCP flag) pair per time block. It is a rendering mode of its own
// and is not composed with the other stages.
func Overview(accesses AccessList) []*OverviewRow {
	rows := make([]*OverviewRow, 0)
	known := make(map[overviewKey]*OverviewRow)

	for _, acc := range accesses {
		if acc.Latency/1000 > TimeBlockLatencyThreshold {
			known = make(map[overviewKey]*OverviewRow)
		}

		key := overviewKey{typ: acc.Type, isCCP: acc.HasTag(TagCCP)}
		if row, ok := known[key]; ok {
			row.LowestAccess = min(row.LowestAccess, acc.Address)
			row.HighestAccess = max(row.HighestAccess, acc.Address+uint64(acc.Size))
			continue
		}

		row := &OverviewRow{
			Access:        acc,
			LowestAccess:  acc.Address,
			HighestAccess: acc.Address + uint64(acc.Size),
		}
		known[key] = row
		rows = append(rows, row)
	}

	return rows
}
