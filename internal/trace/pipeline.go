package trace

// Options selects which post-processing stages run. When more than one is
// enabled they compose in a fixed order: duplicates are aggregated before
// same-region runs are collapsed, and timestamps are normalized last.
type Options struct {
	NoDuplicates        bool
	Collapse            bool
	NormalizeTimestamps bool
}

// PostProcess runs the enabled stages over the access list.
func PostProcess(accesses AccessList, opts Options) AccessList {
	if opts.NoDuplicates {
		accesses = NewAggregator().Apply(accesses)
	}
	if opts.Collapse {
		accesses = Collapser{}.Apply(accesses)
	}
	if opts.NormalizeTimestamps {
		accesses = NormalizeTimestamps(accesses)
	}
	return accesses
}
