package trace

// Collapser merges runs of consecutive accesses that resolve to the same
// firmware region. Consecutive reads sometimes fetch a few bytes too much,
// so an access starting at or before the previous one's end ("overread")
// still counts as contiguous.
type Collapser struct{}

// Apply walks accesses in start-time order and merges each access into the
// previous surviving record when both have the same type and the addresses
// are contiguous or overlapping. A merge extends the record's end time,
// sums durations and sizes, and keeps the earliest start and latency.
// Merging accesses of differing duplicate multiplicity additionally tags
// the record as fuzzy.
func (Collapser) Apply(accesses AccessList) AccessList {
	out := make(AccessList, 0, len(accesses))

	var last *ReadAccess // the previous access as it was iterated, pre-merge
	for _, acc := range accesses {
		mergeable := last != nil &&
			acc.Type == last.Type &&
			acc.Address <= last.Address+uint64(last.Size)

		if mergeable {
			rec := out[len(out)-1]
			rec.EndTime = acc.EndTime
			rec.Duration += acc.Duration
			rec.Size += acc.Size

			if !rec.HasTag(TagCollapsed) {
				rec.Info = append(rec.Info, TagCollapsed)
			}
			if acc.DuplicateCount != last.DuplicateCount && !rec.HasTag(TagFuzzy) {
				rec.Info = append(rec.Info, TagFuzzy)
			}
		} else {
			out = append(out, acc)
		}

		last = acc
	}

	return out
}
