// Package trace reconstructs flash read accesses from a parsed bus capture
// and post-processes them into human-actionable views. Two decoder variants
// cover the two capture formats; both emit the same access record shape.
package trace

import "slices"

// Tags attached to the Info list of an access.
const (
	// TagQSPI marks accesses issued with a quad-I/O read opcode.
	TagQSPI = "QSPI"
	// TagCCP marks accesses heuristically attributed to the cryptographic
	// coprocessor (reads of exactly CCPReadSize bytes).
	TagCCP = "CCP"
	// TagCollapsed marks records that absorbed consecutive same-region
	// accesses.
	TagCollapsed = "[c]"
	// TagFuzzy marks collapsed records that combined accesses of
	// inconsistent duplicate multiplicity.
	TagFuzzy = "~"
)

// CCPReadSize is the read size, in bytes, attributed to the cryptographic
// coprocessor.
const CCPReadSize = 0x40

// ReadAccess is one reconstructed flash read. Records are created by a
// decoder and mutated in place by the post-processing stages; merging
// stages keep the earliest surviving record.
type ReadAccess struct {
	InstrIndex int   `json:"instr_index"`
	StartTime  int64 `json:"start_time"` // ns
	EndTime    int64 `json:"end_time"`   // ns
	Duration   int64 `json:"duration"`   // ns
	Latency    int64 `json:"latency"`    // ns since the previous access ended

	// LastEndTime is the quad decoder's deferred-finalize scratch: the end
	// time the access's latency will be measured against once the next
	// read marks this one's end.
	LastEndTime int64 `json:"last_end_time,omitempty"`

	Address uint64 `json:"address"`
	Size    int64  `json:"size"` // bytes
	// Type is the resolved firmware region, or "" for an unknown area.
	Type string `json:"type,omitempty"`

	Info []string `json:"info"`
	// DuplicateCount is set by duplicate aggregation; 0 means the stage
	// did not run.
	DuplicateCount int `json:"duplicate_count,omitempty"`
}

// HasTag reports whether the access carries the given Info tag.
func (a *ReadAccess) HasTag(tag string) bool {
	return slices.Contains(a.Info, tag)
}

// AccessList is a collection of accesses ordered by start time.
type AccessList []*ReadAccess

// AnnotateCCP tags accesses whose size matches the coprocessor's fixed
// read granule. Heuristic: nothing on the bus identifies the master.
func AnnotateCCP(accesses AccessList) {
	for _, a := range accesses {
		if a.Size == CCPReadSize {
			a.Info = append(a.Info, TagCCP)
		}
	}
}
