package trace

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"spitrace/internal/capture"
	"spitrace/internal/layout"
)

func quadCapture(times []int64, values []uint32) *capture.Capture {
	return &capture.Capture{
		Format: capture.FormatQuadValue,
		Times:  times,
		Values: values,
	}
}

func TestQuadDecodeFinalizesOnNextStart(t *testing.T) {
	m := new(layout.RangeMap)
	m.Add(0x1000, 0x100, "BOOT")
	m.Add(0x2000, 0x100, "OS")

	d := NewQuadDecoder(m)
	got := d.Decode(quadCapture(
		[]int64{100, 110, 120, 130, 140, 150, 160},
		[]uint32{0xEB, 0x1000, 0x55, 0x03, 0x2000, 0x66, 0x77},
	))

	want := AccessList{
		{
			InstrIndex:  0,
			StartTime:   100,
			EndTime:     120,
			Duration:    20,
			Latency:     100, // first access is measured against time zero
			LastEndTime: 0,
			Address:     0x1000,
			Size:        1,
			Type:        "BOOT",
			Info:        []string{TagQSPI},
		},
		{
			InstrIndex:  1,
			StartTime:   130,
			EndTime:     150,
			Duration:    20,
			Latency:     130, // deferred finalize keeps the opening-time reference
			LastEndTime: 0,
			Address:     0x2000,
			Size:        1,
			Type:        "OS",
			Info:        []string{},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("accesses mismatch (-want +got):\n%s", diff)
	}
}

func TestQuadDecodeSizeFromSampleSpan(t *testing.T) {
	// three data samples between the first read's framing and the next
	// read's opcode
	m := new(layout.RangeMap)
	d := NewQuadDecoder(m)
	got := d.Decode(quadCapture(
		[]int64{0, 10, 20, 30, 40, 50, 60, 70, 80},
		[]uint32{0x03, 0x1000, 0x11, 0x22, 0x33, 0x0B, 0x2000, 0x44, 0x55},
	))

	if len(got) != 2 {
		t.Fatalf("decoded %d accesses, want 2", len(got))
	}
	if got[0].Size != 3 {
		t.Errorf("first Size = %d, want 3", got[0].Size)
	}
	if got[0].EndTime != 40 {
		t.Errorf("first EndTime = %d, want the sample before the next opcode", got[0].EndTime)
	}
	if got[1].Size != 1 {
		t.Errorf("second Size = %d, want 1", got[1].Size)
	}
	// no region registered: both stay unresolved
	if got[0].Type != "" || got[1].Type != "" {
		t.Errorf("types = %q/%q, want unresolved", got[0].Type, got[1].Type)
	}
}

func TestQuadDecodeIgnoresNarrowFollowers(t *testing.T) {
	// a read opcode followed by a one-byte value is not an access start:
	// the follower must be wide enough to be an address
	d := NewQuadDecoder(new(layout.RangeMap))
	got := d.Decode(quadCapture(
		[]int64{0, 10, 20, 30},
		[]uint32{0x03, 0x55, 0xEB, 0xFF},
	))
	if len(got) != 0 {
		t.Fatalf("decoded %d accesses, want 0", len(got))
	}
}

func TestQuadDecodeQSPITagging(t *testing.T) {
	d := NewQuadDecoder(new(layout.RangeMap))
	got := d.Decode(quadCapture(
		[]int64{0, 10, 20, 30, 40},
		[]uint32{0xEC, 0x1000, 0x11, 0x03, 0x2000},
	))
	if len(got) != 2 {
		t.Fatalf("decoded %d accesses, want 2", len(got))
	}
	// 0xEC starts a read but is not one of the QSPI-tagged opcodes
	if got[0].HasTag(TagQSPI) || got[1].HasTag(TagQSPI) {
		t.Error("unexpected QSPI tag on non-quad-IO opcodes")
	}
}

func TestQuadDecodeDegenerateCaptures(t *testing.T) {
	d := NewQuadDecoder(new(layout.RangeMap))

	if got := d.Decode(quadCapture(nil, nil)); len(got) != 0 {
		t.Errorf("empty capture decoded %d accesses", len(got))
	}
	if got := d.Decode(quadCapture([]int64{0}, []uint32{0x03})); len(got) != 0 {
		t.Errorf("single-sample capture decoded %d accesses", len(got))
	}
	// no read start anywhere
	if got := d.Decode(quadCapture([]int64{0, 10, 20}, []uint32{0x11, 0x22, 0x33})); len(got) != 0 {
		t.Errorf("readless capture decoded %d accesses", len(got))
	}
}
