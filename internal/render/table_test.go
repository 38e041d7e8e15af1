package render

import (
	"strings"
	"testing"

	"spitrace/internal/trace"
)

func TestAccessTable(t *testing.T) {
	accesses := trace.AccessList{
		{
			InstrIndex: 0,
			StartTime:  100,
			EndTime:    200,
			Duration:   100,
			Latency:    0,
			Address:    0x1000,
			Size:       0x40,
			Type:       "PSP_FW_BOOT_LOADER",
			Info:       []string{"CCP", "x8"},
		},
		{
			InstrIndex: 1,
			StartTime:  200_000,
			EndTime:    200_100,
			Duration:   100,
			Latency:    199_800, // 199µs, above the block threshold
			Address:    0x2000,
			Size:       0x10,
			Type:       "",
			Info:       []string{},
		},
	}

	out := AccessTable(accesses, false)

	for _, want := range []string{
		"No.", "Address", "Size", "Type", "Info",
		"0x001000", "0x40", "PSP_FW_BOOT_LOADER", "CCP x8",
		"0x002000", UnknownArea,
		"~ 199 µs delay ~",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Start [ns]") {
		t.Error("non-verbose output contains timing columns")
	}

	verbose := AccessTable(accesses, true)
	for _, want := range []string{"Start [ns]", "End [ns]", "Duration [ns]", "Latency [ns]", "199800"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("verbose output missing %q", want)
		}
	}
}

func TestOverviewTable(t *testing.T) {
	rows := []*trace.OverviewRow{
		{
			Access: &trace.ReadAccess{
				InstrIndex: 4,
				StartTime:  500,
				Latency:    0,
				Address:    0x1000,
				Size:       0x10,
				Type:       "BOOT",
				Info:       []string{},
			},
			LowestAccess:  0x1000,
			HighestAccess: 0x1030,
		},
	}

	out := OverviewTable(rows, false)
	for _, want := range []string{
		"Lowest access", "Range",
		"0x001000", "0x000030", "BOOT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Highest access") {
		t.Error("non-verbose overview contains verbose columns")
	}

	verbose := OverviewTable(rows, true)
	if !strings.Contains(verbose, "0x001030") {
		t.Error("verbose overview missing highest access")
	}
}

func TestEmptyTables(t *testing.T) {
	if out := AccessTable(nil, false); !strings.Contains(out, "No.") {
		t.Error("empty access table missing header")
	}
	if out := OverviewTable(nil, true); !strings.Contains(out, "Lowest access") {
		t.Error("empty overview table missing header")
	}
}
