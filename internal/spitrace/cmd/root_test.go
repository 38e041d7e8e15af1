package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"spitrace/internal/cache"
)

func writeTestInputs(t *testing.T) (csvPath, layoutPath string) {
	t.Helper()
	dir := t.TempDir()

	csvPath = filepath.Join(dir, "capture.csv")
	csv := strings.Join([]string{
		"Time [s],Packet ID,MOSI,MISO",
		"0.000001,0,0x03,0xFF",
		"0.000002,0,0x00,0xFF",
		"0.000003,0,0x02,0xFF",
		"0.000004,0,0x00,0xFF",
		"0.000005,0,0xAA,0xFF",
		"0.000006,0,0xAA,0xFF",
		"0.000007,0,0x06,0xFF",
		"",
	}, "\n")
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	layoutPath = filepath.Join(dir, "layout.json")
	layout := `{
		"directories": [
			{"address": "0x100", "size": "0x40", "magic": "$PSP",
			 "entries": [{"address": "0x200", "size": "0x100", "type": 1}]}
		]
	}`
	if err := os.WriteFile(layoutPath, []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	return csvPath, layoutPath
}

func TestLoadAccessesDecodesAndCaches(t *testing.T) {
	csvPath, layoutPath := writeTestInputs(t)

	first, err := loadAccesses(csvPath, layoutPath)
	if err != nil {
		t.Fatalf("loadAccesses: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("decoded %d accesses, want 1", len(first))
	}
	acc := first[0]
	if acc.Address != 0x000200 || acc.Size != 2 {
		t.Errorf("access = addr %#x size %d, want 0x000200/2", acc.Address, acc.Size)
	}
	if acc.Type != "PSP_FW_BOOT_LOADER" {
		t.Errorf("Type = %q, want PSP_FW_BOOT_LOADER", acc.Type)
	}

	if _, err := os.Stat(cache.Path(csvPath)); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	// second load must come from the snapshot; a bogus layout path proves
	// the decoder did not run again
	second, err := loadAccesses(csvPath, filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("loadAccesses from snapshot: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshot result differs from decode (-first +second):\n%s", diff)
	}
}

func TestLoadAccessesRedecodesChangedCapture(t *testing.T) {
	csvPath, layoutPath := writeTestInputs(t)

	if _, err := loadAccesses(csvPath, layoutPath); err != nil {
		t.Fatal(err)
	}

	// appending rows changes the digest, so the snapshot must be ignored
	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("0.000008,0,0xAA,0xFF\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := loadAccesses(csvPath, layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("decoded %d accesses, want 1", len(got))
	}
	// the extra trailing byte now belongs to the Write Enable run, not the
	// read, so the read size is unchanged
	if got[0].Size != 2 {
		t.Errorf("Size = %d, want 2", got[0].Size)
	}
}

func TestLoadAccessesMissingCapture(t *testing.T) {
	if _, err := loadAccesses(filepath.Join(t.TempDir(), "nope.csv"), "layout.json"); err == nil {
		t.Error("loadAccesses succeeded on missing capture")
	}
}
