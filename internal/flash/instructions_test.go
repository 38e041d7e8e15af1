package flash

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name        string
		opcode      byte
		wantName    string
		wantFrame   int
		wantExpects bool
	}{
		{
			name:        "read data",
			opcode:      0x03,
			wantName:    "Read Data",
			wantFrame:   4,
			wantExpects: true,
		},
		{
			name:        "fast read has a dummy byte",
			opcode:      0x0B,
			wantName:    "Fast Read",
			wantFrame:   5,
			wantExpects: true,
		},
		{
			name:        "write enable is a bare opcode",
			opcode:      0x06,
			wantName:    "Write Enable",
			wantFrame:   1,
			wantExpects: false,
		},
		{
			name:        "page program carries address and data out",
			opcode:      0x02,
			wantName:    "Page Program",
			wantFrame:   6,
			wantExpects: false,
		},
		{
			name:        "quad io read",
			opcode:      0xEB,
			wantName:    "Fast Read Quad I/O",
			wantFrame:   4,
			wantExpects: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr, ok := Lookup(tt.opcode)
			if !ok {
				t.Fatalf("Lookup(%#x) not found", tt.opcode)
			}
			if instr.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", instr.Name, tt.wantName)
			}
			if instr.FrameLen != tt.wantFrame {
				t.Errorf("FrameLen = %d, want %d", instr.FrameLen, tt.wantFrame)
			}
			if instr.ExpectsData != tt.wantExpects {
				t.Errorf("ExpectsData = %v, want %v", instr.ExpectsData, tt.wantExpects)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup(0xFF); ok {
		t.Error("Lookup(0xFF) found, want unknown")
	}
	// 0xEC is accepted as a quad read start but is not a catalog entry
	if _, ok := Lookup(0xEC); ok {
		t.Error("Lookup(0xEC) found, want unknown")
	}
	if !IsQuadRead(0xEC) {
		t.Error("IsQuadRead(0xEC) = false, want true")
	}
}

func TestIsInstruction(t *testing.T) {
	if !IsInstruction(0x03) {
		t.Error("IsInstruction(0x03) = false, want true")
	}
	if IsInstruction(0xFF) {
		t.Error("IsInstruction(0xFF) = true, want false")
	}
	// wide values are addresses on quad captures, never opcodes
	if IsInstruction(0x103) {
		t.Error("IsInstruction(0x103) = true, want false")
	}
}

func TestIsQuadIO(t *testing.T) {
	for _, op := range []uint32{0xEB, 0xE7, 0xE3} {
		if !IsQuadIO(op) {
			t.Errorf("IsQuadIO(%#x) = false, want true", op)
		}
	}
	// plain and 4-byte reads are part of the read family but not QSPI-tagged
	for _, op := range []uint32{0x03, 0x0B, 0xEC} {
		if IsQuadIO(op) {
			t.Errorf("IsQuadIO(%#x) = true, want false", op)
		}
	}
}
