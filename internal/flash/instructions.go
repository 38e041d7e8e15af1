// Package flash describes the serial flash instruction set as seen on the
// command line of the bus. The catalog covers the Winbond W25Q128JV command
// set; frame lengths count the opcode plus address/dummy bytes and exclude
// any data returned on the (invisible) response line.
package flash

// Instruction is one entry of the opcode catalog.
type Instruction struct {
	Name        string
	FrameLen    int  // opcode + address/dummy bytes
	ExpectsData bool // followed by returned data of unknown length
}

// Read opcodes decoded into read accesses on a single-line capture.
const (
	OpReadData byte = 0x03
	OpFastRead byte = 0x0B
)

// Read-family opcodes recognized on a quad-I/O capture. 0xEC carries a
// 4-byte address and is accepted as a read start even though it is not in
// the catalog.
var QuadReadFamily = []uint32{0x03, 0x0B, 0xEB, 0xE7, 0xE3, 0xEC}

// Quad-I/O-specific read opcodes, tagged QSPI on decoded accesses.
var QuadIOOpcodes = []uint32{0xEB, 0xE7, 0xE3}

var catalog = map[byte]Instruction{
	0x06: {"Write Enable", 1, false},
	0x50: {"Volatile SR Write Enable", 1, false},
	0x04: {"Write Disable", 1, false},
	0xAB: {"Release Power-down / ID", 4, true},
	0x90: {"Manufacturer/Device ID", 4, true},
	0x9F: {"JEDEC ID", 1, true},
	0x4B: {"Manufacturer/Device ID", 5, true},
	0x03: {"Read Data", 4, true},
	0x0B: {"Fast Read", 5, true},
	0x02: {"Page Program", 6, false},
	0x20: {"Sector Erase (4KB)", 4, false},
	0x52: {"Block Erase (32KB)", 4, false},
	0xD8: {"Block Erase (64KB)", 4, false},
	0xC7: {"Chip Erase (0xC7)", 1, false},
	0x60: {"Chip Erase (0x60)", 1, false},
	0x05: {"Read Status Register-1 (0x05)", 1, true},
	0x01: {"Read Status Register-1 (0x01)", 1, true},
	0x35: {"Read Status Register-2 (0x35)", 1, true},
	0x31: {"Read Status Register-2 (0x31)", 1, true},
	0x15: {"Read Status Register-3 (0x15)", 1, true},
	0x11: {"Read Status Register-3 (0x11)", 1, true},
	0x5A: {"Read SFDP Register", 5, true},
	0x44: {"Erase Security Register", 4, false},
	0x42: {"Program Security Register", 6, false},
	0x48: {"Read Security Register", 5, true},
	0x7E: {"Global Block Lock", 1, false},
	0x98: {"Global Block Unlock", 1, false},
	0x3D: {"Read Block Lock", 4, true},
	0x36: {"Individual Block Lock", 4, false},
	0x39: {"Individual Block Unlock", 4, false},
	0x75: {"Erase / Program Suspend", 1, false},
	0x7A: {"Erase / Program Resume", 1, false},
	0xB9: {"Power-down", 1, false},
	0x66: {"Enable Reset", 1, false},
	0x99: {"Reset Device", 1, false},
	0xEB: {"Fast Read Quad I/O", 4, true},
	0xE7: {"Word Read Quad I/O", 4, true},
	0xE3: {"Octal Word Read Quad I/O", 4, true},
	0x94: {"Mftr./Device ID Quad I/O", 4, true},
}

// Lookup returns the catalog entry for an opcode byte.
func Lookup(op byte) (Instruction, bool) {
	instr, ok := catalog[op]
	return instr, ok
}

// IsInstruction reports whether a raw bus value is a known opcode. Wide
// values (above one byte) are never opcodes; on quad captures they are
// addresses.
func IsInstruction(v uint32) bool {
	if v > 0xFF {
		return false
	}
	_, ok := catalog[byte(v)]
	return ok
}

// Names returns all instruction names in the catalog. Aliased opcodes
// (e.g. the two Manufacturer/Device ID commands) yield one name each.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, instr := range catalog {
		names = append(names, instr.Name)
	}
	return names
}

// IsQuadRead reports whether a value starts a read on a quad-I/O capture.
func IsQuadRead(v uint32) bool {
	for _, op := range QuadReadFamily {
		if v == op {
			return true
		}
	}
	return false
}

// IsQuadIO reports whether a read opcode is one of the quad-I/O variants.
func IsQuadIO(v uint32) bool {
	for _, op := range QuadIOOpcodes {
		if v == op {
			return true
		}
	}
	return false
}
