// Package layout describes the firmware layout of the flash image and
// classifies bus addresses into firmware regions. The layout is supplied by
// a firmware-image parser as a JSON export of directories and their entries.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// UnboundedSize marks directory entries without a real size. Such entries
// are excluded from address classification.
const UnboundedSize = 0xFFFFFFFF

// The firmware entry table sits at a fixed flash offset and is not listed
// in any directory.
const (
	EntryTableAddress = 0x20000
	EntryTableSize    = 0x40
	EntryTableName    = "Firmware Entry Table"
)

// DirectoryPrefix labels directory header regions, combined with the
// directory's magic.
const DirectoryPrefix = "Directory: "

// HexInt is an integer that unmarshals from either a JSON number or a hex
// string ("0x20000"), since firmware layout exports commonly use hex.
type HexInt uint64

func (h *HexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(str, "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("layout: bad hex value %q: %w", str, err)
		}
		*h = HexInt(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*h = HexInt(v)
	return nil
}

// Entry is one directory entry: a firmware blob at a flash address.
type Entry struct {
	Address HexInt `json:"address"`
	Size    HexInt `json:"size"`
	Type    uint32 `json:"type"`
	// TypeName overrides the symbolic name derived from Type.
	TypeName string `json:"type_name,omitempty"`
}

// Directory is a firmware directory header and its entries.
type Directory struct {
	Address HexInt  `json:"address"`
	Size    HexInt  `json:"size"`
	Magic   string  `json:"magic"`
	Entries []Entry `json:"entries"`
}

// Layout is the parsed firmware layout of one flash image.
type Layout struct {
	Directories []Directory `json:"directories"`
}

// Load reads a JSON firmware layout export.
func Load(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open firmware layout: %w", err)
	}
	defer f.Close()

	var l Layout
	if err := json.NewDecoder(f).Decode(&l); err != nil {
		return nil, fmt.Errorf("parse firmware layout %s: %w", path, err)
	}
	return &l, nil
}

// RangeMap builds the address classifier for this layout. Entry regions are
// registered before directory header regions (headers legitimately overlap
// their entries), followed by the fixed entry table region; registration
// order is lookup priority.
func (l *Layout) RangeMap() *RangeMap {
	m := new(RangeMap)
	for _, dir := range l.Directories {
		for _, e := range dir.Entries {
			if e.Size == UnboundedSize {
				continue
			}
			name := e.TypeName
			if name == "" {
				name = EntryTypeName(e.Type)
			}
			m.Add(uint64(e.Address), uint64(e.Size), name)
		}
	}
	for _, dir := range l.Directories {
		m.Add(uint64(dir.Address), uint64(dir.Size), DirectoryPrefix+dir.Magic)
	}
	m.Add(EntryTableAddress, EntryTableSize, EntryTableName)
	return m
}

// entryTypeNames maps well-known directory entry types to their names.
var entryTypeNames = map[uint32]string{
	0x00: "AMD_PUBLIC_KEY",
	0x01: "PSP_FW_BOOT_LOADER",
	0x02: "PSP_FW_TRUSTED_OS",
	0x03: "PSP_FW_RECOVERY_BOOT_LOADER",
	0x04: "PSP_NV_DATA",
	0x05: "BIOS_PUBLIC_KEY",
	0x06: "BIOS_RTM_FIRMWARE",
	0x07: "BIOS_RTM_SIGNATURE",
	0x08: "SMU_OFFCHIP_FW",
	0x09: "AMD_SEC_DBG_PUBLIC_KEY",
	0x0A: "OEM_PSP_FW_PUBLIC_KEY",
	0x0B: "SOFT_FUSE_CHAIN_01",
	0x0C: "PSP_BOOT_TIME_TRUSTLETS",
	0x0D: "PSP_BOOT_TIME_TRUSTLETS_KEY",
	0x10: "PSP_AGESA_RESUME_FW",
	0x12: "SMU_OFF_CHIP_FW_2",
	0x13: "DEBUG_UNLOCK",
	0x21: "WRAPPED_IKEK",
	0x22: "TOKEN_UNLOCK",
	0x24: "SEC_GASKET",
	0x25: "MP2_FW",
	0x28: "DRIVER_ENTRIES",
	0x30: "ABL0",
	0x31: "ABL1",
	0x32: "ABL2",
	0x33: "ABL3",
	0x34: "ABL4",
	0x35: "ABL5",
	0x36: "ABL6",
	0x37: "ABL7",
	0x3A: "PSP_WHITELIST",
}

// EntryTypeName returns the symbolic name for a directory entry type, or
// the type rendered as hex when it is not a well-known one.
func EntryTypeName(t uint32) string {
	if name, ok := entryTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", t)
}
