// Package capture reads logic-analyzer CSV exports of SPI bus traffic.
// Two export schemas are recognized: the standard SPI analyzer's
// command-line stream (Time, Packet ID, MOSI[, MISO]) and the quad SPI
// analyzer's wide value stream (Time, Value). Timestamps are converted
// from seconds to whole nanoseconds; rows with unparsable fields are
// skipped.
package capture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownSchema is returned when the CSV header matches neither
// recognized export shape.
var ErrUnknownSchema = errors.New("capture: unrecognized CSV schema")

// Format identifies which export shape a capture was parsed from.
type Format int

const (
	FormatUnknown Format = iota
	// FormatCommandLine is the standard SPI analyzer export: one byte of
	// the command line per row.
	FormatCommandLine
	// FormatQuadValue is the quad SPI analyzer export: one wide value per
	// row, where addresses appear as single values above one byte.
	FormatQuadValue
)

func (f Format) String() string {
	switch f {
	case FormatCommandLine:
		return "command-line"
	case FormatQuadValue:
		return "quad-value"
	default:
		return "unknown"
	}
}

// Capture is a parsed bus capture. Times and Values are parallel and
// monotonically non-decreasing in time; PacketIDs is populated only for
// the command-line format.
type Capture struct {
	Format    Format   `json:"format"`
	Times     []int64  `json:"times"` // nanoseconds
	PacketIDs []int64  `json:"packet_ids,omitempty"`
	Values    []uint32 `json:"values"`
}

// Len returns the number of parsed samples.
func (c *Capture) Len() int {
	return len(c.Values)
}

var (
	headerCommandLine     = []string{"Time [s]", "Packet ID", "MOSI", "MISO"}
	headerCommandLineMOSI = []string{"Time [s]", "Packet ID", "MOSI"}
	headerQuadValue       = []string{"Time [s]", "Value"}
)

// Read parses the capture file at path.
func Read(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV capture export, detecting the schema from the header
// row.
func Parse(r io.Reader) (*Capture, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row-level recovery is ours, not the reader's

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("capture: read header: %w", err)
	}

	switch {
	case slices.Equal(header, headerCommandLine) || slices.Equal(header, headerCommandLineMOSI):
		return parseCommandLine(cr)
	case slices.Equal(header, headerQuadValue):
		return parseQuadValue(cr)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSchema, header)
	}
}

func parseCommandLine(cr *csv.Reader) (*Capture, error) {
	c := &Capture{Format: FormatCommandLine}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("capture: read row: %w", err)
		}
		if len(row) < 3 {
			continue
		}
		t, err := parseTime(row[0])
		if err != nil {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			continue
		}
		v, err := parseHex(row[2])
		if err != nil {
			continue
		}
		c.Times = append(c.Times, t)
		c.PacketIDs = append(c.PacketIDs, id)
		c.Values = append(c.Values, v)
	}
}

func parseQuadValue(cr *csv.Reader) (*Capture, error) {
	c := &Capture{Format: FormatQuadValue}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("capture: read row: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		t, err := parseTime(row[0])
		if err != nil {
			continue
		}
		v, err := parseHex(row[1])
		if err != nil {
			continue
		}
		c.Times = append(c.Times, t)
		c.Values = append(c.Values, v)
	}
}

// parseTime converts a seconds timestamp to whole nanoseconds.
func parseTime(s string) (int64, error) {
	sec, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int64(sec * 1e9), nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
