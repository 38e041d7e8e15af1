package trace

import (
	"github.com/charmbracelet/log"

	"spitrace/internal/capture"
	"spitrace/internal/flash"
)

// CommandLineDecoder scans a single-line command stream. Without a chip
// select signal, instruction boundaries are inferred: the bytes following
// an instruction frame are counted as returned data until the next byte
// that matches a known opcode.
type CommandLineDecoder struct {
	resolver Resolver
	logger   *log.Logger

	// InstrCounts counts recognized non-read instructions by name.
	InstrCounts map[string]int
	// UnknownOpcodes counts bytes that match no catalog entry.
	UnknownOpcodes map[byte]int
}

// NewCommandLineDecoder creates a decoder for the standard SPI analyzer
// export.
func NewCommandLineDecoder(resolver Resolver, logger *log.Logger) *CommandLineDecoder {
	return &CommandLineDecoder{
		resolver: resolver,
		logger:   logger,
	}
}

// Decode scans the capture in a single pass and returns one access per
// decoded read instruction. It never fails: unknown opcodes decode as
// 1-byte instructions without data, and scans that run past the end of
// the capture are capped at the available length.
func (d *CommandLineDecoder) Decode(c *capture.Capture) AccessList {
	accesses := make(AccessList, 0)

	d.InstrCounts = make(map[string]int, len(flash.Names()))
	for _, name := range flash.Names() {
		d.InstrCounts[name] = 0
	}
	d.UnknownOpcodes = make(map[byte]int)

	var lastEndTime int64
	var endTime int64
	if c.Len() > 0 {
		endTime = c.Times[0]
	}

	index := 0
	instrIndex := 0
	for index < c.Len() {
		v := c.Values[index]
		op := byte(v)
		instr, known := flash.Lookup(op)
		if v > 0xFF {
			known = false
		}

		switch {
		case known && (op == flash.OpReadData || op == flash.OpFastRead):
			dataBytes := countDataBytes(c.Values, index+instr.FrameLen)

			startTime := c.Times[index]
			endIdx := index + instr.FrameLen + dataBytes
			if endIdx >= c.Len() {
				endIdx = c.Len() - 1
			}
			endTime = c.Times[endIdx]

			address := byteAddress(c.Values, index+1)
			typ, _ := d.resolver.Resolve(address)

			accesses = append(accesses, &ReadAccess{
				InstrIndex: instrIndex,
				StartTime:  startTime,
				EndTime:    endTime,
				Duration:   endTime - startTime,
				Latency:    startTime - lastEndTime,
				Address:    address,
				Size:       int64(dataBytes),
				Type:       typ,
				Info:       []string{},
			})

			lastEndTime = endTime
			index += instr.FrameLen + dataBytes
			instrIndex++

		case known:
			d.InstrCounts[instr.Name]++

			dataBytes := 0
			if instr.ExpectsData {
				dataBytes = countDataBytes(c.Values, index+instr.FrameLen)
			}

			lastEndTime = endTime
			index += instr.FrameLen + dataBytes
			instrIndex++

		default:
			// assume a 1-byte instruction returning no data
			d.UnknownOpcodes[op]++
			index++
			instrIndex++
		}
	}

	if d.logger != nil {
		for name, n := range d.InstrCounts {
			if n > 0 {
				d.logger.Debug("Skipped instruction", "name", name, "count", n)
			}
		}
		for op, n := range d.UnknownOpcodes {
			d.logger.Debug("Unknown instruction byte", "opcode", op, "count", n)
		}
	}

	return accesses
}

// countDataBytes counts values from base until the next byte matching a
// known opcode. The first value is always taken as data, so the count is
// at least 1; when the scan runs off the end of the capture it is capped
// at the remaining length. This stands in for the missing chip select.
func countDataBytes(values []uint32, base int) int {
	n := 1
	for base+n < len(values) && !flash.IsInstruction(values[base+n]) {
		n++
	}
	return n
}

// byteAddress assembles the 3-byte big-endian address starting at index.
// A truncated capture yields a shorter address rather than a failure.
func byteAddress(values []uint32, index int) uint64 {
	var addr uint64
	for i := index; i < index+3 && i < len(values); i++ {
		addr = addr<<8 | uint64(byte(values[i]))
	}
	return addr
}
