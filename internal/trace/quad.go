package trace

import (
	"spitrace/internal/capture"
	"spitrace/internal/flash"
)

// QuadDecoder scans the interleaved value stream produced by the quad SPI
// analyzer. A read starts where a read-family opcode is followed by a
// value wider than one byte (the address). This format carries no length
// field at all, so an access's size is only known once the next read
// starts: the decoder always lags one access behind and finalizes the
// previous record when it opens a new one.
type QuadDecoder struct {
	resolver Resolver
}

// NewQuadDecoder creates a decoder for the quad SPI analyzer export.
func NewQuadDecoder(resolver Resolver) *QuadDecoder {
	return &QuadDecoder{resolver: resolver}
}

// Decode scans the capture in a single pass. The first access's latency is
// measured against time zero; this asymmetry between the in-loop and
// post-loop finalize paths matches the reference captures and must not be
// "fixed" without one demonstrating otherwise.
func (d *QuadDecoder) Decode(c *capture.Capture) AccessList {
	accesses := make(AccessList, 0)

	var prev *ReadAccess
	var lastEndTime int64
	var prevEndTime int64
	lastIndex := 0

	index := 0
	instrIndex := 0
	for index < c.Len()-1 {
		v := c.Values[index]
		next := c.Values[index+1]

		if !flash.IsQuadRead(v) || next <= 0xFF {
			index++
			continue
		}

		address := uint64(next)
		startTime := c.Times[index]
		typ, _ := d.resolver.Resolve(address)

		if instrIndex > 0 {
			// the two framing samples (opcode + address) are not data
			prev.Size = int64(index - lastIndex - 2)
			prevEndTime = c.Times[index-1]
			prev.EndTime = prevEndTime
			prev.Duration = prevEndTime - prev.StartTime
			prev.Latency = prev.StartTime - prev.LastEndTime
		}

		info := []string{}
		if flash.IsQuadIO(v) {
			info = append(info, TagQSPI)
		}
		acc := &ReadAccess{
			InstrIndex:  instrIndex,
			StartTime:   startTime,
			LastEndTime: lastEndTime,
			Address:     address,
			Type:        typ,
			Info:        info,
		}
		accesses = append(accesses, acc)
		prev = acc

		if instrIndex > 0 {
			lastEndTime = prevEndTime
		} else {
			lastEndTime = 0
		}
		lastIndex = index
		index += 2 // opcode and address samples
		instrIndex++
	}

	// finalize the last open access against the end of the stream
	if prev != nil && index > 0 {
		prev.Size = int64(index - lastIndex - 2)
		end := c.Times[index-1]
		prev.EndTime = end
		prev.Duration = end - prev.StartTime
		prev.Latency = prev.StartTime - prev.LastEndTime
	}

	return accesses
}
