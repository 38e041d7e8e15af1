package trace

import (
	"fmt"

	"github.com/charmbracelet/log"

	"spitrace/internal/capture"
)

// Resolver classifies a flash address into a firmware region type.
type Resolver interface {
	Resolve(addr uint64) (string, bool)
}

// Decoder turns a parsed capture into read accesses. The two variants do
// not share a scan loop: the command-line decoder emits an access as soon
// as its data length is counted, while the quad decoder can only finalize
// an access once the next one starts.
type Decoder interface {
	Decode(c *capture.Capture) AccessList
}

// NewDecoder selects the decoder variant for the capture's format.
func NewDecoder(format capture.Format, resolver Resolver, logger *log.Logger) (Decoder, error) {
	switch format {
	case capture.FormatCommandLine:
		return NewCommandLineDecoder(resolver, logger), nil
	case capture.FormatQuadValue:
		return NewQuadDecoder(resolver), nil
	default:
		return nil, fmt.Errorf("trace: no decoder for capture format %v", format)
	}
}
