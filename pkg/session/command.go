package session

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/signal"
)

// Command is one facade operation. The set of implementations is closed:
// Open, Close, CloseAll, Write, Read and Set.
type Command interface {
	isCommand()
	String() string
}

// Open opens and claims a port.
type Open struct{ Port int }

// Close releases and closes a port.
type Close struct{ Port int }

// CloseAll closes every open port.
type CloseAll struct{}

// Write drives the eight data lines of Port to Value (0-255). With Output the
// resulting line states are returned, bit 0 first.
type Write struct {
	Port   int
	Value  int
	Output bool
}

// Read samples the given lines of Port.
type Read struct {
	Port  int
	Lines []Line
}

// Set drives an arbitrary batch of lines, possibly across registers.
type Set struct {
	Port   int
	Lines  []Line
	Output bool
}

func (Open) isCommand()     {}
func (Close) isCommand()    {}
func (CloseAll) isCommand() {}
func (Write) isCommand()    {}
func (Read) isCommand()     {}
func (Set) isCommand()      {}

func (c Open) String() string   { return fmt.Sprintf("open %d", c.Port) }
func (c Close) String() string  { return fmt.Sprintf("close %d", c.Port) }
func (CloseAll) String() string { return "closeall" }

func (c Write) String() string {
	s := fmt.Sprintf("write %d %d", c.Port, c.Value)
	if c.Output {
		s += " out"
	}
	return s
}

func (c Read) String() string {
	return fmt.Sprintf("read %d %s", c.Port, joinLines(c.Lines, false))
}

func (c Set) String() string {
	s := fmt.Sprintf("set %d %s", c.Port, joinLines(c.Lines, true))
	if c.Output {
		s += " out"
	}
	return s
}

// Line is a resolved line reference: the bit it addresses and, when the bit
// is wired to a connector pin, the matching signal.
type Line struct {
	Label  string
	Spec   parport.BitSpec
	Signal *signal.Signal
}

// SignalLine builds a Line from a named signal.
func SignalLine(s signal.Signal, value bool) Line {
	return Line{Label: s.Name, Spec: s.Spec(value), Signal: &s}
}

// BitLine builds a Line addressing reg:bit directly.
func BitLine(reg parport.Register, bit uint8, value bool) (Line, error) {
	if reg == parport.RegECR {
		return Line{}, parport.ErrECRUnsupported
	}
	spec := parport.BitSpec{Bit: bit, Register: uint8(reg)}
	if value {
		spec.Value = 1
	}
	if err := spec.Validate(); err != nil {
		return Line{}, err
	}
	line := Line{Label: fmt.Sprintf("%s:%d", reg, bit), Spec: spec}
	if s, ok := signal.ByBit(reg, bit); ok {
		line.Signal = &s
	}
	return line, nil
}

// Specs extracts the bit specs of lines in order.
func Specs(lines []Line) []parport.BitSpec {
	specs := make([]parport.BitSpec, len(lines))
	for i, l := range lines {
		specs[i] = l.Spec
	}
	return specs
}

func dataLines(value int) []Line {
	lines := make([]Line, 8)
	for i := range lines {
		s, _ := signal.ByBit(parport.RegData, uint8(i))
		lines[i] = SignalLine(s, parport.Bit(byte(value), uint8(i)))
	}
	return lines
}

func joinLines(lines []Line, withValues bool) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strings.ToLower(l.Label)
		if withValues {
			parts[i] += fmt.Sprintf("=%d", l.Spec.Value)
		}
	}
	return strings.Join(parts, " ")
}
