// Package signal names the lines of a standard DB-25 parallel port connector
// and maps them onto register bits.
package signal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
)

// ErrUnknownSignal is returned when a name or pin has no matching line.
var ErrUnknownSignal = errors.New("signal: unknown signal")

// Direction tells whether software drives or samples a line.
type Direction int

const (
	Output Direction = iota
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// Signal is one connector line.
type Signal struct {
	Name      string
	Pin       int // DB-25 pin number
	Register  parport.Register
	Bit       uint8
	Direction Direction
	// Inverted lines read and drive the opposite level at the connector
	// from the register bit.
	Inverted bool
}

// Spec returns the BitSpec for driving the raw register bit to value.
func (s Signal) Spec(value bool) parport.BitSpec {
	spec := parport.BitSpec{Bit: s.Bit, Register: uint8(s.Register)}
	if value {
		spec.Value = 1
	}
	return spec
}

// Level converts a raw register bit to the connector level.
func (s Signal) Level(raw bool) bool {
	return raw != s.Inverted
}

// Raw converts a connector level to the register bit that produces it.
func (s Signal) Raw(level bool) bool {
	return level != s.Inverted
}

func (s Signal) String() string {
	return fmt.Sprintf("%s (pin %d, %s:%d)", s.Name, s.Pin, s.Register, s.Bit)
}

var table = []Signal{
	{Name: "STROBE", Pin: 1, Register: parport.RegControl, Bit: 0, Direction: Output, Inverted: true},
	{Name: "D0", Pin: 2, Register: parport.RegData, Bit: 0, Direction: Output},
	{Name: "D1", Pin: 3, Register: parport.RegData, Bit: 1, Direction: Output},
	{Name: "D2", Pin: 4, Register: parport.RegData, Bit: 2, Direction: Output},
	{Name: "D3", Pin: 5, Register: parport.RegData, Bit: 3, Direction: Output},
	{Name: "D4", Pin: 6, Register: parport.RegData, Bit: 4, Direction: Output},
	{Name: "D5", Pin: 7, Register: parport.RegData, Bit: 5, Direction: Output},
	{Name: "D6", Pin: 8, Register: parport.RegData, Bit: 6, Direction: Output},
	{Name: "D7", Pin: 9, Register: parport.RegData, Bit: 7, Direction: Output},
	{Name: "ACK", Pin: 10, Register: parport.RegStatus, Bit: 6, Direction: Input},
	{Name: "BUSY", Pin: 11, Register: parport.RegStatus, Bit: 7, Direction: Input, Inverted: true},
	{Name: "PAPEROUT", Pin: 12, Register: parport.RegStatus, Bit: 5, Direction: Input},
	{Name: "SELECT", Pin: 13, Register: parport.RegStatus, Bit: 4, Direction: Input},
	{Name: "AUTOFD", Pin: 14, Register: parport.RegControl, Bit: 1, Direction: Output, Inverted: true},
	{Name: "ERROR", Pin: 15, Register: parport.RegStatus, Bit: 3, Direction: Input},
	{Name: "INIT", Pin: 16, Register: parport.RegControl, Bit: 2, Direction: Output},
	{Name: "SELECTIN", Pin: 17, Register: parport.RegControl, Bit: 3, Direction: Output, Inverted: true},
}

var aliases = map[string]string{
	"NSTROBE":   "STROBE",
	"NACK":      "ACK",
	"PE":        "PAPEROUT",
	"SLCT":      "SELECT",
	"NAUTOFD":   "AUTOFD",
	"NERROR":    "ERROR",
	"FAULT":     "ERROR",
	"NINIT":     "INIT",
	"SELECT_IN": "SELECTIN",
	"NSELECTIN": "SELECTIN",
}

// All returns every signal ordered by connector pin.
func All() []Signal {
	out := append([]Signal(nil), table...)
	sort.Slice(out, func(i, j int) bool { return out[i].Pin < out[j].Pin })
	return out
}

// Lookup resolves a signal by name, case-insensitively. Common aliases
// (nStrobe, PE, SLCT, ...) are accepted.
func Lookup(name string) (Signal, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	for _, s := range table {
		if s.Name == key {
			return s, nil
		}
	}
	return Signal{}, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// ByPin resolves a signal by DB-25 pin number. Pins 18-25 are ground.
func ByPin(pin int) (Signal, error) {
	for _, s := range table {
		if s.Pin == pin {
			return s, nil
		}
	}
	return Signal{}, fmt.Errorf("%w: pin %d", ErrUnknownSignal, pin)
}

// ByBit resolves the signal wired to a register bit, if any.
func ByBit(reg parport.Register, bit uint8) (Signal, bool) {
	for _, s := range table {
		if s.Register == reg && s.Bit == bit {
			return s, true
		}
	}
	return Signal{}, false
}
