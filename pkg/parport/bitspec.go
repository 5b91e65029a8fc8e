package parport

import "fmt"

// BitSpec addresses one line of the port: a bit of the data, status or
// control register. Value is only consulted when the batch is written.
type BitSpec struct {
	Bit      uint8
	Register uint8 // offset: 0 data, 1 status, 2 control
	Value    uint8
}

// Validate rejects specs outside bit 0-7, register 0-2, value 0-1.
func (s BitSpec) Validate() error {
	if s.Bit > 7 || s.Register > 2 || s.Value > 1 {
		return fmt.Errorf("%w (got bit=%d register=%d value=%d)", ErrBadBitSpec, s.Bit, s.Register, s.Value)
	}
	return nil
}

func (s BitSpec) String() string {
	reg, err := RegisterAt(s.Register)
	if err != nil {
		return fmt.Sprintf("reg%d:%d=%d", s.Register, s.Bit, s.Value)
	}
	return fmt.Sprintf("%s:%d=%d", reg, s.Bit, s.Value)
}

// Masks holds, per register slot, which bits a batch touches and the values
// requested for them.
type Masks struct {
	Mask  [NumRegisters]byte
	Value [NumRegisters]byte
}

// BuildMasks validates specs and folds them into per-register masks. Values
// are only collected when writing. When a bit is requested more than once,
// a 1 in any of the specs sets it.
func BuildMasks(specs []BitSpec, writing bool) (Masks, error) {
	var m Masks
	for i, s := range specs {
		if !writing {
			s.Value = 0
		}
		if err := s.Validate(); err != nil {
			return Masks{}, fmt.Errorf("spec %d: %w", i, err)
		}
		pos := byte(1) << s.Bit
		m.Mask[s.Register] |= pos
		if s.Value != 0 {
			m.Value[s.Register] |= pos
		}
	}
	return m, nil
}

// ByteToBitSpecs expands a 0-255 value into the eight data register specs,
// bit 0 first.
func ByteToBitSpecs(v int) ([]BitSpec, error) {
	if v < 0 || v > 255 {
		return nil, fmt.Errorf("%w: %d", ErrValueRange, v)
	}
	specs := make([]BitSpec, 8)
	for i := range specs {
		var val uint8
		if Bit(byte(v), uint8(i)) {
			val = 1
		}
		specs[i] = BitSpec{Bit: uint8(i), Register: 0, Value: val}
	}
	return specs, nil
}

// Bit reports whether bit n of b is set.
func Bit(b byte, n uint8) bool {
	return b&(1<<n) != 0
}

// FormatBits renders b MSB first, e.g. "10110000".
func FormatBits(b byte) string {
	return fmt.Sprintf("%08b", b)
}
