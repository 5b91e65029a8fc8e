package parport

import (
	"errors"
	"testing"
)

func TestBit(t *testing.T) {
	if !Bit(0b1011_0000, 7) || Bit(0b1011_0000, 6) || !Bit(0b1011_0000, 4) {
		t.Fatalf("Bit misreads 10110000")
	}
	for n := uint8(0); n < 8; n++ {
		if Bit(0, n) {
			t.Fatalf("Bit(0, %d) = true", n)
		}
		if !Bit(0xFF, n) {
			t.Fatalf("Bit(0xFF, %d) = false", n)
		}
	}
}

func TestByteToBitSpecs(t *testing.T) {
	specs, err := ByteToBitSpecs(0b1011_0000)
	if err != nil {
		t.Fatalf("ByteToBitSpecs returned error: %v", err)
	}
	want := []uint8{0, 0, 0, 0, 1, 1, 0, 1}
	for i, s := range specs {
		if s.Bit != uint8(i) || s.Register != 0 || s.Value != want[i] {
			t.Fatalf("spec %d = %+v, want bit %d data value %d", i, s, i, want[i])
		}
	}

	for _, v := range []int{-1, 256, 1000} {
		if _, err := ByteToBitSpecs(v); !errors.Is(err, ErrValueRange) {
			t.Fatalf("ByteToBitSpecs(%d) err = %v, want ErrValueRange", v, err)
		}
	}
}

func TestBuildMasks(t *testing.T) {
	specs := []BitSpec{
		{Bit: 0, Register: 0, Value: 1},
		{Bit: 7, Register: 0, Value: 0},
		{Bit: 7, Register: 1},
		{Bit: 2, Register: 2, Value: 1},
		{Bit: 2, Register: 2, Value: 0},
	}
	m, err := BuildMasks(specs, true)
	if err != nil {
		t.Fatalf("BuildMasks returned error: %v", err)
	}
	if m.Mask != [NumRegisters]byte{0x81, 0x80, 0x04, 0} {
		t.Fatalf("Mask = %v", m.Mask)
	}
	// a 1 for control bit 2 wins over the later 0
	if m.Value != [NumRegisters]byte{0x01, 0, 0x04, 0} {
		t.Fatalf("Value = %v", m.Value)
	}

	m, err = BuildMasks([]BitSpec{{Bit: 3, Register: 0, Value: 1}}, false)
	if err != nil {
		t.Fatalf("BuildMasks returned error: %v", err)
	}
	if m.Value[0] != 0 {
		t.Fatalf("values collected while reading: %v", m.Value)
	}

	if _, err := BuildMasks([]BitSpec{{Bit: 9}}, false); !errors.Is(err, ErrBadBitSpec) {
		t.Fatalf("err = %v, want ErrBadBitSpec", err)
	}
}

func TestRegisterLookup(t *testing.T) {
	for offset, want := range []Register{RegData, RegStatus, RegControl} {
		got, err := RegisterAt(uint8(offset))
		if err != nil || got != want {
			t.Fatalf("RegisterAt(%d) = %v, %v; want %v", offset, got, err, want)
		}
	}
	if _, err := RegisterAt(3); !errors.Is(err, ErrBadBitSpec) {
		t.Fatalf("RegisterAt(3) err = %v", err)
	}
	if r, err := ParseRegister("ctrl"); err != nil || r != RegControl {
		t.Fatalf("ParseRegister(ctrl) = %v, %v", r, err)
	}
	if d, ok := Describe(RegControl); !ok || d.WritableMask != 0x0F {
		t.Fatalf("control descriptor = %+v", d)
	}
	if d, _ := Describe(RegStatus); d.Writable {
		t.Fatalf("status register must not be writable")
	}
	if RegECR.String() != "ecr" || Register(0x10).String() != "reg(0x010)" {
		t.Fatalf("unexpected register names %q %q", RegECR, Register(0x10))
	}
}
