package parport

import "fmt"

// Register identifies one of the byte-wide parallel port registers by its
// offset from the port base address.
type Register uint16

const (
	RegData    Register = 0x000
	RegStatus  Register = 0x001
	RegControl Register = 0x002
	// RegECR is the extended control register of ECP-capable ports. The
	// ppdev driver offers no byte-mode access to it.
	RegECR Register = 0x402
)

// NumRegisters is the number of register slots a mask/value batch carries.
const NumRegisters = 4

// registerOrder is the fixed order in which ApplyBits visits registers. The
// slice index is the slot used by mask and value arrays.
var registerOrder = [NumRegisters]Register{RegData, RegStatus, RegControl, RegECR}

// RegisterDescriptor is the static description of a register: which driver
// operations reach it and which of its bits software may change.
type RegisterDescriptor struct {
	Register     Register
	Name         string
	Readable     bool
	Writable     bool
	WritableMask byte
	Supported    bool
}

var descriptors = map[Register]RegisterDescriptor{
	RegData: {
		Register:     RegData,
		Name:         "data",
		Readable:     true,
		Writable:     true,
		WritableMask: 0xFF,
		Supported:    true,
	},
	RegStatus: {
		Register:  RegStatus,
		Name:      "status",
		Readable:  true,
		Supported: true,
	},
	RegControl: {
		Register:     RegControl,
		Name:         "control",
		Readable:     true,
		Writable:     true,
		WritableMask: 0x0F,
		Supported:    true,
	},
	RegECR: {
		Register: RegECR,
		Name:     "ecr",
	},
}

// Describe returns the descriptor for r.
func Describe(r Register) (RegisterDescriptor, bool) {
	d, ok := descriptors[r]
	return d, ok
}

// String returns the register name used in errors and logs.
func (r Register) String() string {
	if d, ok := descriptors[r]; ok {
		return d.Name
	}
	return fmt.Sprintf("reg(0x%03X)", uint16(r))
}

// RegisterAt maps a BitSpec register offset (0..2) to its Register.
func RegisterAt(offset uint8) (Register, error) {
	switch offset {
	case 0:
		return RegData, nil
	case 1:
		return RegStatus, nil
	case 2:
		return RegControl, nil
	}
	return 0, fmt.Errorf("%w: register offset %d out of range 0-2", ErrBadBitSpec, offset)
}

// ParseRegister resolves a register by name ("data", "status", "control",
// "ecr") or by its short form ("d", "s", "c").
func ParseRegister(name string) (Register, error) {
	switch name {
	case "data", "d":
		return RegData, nil
	case "status", "s":
		return RegStatus, nil
	case "control", "ctrl", "c":
		return RegControl, nil
	case "ecr":
		return RegECR, nil
	}
	return 0, fmt.Errorf("parport: unknown register %q", name)
}

// slot returns the mask/value array index of r.
func slot(r Register) int {
	for i, reg := range registerOrder {
		if reg == r {
			return i
		}
	}
	return -1
}
