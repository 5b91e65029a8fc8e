package parport

// Mode is an IEEE 1284 transfer mode as understood by PPSETMODE.
type Mode int

const (
	ModeNibble Mode = 0
	ModeByte   Mode = 1 << 0
	ModeECP    Mode = 1 << 4
	ModeEPP    Mode = 1 << 6
	ModeCompat Mode = 1 << 8
)

func (m Mode) String() string {
	switch m {
	case ModeNibble:
		return "nibble"
	case ModeByte:
		return "byte"
	case ModeECP:
		return "ecp"
	case ModeEPP:
		return "epp"
	case ModeCompat:
		return "compat"
	}
	return "unknown"
}

// Device abstracts an opened parallel port device node. Each method is one
// blocking driver call.
type Device interface {
	Exclusive() error
	Claim() error
	SetMode(mode Mode) error
	Release() error
	ReadRegister(r Register) (byte, error)
	WriteRegister(r Register, b byte) error
	Close() error
}

// Opener opens the device node at path for read-write access. It performs no
// claim; callers drive Exclusive/Claim/SetMode themselves.
type Opener func(path string) (Device, error)
