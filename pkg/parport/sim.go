package parport

import (
	"fmt"
	"os"
	"sync"
)

// Op names a single driver call on a device, used by the simulator to record
// call order and to inject failures.
type Op string

const (
	OpExclusive    Op = "exclusive"
	OpClaim        Op = "claim"
	OpSetMode      Op = "setmode"
	OpRelease      Op = "release"
	OpClose        Op = "close"
	OpReadData     Op = "read:data"
	OpReadStatus   Op = "read:status"
	OpReadControl  Op = "read:control"
	OpWriteData    Op = "write:data"
	OpWriteControl Op = "write:control"
)

// WriteHook lets the simulator emulate hardware behaviour on writes, e.g. a
// stuck line. It returns the byte the register latches.
type WriteHook func(r Register, b byte) byte

// SimDevice is an in-memory parallel port useful for tests and dry runs. It
// keeps the three byte registers, records every call and can fail any call
// on demand.
type SimDevice struct {
	Path string

	// Fail maps an operation to the error it returns. The register is left
	// untouched when a read or write fails.
	Fail map[Op]error

	OnWrite WriteHook

	mu        sync.Mutex
	regs      [3]byte
	calls     []Op
	exclusive bool
	claimed   bool
	closed    bool
	mode      Mode
}

// NewSimDevice constructs a simulator for path with all registers zero.
func NewSimDevice(path string) *SimDevice {
	return &SimDevice{Path: path, Fail: make(map[Op]error), mode: ModeCompat}
}

// SetRegister presets a register, bypassing write restrictions. Tests use it
// to model input lines on the status register.
func (s *SimDevice) SetRegister(r Register, b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slot(r); i >= 0 && i < len(s.regs) {
		s.regs[i] = b
	}
}

// Register returns the current latched value of r.
func (s *SimDevice) Register(r Register) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slot(r); i >= 0 && i < len(s.regs) {
		return s.regs[i]
	}
	return 0
}

// Calls returns a copy of the recorded call sequence.
func (s *SimDevice) Calls() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.calls...)
}

// State reports claim/exclusive/closed flags and the current mode.
func (s *SimDevice) State() (exclusive, claimed, closed bool, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exclusive, s.claimed, s.closed, s.mode
}

func (s *SimDevice) Exclusive() error {
	return s.do(OpExclusive, func() { s.exclusive = true })
}

func (s *SimDevice) Claim() error {
	return s.do(OpClaim, func() { s.claimed = true })
}

func (s *SimDevice) SetMode(mode Mode) error {
	return s.do(OpSetMode, func() { s.mode = mode })
}

func (s *SimDevice) Release() error {
	return s.do(OpRelease, func() { s.claimed = false })
}

func (s *SimDevice) Close() error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.do(OpClose, func() {
		s.closed = true
		s.exclusive = false
	})
}

func (s *SimDevice) ReadRegister(r Register) (byte, error) {
	var op Op
	switch r {
	case RegData:
		op = OpReadData
	case RegStatus:
		op = OpReadStatus
	case RegControl:
		op = OpReadControl
	default:
		return 0, fmt.Errorf("%w (read %s)", ErrECRUnsupported, r)
	}
	var b byte
	err := s.do(op, func() { b = s.regs[slot(r)] })
	return b, err
}

func (s *SimDevice) WriteRegister(r Register, b byte) error {
	var op Op
	switch r {
	case RegData:
		op = OpWriteData
	case RegControl:
		op = OpWriteControl
	case RegStatus:
		return ErrStatusReadOnly
	default:
		return fmt.Errorf("%w (write %s)", ErrECRUnsupported, r)
	}
	if s.OnWrite != nil {
		b = s.OnWrite(r, b)
	}
	return s.do(op, func() { s.regs[slot(r)] = b })
}

func (s *SimDevice) do(op Op, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
	if op != OpClose && s.closed {
		return ErrClosed
	}
	if err := s.Fail[op]; err != nil {
		return fmt.Errorf("parport: sim %s on %s: %w", op, s.Path, err)
	}
	apply()
	return nil
}

// SimBus hands out SimDevices by path. It stands in for /dev when no
// hardware is present and keeps devices alive across reopen so register
// state survives Close/Open cycles, like a real port.
type SimBus struct {
	mu      sync.Mutex
	devices map[string]*SimDevice
	present map[string]bool

	// OnOpen, if set, is invoked for every freshly opened device so tests can
	// arm failures before the registry drives it.
	OnOpen func(*SimDevice)
}

// NewSimBus creates a bus. When paths are given only those nodes exist and
// opening anything else fails with os.ErrNotExist; otherwise any path opens.
func NewSimBus(paths ...string) *SimBus {
	b := &SimBus{devices: make(map[string]*SimDevice)}
	if len(paths) > 0 {
		b.present = make(map[string]bool, len(paths))
		for _, p := range paths {
			b.present[p] = true
		}
	}
	return b
}

// Open implements Opener.
func (b *SimBus) Open(path string) (Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.present != nil && !b.present[path] {
		return nil, fmt.Errorf("parport: open %s: %w", path, os.ErrNotExist)
	}
	prev, ok := b.devices[path]
	dev := NewSimDevice(path)
	if ok {
		prev.mu.Lock()
		dev.regs = prev.regs
		prev.mu.Unlock()
	}
	b.devices[path] = dev
	if b.OnOpen != nil {
		b.OnOpen(dev)
	}
	return dev, nil
}

// Device returns the most recently opened simulator for path.
func (b *SimBus) Device(path string) (*SimDevice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[path]
	return d, ok
}
