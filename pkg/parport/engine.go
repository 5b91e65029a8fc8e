package parport

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Engine translates bit batches into register reads, masked modifications
// and write-backs on a claimed Device.
type Engine struct {
	// DryRun turns every write into a logged no-op while the rest of the
	// read-modify-write still runs.
	DryRun bool

	// Verify re-reads a register after writing it even when no output was
	// requested. The re-read is diagnostic: a mismatch is logged, not failed.
	Verify bool

	Log zerolog.Logger
}

// NewEngine returns an engine with writes enabled and no logging.
func NewEngine() *Engine {
	return &Engine{Log: zerolog.Nop()}
}

// Apply validates specs, builds the register masks and runs ApplyBits.
func (e *Engine) Apply(dev Device, specs []BitSpec, writing, wantOut bool) ([]bool, error) {
	m, err := BuildMasks(specs, writing)
	if err != nil {
		return nil, err
	}
	return e.ApplyBits(dev, m, specs, writing, wantOut)
}

// ApplyBits visits data, status, control and ECR in that order, skipping
// registers whose mask is zero. Each visited register is read; when writing
// its masked bits are replaced by the requested values and the result is
// written back. With wantOut, the returned slice holds one boolean per spec,
// in spec order, taken from the register's final value.
func (e *Engine) ApplyBits(dev Device, m Masks, specs []BitSpec, writing, wantOut bool) ([]bool, error) {
	if !writing && !wantOut {
		return nil, ErrOutputRequired
	}
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("spec %d: %w", i, err)
		}
	}

	if err := preflight(m, writing); err != nil {
		return nil, err
	}

	var out []bool
	if wantOut {
		out = make([]bool, len(specs))
	}

	for i, reg := range registerOrder {
		mask := m.Mask[i]
		if mask == 0 {
			continue
		}
		desc := descriptors[reg]

		b, err := dev.ReadRegister(reg)
		if err != nil {
			return nil, fmt.Errorf("parport: read %s: %w", reg, err)
		}

		if writing {
			b, err = e.write(dev, desc, b, mask, m.Value[i], wantOut)
			if err != nil {
				return nil, err
			}
		}

		if out == nil {
			continue
		}
		for j, s := range specs {
			if s.Register == uint8(i) {
				out[j] = Bit(b, s.Bit)
			}
		}
	}
	return out, nil
}

// preflight rejects unsupported registers and illegal writes before any
// register is touched, so a rejected batch leaves the port unchanged.
func preflight(m Masks, writing bool) error {
	for i, reg := range registerOrder {
		mask := m.Mask[i]
		if mask == 0 {
			continue
		}
		desc := descriptors[reg]
		if !desc.Supported {
			return ErrECRUnsupported
		}
		if !writing {
			continue
		}
		if !desc.Writable {
			return ErrStatusReadOnly
		}
		if mask&^desc.WritableMask != 0 {
			return fmt.Errorf("%w (mask %s)", ErrControlBits, FormatBits(mask))
		}
	}
	return nil
}

func (e *Engine) write(dev Device, desc RegisterDescriptor, old, mask, vals byte, wantOut bool) (byte, error) {
	reg := desc.Register
	b := (old &^ mask) | (vals & mask)
	e.Log.Debug().
		Stringer("register", reg).
		Str("old", FormatBits(old)).
		Str("new", FormatBits(b)).
		Msg("frob")

	if e.DryRun {
		e.Log.Warn().Stringer("register", reg).Msg("writes disabled, not actually writing to register")
		return b, nil
	}
	if err := dev.WriteRegister(reg, b); err != nil {
		return 0, fmt.Errorf("parport: write %s: %w", reg, err)
	}
	if !wantOut && !e.Verify {
		return b, nil
	}

	got, err := dev.ReadRegister(reg)
	if err != nil {
		return 0, fmt.Errorf("parport: read %s: %w", reg, err)
	}
	if got != b {
		e.Log.Warn().
			Stringer("register", reg).
			Str("wrote", FormatBits(b)).
			Str("read", FormatBits(got)).
			Msg("verification read differs")
	}
	return got, nil
}
