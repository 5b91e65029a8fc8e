// Package registry tracks which parallel ports are open and exclusively
// claimed. A Registry owns a fixed table of Capacity slots; port N (1-based)
// lives in slot N-1 and maps to the device node basePath+(N-1).
package registry

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/rs/zerolog"
)

// Capacity is the number of ports a registry can hold open at once.
const Capacity = 8

var (
	ErrPortRange   = errors.New("registry: port number out of range 1-8")
	ErrNotOpen     = errors.New("registry: port not open")
	ErrAlreadyOpen = errors.New("registry: port already open")
)

// Handle is one opened and claimed port. It exclusively owns its device
// descriptor until the registry closes it.
type Handle struct {
	port    int
	path    string
	dev     parport.Device
	claimed bool
}

// Port returns the 1-based port number.
func (h *Handle) Port() int { return h.port }

// Path returns the device node the handle was opened from.
func (h *Handle) Path() string { return h.path }

// Device returns the claimed device for register access.
func (h *Handle) Device() parport.Device { return h.dev }

// Claimed reports whether the port claim is held.
func (h *Handle) Claimed() bool { return h.claimed }

// release drops the claim and closes the descriptor. A failed release aborts
// before the descriptor is closed and leaves the handle claimed.
func (h *Handle) release() error {
	if h.claimed {
		if err := h.dev.Release(); err != nil {
			return fmt.Errorf("registry: couldn't release port %d: %w", h.port, err)
		}
	}
	h.claimed = false
	if err := h.dev.Close(); err != nil {
		return fmt.Errorf("registry: couldn't close port %d: %w", h.port, err)
	}
	return nil
}

// unwind is release for the Open failure path: every acquired resource is
// let go even if an earlier step fails.
func (h *Handle) unwind() error {
	var errs []error
	if h.claimed {
		if err := h.dev.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release: %w", err))
		}
		h.claimed = false
	}
	if err := h.dev.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	return errors.Join(errs...)
}

// Registry is the table of open ports. It is not safe for concurrent use;
// callers serialize access the same way they serialize port I/O.
type Registry struct {
	slots    [Capacity]*Handle
	open     parport.Opener
	basePath string
	log      zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithOpener replaces the device opener, e.g. with a parport.SimBus.
func WithOpener(open parport.Opener) Option {
	return func(r *Registry) { r.open = open }
}

// WithBasePath sets the device node prefix (default /dev/parport).
func WithBasePath(base string) Option {
	return func(r *Registry) { r.basePath = base }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log.With().Str("component", "registry").Logger() }
}

// New returns an empty registry using the Linux ppdev driver.
func New(opts ...Option) *Registry {
	r := &Registry{
		open:     parport.OpenPPDev,
		basePath: parport.DefaultBasePath,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PathFor returns the device node for a 1-based port number.
func (r *Registry) PathFor(port int) (string, error) {
	idx, err := slotIndex(port)
	if err != nil {
		return "", err
	}
	return r.basePath + strconv.Itoa(idx), nil
}

// Open opens the device node for port, requests exclusive access, claims it
// and selects byte mode. Any failing step unwinds what was acquired before
// it. Opening a port that is already open fails with ErrAlreadyOpen and
// leaves the existing handle in place.
func (r *Registry) Open(port int) (_ *Handle, err error) {
	idx, err := slotIndex(port)
	if err != nil {
		return nil, err
	}
	if r.slots[idx] != nil {
		return nil, fmt.Errorf("%w: port %d (%s)", ErrAlreadyOpen, port, r.slots[idx].path)
	}
	path := r.basePath + strconv.Itoa(idx)
	log := r.log.With().Int("port", port).Str("path", path).Logger()

	dev, err := r.open(path)
	if err != nil {
		log.Error().Err(err).Msg("open failed")
		return nil, fmt.Errorf("registry: couldn't access port %d: %w", port, err)
	}
	h := &Handle{port: port, path: path, dev: dev}

	defer func() {
		if err == nil {
			return
		}
		log.Error().Err(err).Msg("open aborted")
		if uerr := h.unwind(); uerr != nil {
			log.Error().Err(uerr).Msg("cleanup after failed open")
			err = errors.Join(err, uerr)
		}
	}()

	if err = dev.Exclusive(); err != nil {
		return nil, fmt.Errorf("registry: couldn't get exclusive access to port %d: %w", port, err)
	}
	if err = dev.Claim(); err != nil {
		return nil, fmt.Errorf("registry: couldn't claim port %d: %w", port, err)
	}
	h.claimed = true
	if err = dev.SetMode(parport.ModeByte); err != nil {
		return nil, fmt.Errorf("registry: couldn't set byte mode on port %d: %w", port, err)
	}

	r.slots[idx] = h
	log.Debug().Msg("port opened")
	return h, nil
}

// Lookup returns the handle for an open port.
func (r *Registry) Lookup(port int) (*Handle, error) {
	idx, err := slotIndex(port)
	if err != nil {
		return nil, err
	}
	h := r.slots[idx]
	if h == nil {
		return nil, fmt.Errorf("%w: port %d", ErrNotOpen, port)
	}
	return h, nil
}

// Close releases the claim on port and closes its descriptor. If the
// release fails the port stays registered. A failed close still clears the
// slot: the descriptor is gone either way.
func (r *Registry) Close(port int) error {
	idx, err := slotIndex(port)
	if err != nil {
		return err
	}
	return r.closeSlot(idx)
}

// CloseAll closes every open port in slot order and stops at the first
// failure. Slots closed before the failure stay closed.
func (r *Registry) CloseAll() error {
	for idx := range r.slots {
		if r.slots[idx] == nil {
			continue
		}
		if err := r.closeSlot(idx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown tears the registry down at process exit.
func (r *Registry) Shutdown() error {
	open := r.OpenPorts()
	if len(open) == 0 {
		return nil
	}
	r.log.Debug().Ints("ports", open).Msg("shutdown")
	return r.CloseAll()
}

// OpenPorts lists the 1-based numbers of open ports in ascending order.
func (r *Registry) OpenPorts() []int {
	var ports []int
	for idx, h := range r.slots {
		if h != nil {
			ports = append(ports, idx+1)
		}
	}
	return ports
}

func (r *Registry) closeSlot(idx int) error {
	h := r.slots[idx]
	if h == nil {
		return fmt.Errorf("%w: port %d", ErrNotOpen, idx+1)
	}
	log := r.log.With().Int("port", h.port).Str("path", h.path).Logger()

	err := h.release()
	if h.claimed {
		log.Error().Err(err).Msg("release failed, port kept")
		return err
	}
	r.slots[idx] = nil
	if err != nil {
		log.Error().Err(err).Msg("close failed")
		return err
	}
	log.Debug().Msg("port closed")
	return nil
}

// CheckPort validates a 1-based port number without touching any table.
func CheckPort(port int) error {
	_, err := slotIndex(port)
	return err
}

func slotIndex(port int) (int, error) {
	if port < 1 || port > Capacity {
		return 0, fmt.Errorf("%w: %d", ErrPortRange, port)
	}
	return port - 1, nil
}
