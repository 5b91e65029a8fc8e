// Package session is the command facade over a port registry and the
// register bit engine. It resolves port numbers to claimed devices, builds
// bit batches and dispatches the closed set of Commands.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/registry"
	"github.com/rs/zerolog"
)

// Result is what a command produced. Bits is nil unless output was requested
// (Read always produces output); Bits[i] belongs to Lines[i].
type Result struct {
	Command Command
	Lines   []Line
	Bits    []bool
}

// Session binds a registry to a bit engine. Like the registry, it expects a
// single caller at a time.
type Session struct {
	Registry *registry.Registry
	Engine   *parport.Engine

	log zerolog.Logger
}

// New creates a session. A nil engine gets parport.NewEngine().
func New(reg *registry.Registry, eng *parport.Engine, log zerolog.Logger) *Session {
	if eng == nil {
		eng = parport.NewEngine()
	}
	return &Session{
		Registry: reg,
		Engine:   eng,
		log:      log.With().Str("component", "session").Logger(),
	}
}

func (s *Session) Open(port int) error {
	_, err := s.Registry.Open(port)
	return err
}

func (s *Session) Close(port int) error {
	return s.Registry.Close(port)
}

func (s *Session) CloseAll() error {
	return s.Registry.CloseAll()
}

// Write drives the data register of port to value. Validation happens in the
// order port range, value range, port open.
func (s *Session) Write(port, value int, wantOut bool) ([]bool, error) {
	if err := registry.CheckPort(port); err != nil {
		return nil, err
	}
	specs, err := parport.ByteToBitSpecs(value)
	if err != nil {
		return nil, err
	}
	return s.apply(port, specs, true, wantOut)
}

// Read samples specs on port and returns one boolean per spec.
func (s *Session) Read(port int, specs []parport.BitSpec) ([]bool, error) {
	if err := registry.CheckPort(port); err != nil {
		return nil, err
	}
	return s.apply(port, specs, false, true)
}

// Set writes an arbitrary batch of specs to port.
func (s *Session) Set(port int, specs []parport.BitSpec, wantOut bool) ([]bool, error) {
	if err := registry.CheckPort(port); err != nil {
		return nil, err
	}
	return s.apply(port, specs, true, wantOut)
}

func (s *Session) apply(port int, specs []parport.BitSpec, writing, wantOut bool) ([]bool, error) {
	if len(specs) == 0 {
		return nil, errors.New("session: no lines given")
	}
	m, err := parport.BuildMasks(specs, writing)
	if err != nil {
		return nil, err
	}
	h, err := s.Registry.Lookup(port)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Int("port", port).
		Bool("writing", writing).
		Hex("mask", m.Mask[:]).
		Hex("values", m.Value[:]).
		Msg("apply")
	out, err := s.Engine.ApplyBits(h.Device(), m, specs, writing, wantOut)
	if err != nil {
		return nil, fmt.Errorf("port %d: %w", port, err)
	}
	return out, nil
}

// Execute dispatches cmd.
func (s *Session) Execute(cmd Command) (Result, error) {
	res := Result{Command: cmd}
	var err error
	switch c := cmd.(type) {
	case Open:
		err = s.Open(c.Port)
	case Close:
		err = s.Close(c.Port)
	case CloseAll:
		err = s.CloseAll()
	case Write:
		res.Bits, err = s.Write(c.Port, c.Value, c.Output)
		if err == nil {
			res.Lines = dataLines(c.Value)
		}
	case Read:
		res.Lines = c.Lines
		res.Bits, err = s.Read(c.Port, Specs(c.Lines))
	case Set:
		res.Lines = c.Lines
		res.Bits, err = s.Set(c.Port, Specs(c.Lines), c.Output)
	default:
		err = fmt.Errorf("session: unknown command %T", cmd)
	}
	if err != nil {
		s.log.Error().Err(err).Stringer("command", cmd).Msg("command failed")
		return Result{Command: cmd}, err
	}
	return res, nil
}

// Run executes cmds in order, calling emit after each success, and stops at
// the first failure or when ctx is cancelled. A command already running is
// not interrupted.
func (s *Session) Run(ctx context.Context, cmds []Command, emit func(Result)) error {
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("command %d (%s) not run: %w", i+1, cmd, err)
		}
		res, err := s.Execute(cmd)
		if err != nil {
			return fmt.Errorf("command %d (%s): %w", i+1, cmd, err)
		}
		if emit != nil {
			emit(res)
		}
	}
	return nil
}
