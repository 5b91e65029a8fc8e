package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/registry"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
)

// newSession builds a session over the ppdev driver, or over simulated
// ports with --sim.
func newSession() *session.Session {
	opener := parport.Opener(parport.OpenPPDev)
	if cfg.Sim {
		opener = parport.NewSimBus().Open
	}
	reg := registry.New(
		registry.WithOpener(opener),
		registry.WithBasePath(cfg.BasePath),
		registry.WithLogger(logger),
	)

	eng := parport.NewEngine()
	eng.DryRun = cfg.DryRun
	eng.Verify = cfg.Verify
	eng.Log = logger.With().Str("component", "engine").Logger()

	return session.New(reg, eng, logger)
}

var errInterrupted = errors.New("interrupted")

// withSession runs fn against a fresh session and closes every port it left
// open. SIGINT and SIGTERM only cancel ctx; fn is expected to return, and the
// ports are closed here on the calling goroutine.
func withSession(fn func(ctx context.Context, s *session.Session) error) (err error) {
	s := newSession()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer func() {
		interrupted := ctx.Err() != nil
		stop()
		if interrupted {
			logger.Warn().Ints("ports", s.Registry.OpenPorts()).Msg("interrupted, closing ports")
			if err == nil || errors.Is(err, context.Canceled) {
				err = errInterrupted
			}
		}
		if cerr := s.Registry.Shutdown(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, s)
}

// oneShot opens port, runs cmd and prints its result.
func oneShot(out io.Writer, port int, cmd session.Command) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if verbose {
			path, _ := s.Registry.PathFor(port)
			fmt.Fprintf(out, "Opening port %d (%s)...\n", port, path)
		}
		if err := s.Open(port); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.Execute(cmd)
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	})
}

func parsePort(arg string) (int, error) {
	port, err := session.ParseNumber(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid port: %w", err)
	}
	if err := registry.CheckPort(port); err != nil {
		return 0, err
	}
	return port, nil
}

func parseValue(arg string) (int, error) {
	v, err := session.ParseNumber(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid value: %w", err)
	}
	return v, nil
}
