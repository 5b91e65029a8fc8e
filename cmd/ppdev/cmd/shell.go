package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
	"github.com/spf13/cobra"
)

var shellPrompt = "ppdev> "

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command shell",
	Long: `Read session commands from standard input and run them one at a time
against a single session. Failed commands are reported and the shell keeps
going. Type 'help' for the command language and 'quit' to leave; every port
still open is closed on exit.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	p, err := session.NewParser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	return withSession(func(ctx context.Context, s *session.Session) error {
		lines, scanErr := readLines(ctx, cmd.InOrStdin())
		for {
			fmt.Fprint(out, shellPrompt)
			var line string
			select {
			case <-ctx.Done():
				fmt.Fprintln(out)
				return ctx.Err()
			case l, ok := <-lines:
				if !ok {
					fmt.Fprintln(out)
					return <-scanErr
				}
				line = strings.TrimSpace(l)
			}

			switch strings.ToLower(line) {
			case "":
				continue
			case "help", "?":
				fmt.Fprint(out, session.Help())
				continue
			case "quit", "exit":
				return nil
			case "ports":
				fmt.Fprintf(out, "open: %v\n", s.Registry.OpenPorts())
				continue
			}

			cmds, err := p.ParseString(line)
			if err != nil {
				printError(out, err)
				continue
			}
			for _, c := range cmds {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := s.Execute(c)
				if err != nil {
					printError(out, err)
					break
				}
				printResult(out, res)
			}
		}
	})
}

// readLines scans r on its own goroutine so the shell can stop waiting for
// input when ctx is cancelled. lines is closed at end of input; scanErr then
// carries the scanner error, or nil.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		in := bufio.NewScanner(r)
		for in.Scan() {
			select {
			case lines <- in.Text():
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- in.Err()
	}()
	return lines, scanErr
}
