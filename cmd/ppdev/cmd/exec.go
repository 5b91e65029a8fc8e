package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <script|->",
	Short: "Run a command script in one session",
	Long: `Parse a script of session commands and run it against a single session.
The whole script is parsed before any port is touched. Execution stops at the
first failing command and every port still open is closed on exit.

Example script:
  open 1
  write 1 0xFF out
  set 1 strobe=1; set 1 strobe=0
  read 1 busy ack
  closeall`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	name := args[0]
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
		name = "stdin"
	} else {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	p, err := session.NewParser()
	if err != nil {
		return err
	}
	cmds, err := p.Parse(name, r)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d command(s) from %s\n", len(cmds), name)
	}

	out := cmd.OutOrStdout()
	return withSession(func(ctx context.Context, s *session.Session) error {
		return s.Run(ctx, cmds, func(res session.Result) { printResult(out, res) })
	})
}
