package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <port> <line>...",
	Short: "Sample lines of a port",
	Long: `Open a port, sample the given lines and close it again. A line is a
signal name (see 'ppdev signals') or <register>:<bit>.

Examples:
  ppdev read 1 busy ack paperout
  ppdev read 1 status:3 data:0`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	return runLines(cmd, "read", args)
}

// runLines compiles a one-line statement from args so line references are
// resolved exactly like in scripts.
func runLines(cmd *cobra.Command, verb string, args []string) error {
	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	p, err := session.NewParser()
	if err != nil {
		return err
	}
	c, err := p.ParseCommand(verb + " " + strings.Join(args, " "))
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%s: no lines given", verb)
	}
	return oneShot(cmd.OutOrStdout(), port, c)
}
