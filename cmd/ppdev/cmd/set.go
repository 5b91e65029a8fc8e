package cmd

import "github.com/spf13/cobra"

var setOut bool

var setCmd = &cobra.Command{
	Use:   "set <port> <line>=<0|1>...",
	Short: "Drive individual lines of a port",
	Long: `Open a port, drive the given lines and close it again. Values are raw
register bits; inverted lines (STROBE, AUTOFD, SELECTIN) show the opposite
level at the connector. Status lines are inputs and cannot be set.

Examples:
  ppdev set 1 strobe=1 init=0
  ppdev set 1 control:2=1 d0=1 --out`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setOut, "out", false, "print the line states after writing")
}

func runSet(cmd *cobra.Command, args []string) error {
	if setOut {
		args = append(args, "out")
	}
	return runLines(cmd, "set", args)
}
