package cmd

import (
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
	"github.com/spf13/cobra"
)

var writeOut bool

var writeCmd = &cobra.Command{
	Use:   "write <port> <value>",
	Short: "Drive the eight data lines of a port",
	Long: `Open a port, drive D0-D7 to value and close it again. The value is 0-255
in decimal, 0x hex or 0b binary. The resulting line states are printed bit 0
first unless --out=false.

Examples:
  ppdev write 1 0xB0
  ppdev write 2 0b00000001 --out=false`,
	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().BoolVar(&writeOut, "out", true, "print the line states after writing")
}

func runWrite(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	value, err := parseValue(args[1])
	if err != nil {
		return err
	}
	return oneShot(cmd.OutOrStdout(), port, session.Write{Port: port, Value: value, Output: writeOut})
}
