package cmd

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/signal"
	"github.com/spf13/cobra"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Show the DB-25 signal table",
	Args:  cobra.NoArgs,
	RunE:  runSignals,
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}

func runSignals(cmd *cobra.Command, args []string) error {
	t := newTable().Headers("PIN", "SIGNAL", "REGISTER", "BIT", "DIR", "INVERTED")
	for _, s := range signal.All() {
		inv := ""
		if s.Inverted {
			inv = "yes"
		}
		t.Row(strconv.Itoa(s.Pin), s.Name, s.Register.String(), strconv.Itoa(int(s.Bit)), s.Direction.String(), inv)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintln(cmd.OutOrStdout(), "Pins 18-25 are ground.")
	return nil
}
