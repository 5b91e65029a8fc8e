package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/spf13/cobra"
)

var interfacesUSB bool

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List available parallel ports",
	Long: `Scan the host for ppdev device nodes and, with --usb, USB printer-class
IEEE-1284 bridges. USB bridges are listed for reference only; their lines
are not register addressable.`,
	Args: cobra.NoArgs,
	RunE: runInterfaces,
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
	interfacesCmd.Flags().BoolVar(&interfacesUSB, "usb", true, "also list USB printer-class bridges")
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	infos, err := parport.DiscoverPorts(ctx, cfg.BasePath, interfacesUSB)
	if err != nil {
		if len(infos) == 0 {
			return fmt.Errorf("discover interfaces: %w", err)
		}
		logger.Warn().Err(err).Msg("partial discovery")
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No interfaces found.")
		return nil
	}

	fmt.Fprintln(out, "Detected parallel ports:")
	for _, info := range infos {
		if info.Addressable() {
			fmt.Fprintf(out, "  - port %d: %s [%s]\n", info.Port, info.Path, info.Kind)
			continue
		}
		fmt.Fprintf(out, "  - %s [%s] (VID:PID %04X:%04X)\n", info.Label(), info.Kind, info.VendorID, info.ProductID)
	}
	return nil
}
