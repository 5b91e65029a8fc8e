package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTracePPDev/internal/config"
	"github.com/OpenTraceLab/OpenTracePPDev/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	envFile    string
	basePath   string
	simMode    bool
	dryRun     bool
	noVerify   bool
	logLevel   string
	logFormat  string
	verbose    bool

	// Resolved in PersistentPreRunE
	cfg    = config.Default()
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "ppdev",
	Short: "Parallel port line control through Linux ppdev",
	Long: `Drive and sample the data, status and control lines of up to eight
parallel ports through the Linux ppdev driver. Ports are numbered 1-8 and map
to /dev/parport0../dev/parport7.

Examples:
  ppdev write 1 0xB0                       # Drive D0-D7 of port 1 to 10110000
  ppdev read 1 busy ack                    # Sample status lines
  ppdev set 1 strobe=1 init=0              # Drive control lines
  ppdev exec blink.pp                      # Run a command script
  ppdev --sim shell                        # Interactive shell on simulated ports`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ppdev/config.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with PPDEV_* variables")
	pf.StringVar(&basePath, "base", "", "device node prefix (default /dev/parport)")
	pf.BoolVar(&simMode, "sim", false, "use simulated in-memory ports")
	pf.BoolVar(&dryRun, "dry-run", false, "compute register values without writing them")
	pf.BoolVar(&noVerify, "no-verify", false, "skip the read-back after writes unless output is requested")
	pf.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (console, json)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadSettings resolves the configuration: defaults, config file, .env and
// PPDEV_* variables, then explicit flags.
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base") {
		c.BasePath = basePath
	}
	if flags.Changed("sim") {
		c.Sim = simMode
	}
	if flags.Changed("dry-run") {
		c.DryRun = dryRun
	}
	if flags.Changed("no-verify") {
		c.Verify = !noVerify
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	logger = logging.New(logging.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s (sim=%t dry-run=%t verify=%t)\n",
			cfg.BasePath, cfg.Sim, cfg.DryRun, cfg.Verify)
	}
	return nil
}
