package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plclink",
		Short: "Locked-down link to the instrument PLC",
		Long: `plclink talks to the instrument's S7 controller over a single whitelisted
data block. It writes experiment parameters in verified transactions, drives
the per-mode command bits, and reads controller status back.

Without a reachable controller (or with PLC_SIM=1) every command runs against
a built-in simulator, so workflows can be exercised on a desk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newWriteCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newConfirmCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newDemoCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
