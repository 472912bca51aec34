package main

import (
	"github.com/spf13/cobra"

	"github.com/tamaralab/plclink/internal/app"
	"github.com/tamaralab/plclink/internal/config"
	"github.com/tamaralab/plclink/internal/logging"
	"github.com/tamaralab/plclink/internal/params"
)

// connectionFlags are shared by every subcommand that opens the link.
// Precedence: built-in defaults < environment < --config file < flags.
type connectionFlags struct {
	configFile string
	ip         string
	rack       int
	slot       int
	sim        bool
	simDebug   bool
	verbose    bool
	debug      bool
	logFile    string
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configFile, "config", "", "YAML config file overlaying the environment")
	cmd.Flags().StringVar(&f.ip, "ip", "", "controller IP address")
	cmd.Flags().IntVar(&f.rack, "rack", 0, "controller rack number")
	cmd.Flags().IntVar(&f.slot, "slot", 1, "controller slot number")
	cmd.Flags().BoolVar(&f.sim, "sim", false, "force the built-in simulator")
	cmd.Flags().BoolVar(&f.simDebug, "sim-debug", false, "trace simulator memory access")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "debug logging (includes raw cell bytes)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "also write logs to this file")
}

func (f *connectionFlags) session(cmd *cobra.Command) (*app.Session, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if f.configFile != "" {
		if err := cfg.ApplyFile(f.configFile); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("ip") {
		cfg.IP = f.ip
		cfg.Simulate = false
	}
	if cmd.Flags().Changed("rack") {
		cfg.Rack = f.rack
	}
	if cmd.Flags().Changed("slot") {
		cfg.Slot = f.slot
	}
	if cmd.Flags().Changed("sim") {
		cfg.Simulate = f.sim
	}
	if cmd.Flags().Changed("sim-debug") {
		cfg.SimDebug = f.simDebug
	}

	level := logging.LevelInfo
	if f.verbose {
		level = logging.LevelVerbose
	}
	if f.debug {
		level = logging.LevelDebug
	}
	return app.NewSession(cfg, level, f.logFile)
}

// modeArg parses the positional machine-mode argument used by the control
// commands.
func modeArg(args []string) (params.MachineMode, error) {
	if len(args) == 0 {
		return params.Run, nil
	}
	return params.ParseMachineMode(args[0])
}
