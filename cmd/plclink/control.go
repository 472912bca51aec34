package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tamaralab/plclink/internal/app"
)

// The control commands all take an optional machine-mode argument
// (run, clean, pressure-test) defaulting to run.

func newStartCmd() *cobra.Command {
	conn := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "start [mode]",
		Short: "Arm a machine mode and raise its start bit",
		Long: `Clear every command bit across all modes, then set the given mode's start
bit. Only one mode can ever be armed at a time.`,
		Example: `  plclink start
  plclink start clean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeArg(args)
			if err != nil {
				return err
			}
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Start(s.Link, os.Stdout, mode)
		},
	}
	conn.register(cmd)
	return cmd
}

func newPauseCmd() *cobra.Command {
	conn := &connectionFlags{}
	var resume bool
	cmd := &cobra.Command{
		Use:   "pause [mode]",
		Short: "Pause or resume the given mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeArg(args)
			if err != nil {
				return err
			}
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Pause(s.Link, os.Stdout, mode, resume)
		},
	}
	conn.register(cmd)
	cmd.Flags().BoolVar(&resume, "resume", false, "clear the pause bit instead of setting it")
	return cmd
}

func newConfirmCmd() *cobra.Command {
	conn := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "confirm [mode]",
		Short: "Acknowledge a controller prompt for the given mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeArg(args)
			if err != nil {
				return err
			}
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Confirm(s.Link, os.Stdout, mode)
		},
	}
	conn.register(cmd)
	return cmd
}

func newStopCmd() *cobra.Command {
	conn := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "stop [mode]",
		Short: "Stop the given mode",
		Long: `Clear the mode's start, pause, and confirm bits, then raise its stop bit
so the controller sees a clean cancellation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeArg(args)
			if err != nil {
				return err
			}
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Stop(s.Link, os.Stdout, mode)
		},
	}
	conn.register(cmd)
	return cmd
}

func newClearCmd() *cobra.Command {
	conn := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all command bits across every mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.ClearCommands(s.Link, os.Stdout)
		},
	}
	conn.register(cmd)
	return cmd
}
