package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamaralab/plclink/internal/app"
)

func newWriteCmd() *cobra.Command {
	conn := &connectionFlags{}
	opts := app.WriteOptions{}

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write an experiment payload from a YAML file",
		Long: `Load a payload file and write it to the controller in one verified
transaction. If any value fails read-back verification, every touched cell is
rolled back to its neutral value before the command reports the failure.

By default only the operation mode and the experiment parameters are written;
--full also writes the machine-mode tag from the file.`,
		Example: `  plclink write --params run.yaml
  plclink write --params run.yaml --full --wait --timeout 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Write(s.Link, os.Stdout, opts)
		},
	}
	conn.register(cmd)
	cmd.Flags().StringVar(&opts.ParamsFile, "params", "", "payload YAML file (required)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "also write the machine-mode tag")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "wait for the controller to validate")
	cmd.Flags().DurationVar(&opts.Poll, "poll", 500*time.Millisecond, "validation poll interval")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "validation wait budget")
	cmd.MarkFlagRequired("params")
	return cmd
}
