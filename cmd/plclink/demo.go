package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamaralab/plclink/internal/app"
)

func newDemoCmd() *cobra.Command {
	conn := &connectionFlags{}
	opts := app.DemoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive walk-through of a full operation cycle",
		Long: `Collect experiment parameters in a form, write them to the controller,
wait for validation, then start and stop the run on request. Against the
simulator the validation step is answered locally, so the demo runs end to
end with no hardware.`,
		Example: `  PLC_SIM=1 plclink demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Demo(s.Link, os.Stdout, opts)
		},
	}
	conn.register(cmd)
	cmd.Flags().DurationVar(&opts.Poll, "poll", 250*time.Millisecond, "validation poll interval")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "validation wait budget")
	return cmd
}
