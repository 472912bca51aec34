package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tamaralab/plclink/internal/app"
)

func newStatusCmd() *cobra.Command {
	conn := &connectionFlags{}
	var copyReport bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show controller state and the parameters it holds",
		Long: `Read the machine mode, the validation flag, every experiment parameter,
and the command-bit matrix, and render them as one report.`,
		Example: `  # Against the simulator
  PLC_SIM=1 plclink status

  # Against the controller, report copied to the clipboard
  plclink status --ip 192.168.0.10 --copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := conn.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return app.Status(s.Link, os.Stdout, app.StatusOptions{Copy: copyReport})
		},
	}
	conn.register(cmd)
	cmd.Flags().BoolVar(&copyReport, "copy", false, "copy the report to the clipboard")
	return cmd
}
