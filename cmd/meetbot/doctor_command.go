package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"meetbot/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var video bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external dependencies and platform support",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckPlatform(video))

			headers := []string{"Dependency", "Command", "Available", "Detail"}
			rows := make([][]string, 0, len(statuses))
			healthy := true
			for _, status := range statuses {
				if !status.Available && !status.Optional {
					healthy = false
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					status.Detail,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignLeft,
			}))
			if !healthy {
				return fmt.Errorf("missing required dependencies")
			}
			fmt.Fprintln(out, "All dependencies available")
			return nil
		},
	}

	cmd.Flags().BoolVar(&video, "video", false, "Also check video capture support")
	return cmd
}
