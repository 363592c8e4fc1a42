package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"meetbot/internal/history"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded bot sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}

			headers := []string{"Started", "Meeting", "Title", "Outcome", "Recorded", "Retries", "Duration"}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.StartedAt.Local().Format("2006-01-02 15:04"),
					rec.MeetingID,
					rec.Title,
					rec.Outcome,
					yesNo(rec.RecordingStarted),
					strconv.Itoa(rec.Retries),
					sessionDuration(rec),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight,
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list (0 for all)")
	return cmd
}

func sessionDuration(rec history.Record) string {
	if rec.StartedAt.IsZero() || rec.EndedAt.IsZero() {
		return "-"
	}
	return rec.EndedAt.Sub(rec.StartedAt).Round(time.Second).String()
}
