package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"meetbot/internal/botrun"
)

func newJoinCommand(ctx *commandContext) *cobra.Command {
	var (
		startTimeMillis int64
		endTimeMillis   int64
		minRecordTime   int
		botName         string
		combinedURL     string
		audioURL        string
		maxWaitingTime  int
		video           bool
	)

	cmd := &cobra.Command{
		Use:   "join <meeting-link>",
		Short: "Join a meeting and record it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := botrun.Run(runCtx, cfg, logger, botrun.Options{
				MeetingLink:          args[0],
				BotName:              botName,
				MinRecordTime:        time.Duration(minRecordTime) * time.Second,
				MaxWaitingTime:       time.Duration(maxWaitingTime) * time.Second,
				StartTimeUTC:         millisToUTC(startTimeMillis),
				EndTimeUTC:           millisToUTC(endTimeMillis),
				PresignedCombinedURL: combinedURL,
				PresignedAudioURL:    audioURL,
				Video:                video,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s finished: %s\n", result.SessionID, result.Outcome)
			fmt.Fprintf(out, "Artifacts: %s\n", result.OutputDir)
			return nil
		},
	}

	cmd.Flags().Int64Var(&startTimeMillis, "start-time", 0, "Meeting start time (Unix timestamp in milliseconds)")
	cmd.Flags().Int64Var(&endTimeMillis, "end-time", 0, "Meeting end time (Unix timestamp in milliseconds)")
	cmd.Flags().IntVar(&minRecordTime, "min-record-time", 7200, "Minimum recording time in seconds")
	cmd.Flags().StringVar(&botName, "bot-name", "Meet Assistant", "Display name of the bot in the meeting")
	cmd.Flags().StringVar(&combinedURL, "presigned-url-combined", "", "Presigned URL for the combined tar archive upload")
	cmd.Flags().StringVar(&audioURL, "presigned-url-audio", "", "Presigned URL for the audio file upload")
	cmd.Flags().IntVar(&maxWaitingTime, "max-waiting-time", 1800, "Maximum admission wait in seconds")
	cmd.Flags().BoolVar(&video, "video", false, "Record video in addition to audio")

	return cmd
}

func millisToUTC(millis int64) time.Time {
	if millis <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis).UTC()
}
