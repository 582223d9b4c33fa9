package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"castpress/internal/config"
	"castpress/internal/podcast"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show one job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *podcast.Store) error {
				job, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Job "+job.ID, colorize) {
					fmt.Fprintln(out, line)
				}

				title := job.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintln(out, renderStatusLine("Title", statusInfo, title, colorize))
				fmt.Fprintln(out, renderStatusLine("Status", statusKindForJob(job), string(job.Status), colorize))
				fmt.Fprintln(out, renderStatusLine("Progress", statusInfo,
					fmt.Sprintf("%.0f%% (line %d/%d)", job.Progress, job.CurrentLine, job.TotalLines), colorize))
				fmt.Fprintln(out, renderStatusLine("Attempts", statusInfo, fmt.Sprintf("%d", job.Attempts), colorize))

				switch job.Status {
				case podcast.StatusCompleted:
					fmt.Fprintln(out, renderStatusLine("Episode", statusOK, job.AudioURL, colorize))
					fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, fmt.Sprintf("%.1fs", job.DurationSeconds), colorize))
				case podcast.StatusFailed:
					fmt.Fprintln(out, renderStatusLine("Error", statusError, job.ErrorMessage, colorize))
					if len(job.SegmentURLs) > 0 {
						fmt.Fprintln(out, renderStatusLine("Checkpoint", statusWarn,
							fmt.Sprintf("%d segment(s) preserved", len(job.SegmentURLs)), colorize))
					}
				}

				links, err := store.EpisodeLinks(cmd.Context(), job.ID)
				if err == nil && len(links) > 0 {
					locales := make([]string, 0, len(links))
					for _, link := range links {
						locales = append(locales, link.Locale)
					}
					fmt.Fprintln(out, renderStatusLine("Locales", statusOK, strings.Join(locales, ", "), colorize))
				}
				return nil
			})
		},
	}
}

func statusKindForJob(job *podcast.Job) statusKind {
	switch job.Status {
	case podcast.StatusCompleted:
		return statusOK
	case podcast.StatusFailed:
		return statusError
	case podcast.StatusProcessing:
		return statusWarn
	default:
		return statusInfo
	}
}
