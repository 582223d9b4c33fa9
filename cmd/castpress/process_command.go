package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"castpress/internal/config"
	"castpress/internal/logging"
	"castpress/internal/notifications"
	"castpress/internal/objectstore"
	"castpress/internal/personality"
	"castpress/internal/pipeline"
	"castpress/internal/podcast"
	"castpress/internal/synthesis"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "process [job-id]",
		Short: "Run the synthesis pipeline",
		Long:  "Claims and processes a job end to end: synthesis, assembly, upload, and post-completion side effects. With --all, drains the whole pending queue.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all cannot be combined with a job id")
			}

			return ctx.withStore(func(cfg *config.Config, store *podcast.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}

				objects, err := objectstore.Connect(cfg.ObjectStore.URL, cfg.ObjectStore.Bucket)
				if err != nil {
					return err
				}
				defer objects.Close()

				synth := synthesis.NewClient(synthesis.Config{
					APIKey:         cfg.TTS.APIKey,
					BaseURL:        cfg.TTS.BaseURL,
					TimeoutSeconds: cfg.TTS.TimeoutSeconds,
				}, synthesis.WithLogger(logging.NewComponentLogger(logger, "synthesis")))

				proc, err := pipeline.New(cfg, store, synth, objects,
					personality.NewStore(store.DB()),
					notifications.NewService(cfg),
					logging.NewComponentLogger(logger, "pipeline"))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if all {
					processed, failed, err := proc.ProcessQueue(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Queue drained: %d processed, %d failed\n", processed, failed)
					if failed > 0 {
						return fmt.Errorf("%d job(s) failed", failed)
					}
					return nil
				}

				var job *podcast.Job
				if len(args) == 1 {
					job, err = proc.ProcessJob(cmd.Context(), args[0])
				} else {
					job, err = proc.ProcessNext(cmd.Context())
				}
				if errors.Is(err, pipeline.ErrQueueEmpty) {
					fmt.Fprintln(out, "No pending jobs.")
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Job %s completed\n", job.ID)
				fmt.Fprintf(out, "Episode: %s (%.1fs)\n", job.AudioURL, job.DurationSeconds)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Process every pending job")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc := notifications.NewService(cfg)
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent (noop if no ntfy topic is configured).")
			return nil
		},
	}
}
