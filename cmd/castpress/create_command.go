package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"castpress/internal/config"
	"castpress/internal/podcast"
	"castpress/internal/script"
	"castpress/internal/synthesis"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath string
		title      string
		hostVoice  string
		guestVoice string
		provider   string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Queue a new episode synthesis job",
		Long:  "Parses a dialogue script, validates it, and inserts a pending job into the queue. Pass the script with --script or on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readScript(scriptPath)
			if err != nil {
				return err
			}

			lines := script.Parse(raw)
			if len(lines) == 0 {
				return fmt.Errorf("script has no parseable dialogue lines (expected \"HOST: ...\" / \"GUEST: ...\")")
			}

			out := cmd.OutOrStdout()
			for _, warning := range script.ValidateEmotions(lines) {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}

			return ctx.withStore(func(cfg *config.Config, store *podcast.Store) error {
				if provider == "" {
					provider = cfg.TTS.Provider
				}
				if _, err := synthesis.LookupProvider(provider); err != nil {
					return err
				}
				if hostVoice == "" || guestVoice == "" {
					return fmt.Errorf("both --host-voice and --guest-voice are required")
				}

				job, err := store.NewJob(cmd.Context(), podcast.NewJobParams{
					Script:       raw,
					HostVoiceID:  hostVoice,
					GuestVoiceID: guestVoice,
					Provider:     provider,
					Model:        model,
					Title:        title,
					TotalLines:   len(lines),
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Created job %s\n", job.ID)
				fmt.Fprintf(out, "Lines: %d, estimated duration: %s\n", len(lines), script.EstimateDuration(lines).Round(time.Second))
				fmt.Fprintf(out, "Run `castpress process %s` to synthesize it.\n", job.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "f", "", "Path to the dialogue script (defaults to stdin)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Episode title")
	cmd.Flags().StringVar(&hostVoice, "host-voice", "", "TTS voice id for HOST lines")
	cmd.Flags().StringVar(&guestVoice, "guest-voice", "", "TTS voice id for GUEST lines")
	cmd.Flags().StringVar(&provider, "provider", "", "TTS provider (defaults to configured provider)")
	cmd.Flags().StringVar(&model, "model", "", "TTS model override")
	return cmd
}

func readScript(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read script from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}
