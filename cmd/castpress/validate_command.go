package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"castpress/internal/script"
)

func newValidateCommand() *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Check a dialogue script without creating a job",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readScript(scriptPath)
			if err != nil {
				return err
			}

			lines := script.Parse(raw)
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				return fmt.Errorf("script has no parseable dialogue lines")
			}

			hosts, guests := 0, 0
			for _, line := range lines {
				if line.Speaker == script.SpeakerHost {
					hosts++
				} else {
					guests++
				}
			}

			fmt.Fprintf(out, "Parsed %d line(s): %d HOST, %d GUEST\n", len(lines), hosts, guests)
			fmt.Fprintf(out, "Estimated duration: %s\n", script.EstimateDuration(lines).Round(time.Second))
			warnings := script.ValidateEmotions(lines)
			for _, warning := range warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if len(warnings) == 0 {
				fmt.Fprintln(out, "All emotion tags are in the supported vocabulary.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "f", "", "Path to the dialogue script (defaults to stdin)")
	return cmd
}
