package testsupport

import (
	"context"
	"testing"

	"castpress/internal/config"
	"castpress/internal/podcast"
	"castpress/internal/script"
)

// MustOpenStore opens a podcast.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *podcast.Store {
	t.Helper()

	store, err := podcast.Open(cfg)
	if err != nil {
		t.Fatalf("podcast.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a pending job for tests using the provided store.
func NewJob(t testing.TB, store *podcast.Store, text string) *podcast.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), podcast.NewJobParams{
		Title:        "Test Episode",
		Script:       text,
		HostVoiceID:  "voice-host",
		GuestVoiceID: "voice-guest",
		TotalLines:   len(script.Parse(text)),
	})
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

// SampleScript is a small well-formed two-speaker dialogue.
const SampleScript = "HOST: [cheerfully] Good morning and welcome back!\n" +
	"GUEST: [thoughtfully] Thanks, it is great to be here.\n" +
	"HOST: Let's dig into today's topic.\n" +
	"GUEST: [excitedly] I can't wait!"
