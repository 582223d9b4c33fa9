package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"castpress/internal/config"
	"castpress/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobCompleted(context.Background(), "Example", time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "job started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobStarted(context.Background(), "Morning Tech Brief", 24)
			},
			expectTitle:   "Castpress - Synthesis Started",
			expectMessage: "Started synthesizing: Morning Tech Brief (24 lines)",
			expectTags:    "castpress,job,started",
		},
		{
			name: "job completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobCompleted(context.Background(), "Morning Tech Brief", 8*time.Minute+12*time.Second)
			},
			expectTitle:    "Castpress - Episode Ready",
			expectMessage:  "Episode ready: Morning Tech Brief (8m12s of audio)",
			expectTags:     "castpress,job,completed",
			expectPriority: "high",
		},
		{
			name: "job failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobFailed(context.Background(), "Morning Tech Brief", errors.New("provider timeout"))
			},
			expectTitle:    "Castpress - Job Failed",
			expectMessage:  "Synthesis failed for Morning Tech Brief: provider timeout",
			expectTags:     "castpress,job,failed",
			expectPriority: "high",
		},
		{
			name: "queue completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyQueueCompleted(context.Background(), 3, 0, 95*time.Second)
			},
			expectTitle:   "Castpress - Queue Complete",
			expectMessage: "Queue processing complete: 3 jobs processed in 1m35s",
			expectTags:    "castpress,queue,completed",
		},
		{
			name: "queue completed with errors",
			notify: func(svc notifications.Service) error {
				return svc.NotifyQueueCompleted(context.Background(), 2, 1, time.Minute)
			},
			expectTitle:   "Castpress - Queue Complete (with errors)",
			expectMessage: "Queue processing complete: 2 succeeded, 1 failed in 1m0s",
			expectTags:    "castpress,queue,completed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
