package podcast

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a synthesis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status is final. Terminal jobs are never
// mutated back into flight; reprocessing requires a new job or ForceReset.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SegmentMeta describes one synthesized dialogue line. StartSeconds is
// assigned by the assembler during the timing pass; the executor records
// only the byte-length based estimate.
type SegmentMeta struct {
	Index            int     `json:"index"`
	Speaker          string  `json:"speaker"`
	Text             string  `json:"text"`
	StartSeconds     float64 `json:"start_seconds"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
}

// Job is the unit of work and its persisted checkpoint.
type Job struct {
	ID              string
	Title           string
	Script          string
	HostVoiceID     string
	GuestVoiceID    string
	Provider        string
	Model           string
	Status          Status
	Progress        float64
	CurrentLine     int
	TotalLines      int
	SegmentURLs     []string
	SegmentMeta     []SegmentMeta
	AudioURL        string
	DurationSeconds float64
	ErrorMessage    string
	Attempts        int
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	UpdatedAt       time.Time
}

// SegmentURLAt returns the checkpointed URL for a line index, or "" when
// the segment has not been uploaded yet. The URL list is sparse while a
// job is in flight.
func (j Job) SegmentURLAt(index int) string {
	if index < 0 || index >= len(j.SegmentURLs) {
		return ""
	}
	return j.SegmentURLs[index]
}

// EpisodeLink records the association between a completed episode artifact
// and one output locale of the originating content.
type EpisodeLink struct {
	JobID     string
	Locale    string
	AudioURL  string
	CreatedAt time.Time
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}
