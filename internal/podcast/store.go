package podcast

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"castpress/internal/config"
)

// ErrAlreadyClaimed is returned when a claim races another invocation or
// targets a job that is not pending.
var ErrAlreadyClaimed = errors.New("job already claimed")

// ErrJobNotFound is returned when an operation targets an id with no
// job record behind it.
var ErrJobNotFound = errors.New("job not found")

// ErrTerminal is returned when a mutation targets a completed or failed job.
var ErrTerminal = errors.New("job is terminal")

// Store manages job and personality persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	// The pragmas ride in the DSN so every pooled connection gets them;
	// a plain Exec would configure only the one connection it ran on,
	// leaving the rest with busy_timeout=0 under concurrent claims.
	dbPath := cfg.DatabasePath()
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying connection so sibling stores (personality)
// can share the same database file and transaction semantics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// NewJobParams captures the fields accepted from the job creation interface.
type NewJobParams struct {
	Script       string
	HostVoiceID  string
	GuestVoiceID string
	Provider     string
	Model        string
	Title        string
	TotalLines   int
}

// NewJob inserts a pending job. Callers must have validated the script
// (non-zero parsed lines) before creating the record.
func (s *Store) NewJob(ctx context.Context, params NewJobParams) (*Job, error) {
	if strings.TrimSpace(params.Script) == "" {
		return nil, errors.New("script is required")
	}
	if params.HostVoiceID == "" || params.GuestVoiceID == "" {
		return nil, errors.New("host and guest voice ids are required")
	}
	if params.TotalLines <= 0 {
		return nil, errors.New("total line count must be positive")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, title, script, host_voice_id, guest_voice_id, provider, model,
            status, progress, current_line, total_lines, attempts, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, 0, ?, ?)`,
		id,
		nullableString(params.Title),
		params.Script,
		params.HostVoiceID,
		params.GuestVoiceID,
		params.Provider,
		nullableString(params.Model),
		StatusPending,
		params.TotalLines,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when no job exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// NextPending returns the oldest pending job, or nil when the queue is empty.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		StatusPending,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	return job, nil
}

// Claim atomically moves a pending job into processing, incrementing its
// attempt counter and stamping started_at. The conditional UPDATE is the
// serialization point: a concurrent claim for the same id observes zero
// affected rows and receives ErrAlreadyClaimed, so no job is billed twice
// against the TTS provider.
func (s *Store) Claim(ctx context.Context, id string) (*Job, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, attempts = attempts + 1, started_at = ?, updated_at = ?, error_message = NULL
         WHERE id = ? AND status = ?`,
		StatusProcessing,
		now,
		now,
		id,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim rows affected: %w", err)
	}
	if affected == 0 {
		existing, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, fmt.Errorf("claim job %s: %w", id, ErrJobNotFound)
		}
		return nil, ErrAlreadyClaimed
	}
	return s.GetByID(ctx, id)
}

// SaveCheckpoint persists mid-job progress: percent, current line, and the
// segment URL/metadata lists accumulated so far. Checkpoints survive a
// later failure so already-uploaded segments remain addressable.
func (s *Store) SaveCheckpoint(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	urlsJSON, err := json.Marshal(job.SegmentURLs)
	if err != nil {
		return fmt.Errorf("marshal segment urls: %w", err)
	}
	metaJSON, err := json.Marshal(job.SegmentMeta)
	if err != nil {
		return fmt.Errorf("marshal segment metadata: %w", err)
	}

	job.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET progress = ?, current_line = ?, segment_urls_json = ?, segment_meta_json = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		job.Progress,
		job.CurrentLine,
		string(urlsJSON),
		string(metaJSON),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// MarkCompleted records the final artifact and moves the job into its
// terminal completed state.
func (s *Store) MarkCompleted(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	urlsJSON, err := json.Marshal(job.SegmentURLs)
	if err != nil {
		return fmt.Errorf("marshal segment urls: %w", err)
	}
	metaJSON, err := json.Marshal(job.SegmentMeta)
	if err != nil {
		return fmt.Errorf("marshal segment metadata: %w", err)
	}

	now := time.Now().UTC()
	job.Status = StatusCompleted
	job.Progress = 100
	job.CompletedAt = &now
	job.UpdatedAt = now

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, progress = 100, current_line = total_lines,
             segment_urls_json = ?, segment_meta_json = ?, audio_url = ?,
             duration_seconds = ?, error_message = NULL, completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCompleted,
		string(urlsJSON),
		string(metaJSON),
		job.AudioURL,
		job.DurationSeconds,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		job.ID,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark completed rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTerminal
	}
	return nil
}

// MarkFailed records the failure message and moves the job into its
// terminal failed state. Checkpoint columns are left untouched.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusFailed,
		strings.TrimSpace(message),
		now,
		now,
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// RetryFailed moves a failed job back to pending for a fresh processing
// invocation. The segment checkpoint is preserved so the next invocation
// can resume from the first missing segment instead of re-billing every
// line against the TTS provider.
func (s *Store) RetryFailed(ctx context.Context, id string) (*Job, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = NULL, completed_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusPending,
		now,
		id,
		StatusFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("retry failed job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("retry rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("retry: job %s is not failed", id)
	}
	return s.GetByID(ctx, id)
}

// ForceReset returns a terminal job to pending and clears its checkpoint,
// artifact, and error fields. This is the only sanctioned way to reprocess
// a terminal job in place.
func (s *Store) ForceReset(ctx context.Context, id string) (*Job, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, progress = 0, current_line = 0,
             segment_urls_json = NULL, segment_meta_json = NULL, audio_url = NULL,
             duration_seconds = NULL, error_message = NULL,
             started_at = NULL, completed_at = NULL, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusPending,
		now,
		id,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("force reset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("force reset rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("force reset: job %s is not terminal", id)
	}
	return s.GetByID(ctx, id)
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusProcessing:
			health.Processing += count
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		}
	}
	return health, nil
}

// LinkEpisode records the artifact↔locale association for a completed job.
// Re-linking the same pair replaces the previous row.
func (s *Store) LinkEpisode(ctx context.Context, jobID, locale, audioURL string) error {
	if jobID == "" || locale == "" || audioURL == "" {
		return errors.New("job id, locale, and audio url are required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO episode_links (job_id, locale, audio_url, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(job_id, locale) DO UPDATE SET audio_url = excluded.audio_url, created_at = excluded.created_at`,
		jobID,
		locale,
		audioURL,
		now,
	)
	if err != nil {
		return fmt.Errorf("link episode: %w", err)
	}
	return nil
}

// EpisodeLinks returns the locale links recorded for a job.
func (s *Store) EpisodeLinks(ctx context.Context, jobID string) ([]EpisodeLink, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, locale, audio_url, created_at FROM episode_links WHERE job_id = ? ORDER BY locale`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("episode links: %w", err)
	}
	defer rows.Close()

	var links []EpisodeLink
	for rows.Next() {
		var link EpisodeLink
		var createdRaw string
		if err := rows.Scan(&link.JobID, &link.Locale, &link.AudioURL, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			link.CreatedAt = created
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Remove deletes a job by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}
