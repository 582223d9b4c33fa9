package podcast

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const jobColumns = "id, title, script, host_voice_id, guest_voice_id, provider, model, status, progress, current_line, total_lines, segment_urls_json, segment_meta_json, audio_url, duration_seconds, error_message, attempts, created_at, started_at, completed_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		title        sql.NullString
		script       string
		hostVoiceID  string
		guestVoiceID string
		provider     string
		model        sql.NullString
		statusStr    string
		progress     sql.NullFloat64
		currentLine  sql.NullInt64
		totalLines   sql.NullInt64
		urlsJSON     sql.NullString
		metaJSON     sql.NullString
		audioURL     sql.NullString
		duration     sql.NullFloat64
		errorMessage sql.NullString
		attempts     sql.NullInt64
		createdRaw   sql.NullString
		startedRaw   sql.NullString
		completedRaw sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&script,
		&hostVoiceID,
		&guestVoiceID,
		&provider,
		&model,
		&statusStr,
		&progress,
		&currentLine,
		&totalLines,
		&urlsJSON,
		&metaJSON,
		&audioURL,
		&duration,
		&errorMessage,
		&attempts,
		&createdRaw,
		&startedRaw,
		&completedRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		Title:           title.String,
		Script:          script,
		HostVoiceID:     hostVoiceID,
		GuestVoiceID:    guestVoiceID,
		Provider:        provider,
		Model:           model.String,
		Status:          Status(statusStr),
		Progress:        progress.Float64,
		CurrentLine:     int(currentLine.Int64),
		TotalLines:      int(totalLines.Int64),
		AudioURL:        audioURL.String,
		DurationSeconds: duration.Float64,
		ErrorMessage:    errorMessage.String,
		Attempts:        int(attempts.Int64),
	}

	if urlsJSON.Valid && urlsJSON.String != "" {
		if err := json.Unmarshal([]byte(urlsJSON.String), &job.SegmentURLs); err != nil {
			return nil, err
		}
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &job.SegmentMeta); err != nil {
			return nil, err
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
