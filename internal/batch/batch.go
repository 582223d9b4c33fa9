// Package batch drives synthesis over a whole script: fixed-size
// batches of concurrent TTS calls, immediate upload of every finished
// segment, and a durable progress checkpoint after each batch so a
// crash never loses paid-for audio.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"castpress/internal/audio"
	"castpress/internal/logging"
	"castpress/internal/objectstore"
	"castpress/internal/podcast"
	"castpress/internal/script"
	"castpress/internal/services"
	"castpress/internal/synthesis"
)

const (
	defaultBatchSize  = 5
	defaultBatchPause = 200 * time.Millisecond
)

// Synthesizer produces raw audio for one dialogue line.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) ([]byte, error)
}

// ObjectStore persists segment audio as it completes.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Checkpointer persists job progress between batches.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, job *podcast.Job) error
}

// Options tunes the executor.
type Options struct {
	BatchSize int
	Pause     time.Duration
	// ByteRate is the provider's nominal bytes-per-second, used only
	// for the cheap duration estimate attached to segment metadata.
	ByteRate int
	Logger   *slog.Logger
	Sleeper  func(time.Duration)
}

// Executor runs the synthesis stage of a job.
type Executor struct {
	synth       Synthesizer
	store       ObjectStore
	checkpoints Checkpointer
	opts        Options
	logger      *slog.Logger
}

// Result carries the ordered outputs of a full synthesis run. Indexes
// align with the input line order regardless of completion order.
type Result struct {
	Audio [][]byte
	URLs  []string
	Meta  []podcast.SegmentMeta
}

// NewExecutor wires an executor from its collaborators.
func NewExecutor(synth Synthesizer, store ObjectStore, checkpoints Checkpointer, opts Options) *Executor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Pause <= 0 {
		opts.Pause = defaultBatchPause
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{synth: synth, store: store, checkpoints: checkpoints, opts: opts, logger: logger}
}

// Run synthesizes every line of the job's script. Lines whose segment
// URL already survives from a previous attempt are fetched from the
// object store instead of re-synthesized; everything else goes to the
// provider. Any line failure aborts the run, but checkpoints written
// for completed batches remain durable.
func (e *Executor) Run(ctx context.Context, job *podcast.Job, lines []script.Line) (*Result, error) {
	total := len(lines)
	if total == 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "script has no lines", nil)
	}

	result := &Result{
		Audio: make([][]byte, total),
		URLs:  make([]string, total),
		Meta:  make([]podcast.SegmentMeta, total),
	}

	resumed := 0
	for batchStart := 0; batchStart < total; batchStart += e.opts.BatchSize {
		batchEnd := batchStart + e.opts.BatchSize
		if batchEnd > total {
			batchEnd = total
		}

		if batchStart > 0 {
			if err := e.pause(ctx); err != nil {
				return nil, err
			}
		}

		n, err := e.runBatch(ctx, job, lines, result, batchStart, batchEnd)
		resumed += n
		if err != nil {
			return nil, err
		}

		e.updateJobProgress(job, result, batchEnd, total)
		if err := e.checkpoints.SaveCheckpoint(ctx, job); err != nil {
			return nil, services.Wrap(services.ErrTransient, "batch", "checkpoint", "persist progress", err)
		}
		e.logger.Info("batch complete",
			logging.String("job_id", job.ID),
			logging.Int("lines_done", batchEnd),
			logging.Int("lines_total", total),
		)
	}

	if resumed > 0 {
		e.logger.Info("reused checkpointed segments",
			logging.String("job_id", job.ID),
			logging.Int("segments", resumed),
		)
	}
	return result, nil
}

// runBatch synthesizes lines [start,end) concurrently and reports how
// many were served from the checkpoint.
func (e *Executor) runBatch(ctx context.Context, job *podcast.Job, lines []script.Line, result *Result, start, end int) (int, error) {
	sem := make(chan struct{}, e.opts.BatchSize)
	errs := make([]error, end-start)
	resumedFlags := make([]bool, end-start)
	var wg sync.WaitGroup

	for i := start; i < end; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resumed, err := e.oneSegment(ctx, job, lines[index], result, index)
			errs[index-start] = err
			resumedFlags[index-start] = resumed
		}(i)
	}
	wg.Wait()

	resumed := 0
	for _, r := range resumedFlags {
		if r {
			resumed++
		}
	}
	for i, err := range errs {
		if err != nil {
			return resumed, services.Wrap(services.ErrProvider, "batch", "synthesize",
				fmt.Sprintf("line %d", start+i), err)
		}
	}
	return resumed, nil
}

func (e *Executor) oneSegment(ctx context.Context, job *podcast.Job, line script.Line, result *Result, index int) (bool, error) {
	key := objectstore.SegmentKey(job.ID, index)

	if url := job.SegmentURLAt(index); url != "" {
		audio, err := e.store.Get(ctx, key)
		if err == nil {
			result.Audio[index] = audio
			result.URLs[index] = url
			result.Meta[index] = e.segmentMeta(line, index, len(audio))
			return true, nil
		}
		e.logger.Warn("checkpointed segment missing, re-synthesizing",
			logging.String("job_id", job.ID),
			logging.Int("line", index),
			logging.Error(err),
		)
	}

	text := line.Text
	if line.Emotion != "" {
		text = "[" + line.Emotion + "] " + text
	}
	voice := job.HostVoiceID
	if line.Speaker == script.SpeakerGuest {
		voice = job.GuestVoiceID
	}

	audio, err := e.synth.Synthesize(ctx, synthesis.Request{
		Text:     text,
		VoiceID:  voice,
		Model:    job.Model,
		Provider: job.Provider,
	})
	if err != nil {
		return false, err
	}

	url, err := e.store.Put(ctx, key, audio)
	if err != nil {
		return false, fmt.Errorf("upload segment %d: %w", index, err)
	}

	result.Audio[index] = audio
	result.URLs[index] = url
	result.Meta[index] = e.segmentMeta(line, index, len(audio))
	return false, nil
}

func (e *Executor) segmentMeta(line script.Line, index, byteLen int) podcast.SegmentMeta {
	return podcast.SegmentMeta{
		Index:            index,
		Speaker:          string(line.Speaker),
		Text:             line.Text,
		EstimatedSeconds: audio.EstimateFromBytes(byteLen, e.opts.ByteRate).Seconds(),
	}
}

func (e *Executor) updateJobProgress(job *podcast.Job, result *Result, done, total int) {
	job.CurrentLine = done
	job.TotalLines = total
	job.Progress = float64(done) / float64(total) * 100
	job.SegmentURLs = append([]string(nil), result.URLs[:done]...)

	// Start offsets accumulate from the byte-length estimates. The
	// assembler recomputes authoritative timing from decoded samples.
	var offset float64
	for i := 0; i < done; i++ {
		result.Meta[i].StartSeconds = offset
		offset += result.Meta[i].EstimatedSeconds
	}
	job.SegmentMeta = append([]podcast.SegmentMeta(nil), result.Meta[:done]...)
}

func (e *Executor) pause(ctx context.Context) error {
	if e.opts.Sleeper != nil {
		e.opts.Sleeper(e.opts.Pause)
		return ctx.Err()
	}
	timer := time.NewTimer(e.opts.Pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
