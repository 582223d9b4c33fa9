package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"castpress/internal/audio"
	"castpress/internal/batch"
	"castpress/internal/config"
	"castpress/internal/locales"
	"castpress/internal/logging"
	"castpress/internal/notifications"
	"castpress/internal/objectstore"
	"castpress/internal/personality"
	"castpress/internal/podcast"
	"castpress/internal/script"
	"castpress/internal/services"
)

// ErrQueueEmpty is returned by ProcessNext when there is nothing pending.
var ErrQueueEmpty = errors.New("no pending jobs")

// ObjectStore is the artifact storage surface the processor needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Processor drives one job at a time from claim to terminal state.
type Processor struct {
	cfg           *config.Config
	store         *podcast.Store
	synth         batch.Synthesizer
	objects       ObjectStore
	personalities *personality.Store
	notifier      notifications.Service
	logger        *slog.Logger
	lock          *flock.Flock
}

// New wires a processor from its collaborators.
func New(cfg *config.Config, store *podcast.Store, synth batch.Synthesizer, objects ObjectStore, personalities *personality.Store, notifier notifications.Service, logger *slog.Logger) (*Processor, error) {
	if cfg == nil || store == nil || synth == nil || objects == nil {
		return nil, errors.New("processor requires config, store, synthesizer, and object store")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:           cfg,
		store:         store,
		synth:         synth,
		objects:       objects,
		personalities: personalities,
		notifier:      notifier,
		logger:        logger,
		lock:          flock.New(cfg.LockPath()),
	}, nil
}

// ProcessNext claims and processes the oldest pending job. Returns
// ErrQueueEmpty when nothing is pending.
func (p *Processor) ProcessNext(ctx context.Context) (*podcast.Job, error) {
	next, err := p.store.NextPending(ctx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrQueueEmpty
	}
	return p.ProcessJob(ctx, next.ID)
}

// ProcessQueue drains the pending queue sequentially and sends a summary
// notification when it finishes.
func (p *Processor) ProcessQueue(ctx context.Context) (processed, failed int, err error) {
	started := time.Now()
	for {
		if _, err := p.ProcessNext(ctx); err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				break
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return processed, failed, err
			}
			failed++
			continue
		}
		processed++
	}
	bestEffort(p.logger, "queue notification", func() error {
		return p.notifier.NotifyQueueCompleted(ctx, processed, failed, time.Since(started))
	})
	return processed, failed, nil
}

// ProcessJob runs one full processing invocation for the given job id.
// The single-instance lock guards against a second invocation racing the
// same database; the claim itself is the per-job serialization point.
func (p *Processor) ProcessJob(ctx context.Context, id string) (*podcast.Job, error) {
	locked, err := p.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire processing lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another processing invocation is already running")
	}
	defer func() {
		_ = p.lock.Unlock()
	}()

	if timeout := p.cfg.Workflow.ProcessTimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	job, err := p.store.Claim(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = services.WithJobID(ctx, job.ID)
	logger := p.logger.With(logging.String(logging.FieldJobID, job.ID))
	logger.Info("processing job",
		logging.String("title", job.Title),
		logging.Int("attempt", job.Attempts),
	)

	if err := p.runStages(ctx, logger, job); err != nil {
		message := services.DetailsOf(err).Message
		if markErr := p.store.MarkFailed(ctx, job.ID, message); markErr != nil {
			logger.Error("failed to persist failure state", logging.Error(markErr))
		}
		logger.Error("job failed", logging.Error(err))
		bestEffort(logger, "failure notification", func() error {
			return p.notifier.NotifyJobFailed(ctx, job.Title, err)
		})
		return nil, err
	}

	p.runPostCompletion(ctx, logger, job)
	return job, nil
}

// runStages performs synthesis and assembly. Any error aborts the job;
// the caller owns the state transition.
func (p *Processor) runStages(ctx context.Context, logger *slog.Logger, job *podcast.Job) error {
	lines := script.Parse(job.Script)
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, "parse", "parse script", "script has no parseable lines", nil)
	}
	for _, warning := range script.ValidateEmotions(lines) {
		logger.Warn("emotion tag outside supported vocabulary", logging.String("warning", warning))
	}

	bestEffort(logger, "start notification", func() error {
		return p.notifier.NotifyJobStarted(ctx, job.Title, len(lines))
	})

	executor := batch.NewExecutor(p.synth, p.objects, p.store, batch.Options{
		BatchSize: p.cfg.TTS.BatchSize,
		Pause:     time.Duration(p.cfg.TTS.BatchPauseMS) * time.Millisecond,
		ByteRate:  p.cfg.TTS.SampleRate * 2,
		Logger:    logger,
	})
	result, err := executor.Run(ctx, job, lines)
	if err != nil {
		return err
	}

	episode, duration, err := p.assemble(ctx, result, lines, job)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assemble", "assemble episode", "audio assembly failed", err)
	}

	url, err := p.objects.Put(ctx, objectstore.EpisodeKey(job.ID), episode)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assemble", "upload episode", "episode upload failed", err)
	}

	job.AudioURL = url
	job.DurationSeconds = duration.Seconds()
	if err := p.store.MarkCompleted(ctx, job); err != nil {
		return err
	}
	logger.Info("job completed",
		logging.String("audio_url", url),
		logging.Float64("duration_seconds", duration.Seconds()),
	)
	return nil
}

// assemble decodes every segment buffer and renders the episode WAV.
// Segment metadata picks up the authoritative start offsets from the
// assembler's timing pass, replacing the cheap byte-length estimates.
func (p *Processor) assemble(ctx context.Context, result *batch.Result, lines []script.Line, job *podcast.Job) ([]byte, audio.DecodedDuration, error) {
	sampleRate := p.cfg.TTS.SampleRate
	segments := make([]audio.Segment, len(result.Audio))
	for i, raw := range result.Audio {
		samples, rate, err := audio.DecodeWAVMono(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("decode segment %d: %w", i, err)
		}
		if rate > 0 {
			sampleRate = rate
		}
		segments[i] = audio.Segment{
			Speaker: lines[i].Speaker,
			Text:    lines[i].Text,
			Samples: samples,
		}
	}

	assembler, err := audio.NewAssembler(audio.Options{
		SampleRate:       sampleRate,
		HostPan:          p.cfg.Assembly.HostPan,
		GuestPan:         p.cfg.Assembly.GuestPan,
		CrossfadeSeconds: p.cfg.Assembly.CrossfadeSeconds,
		Intro:            p.loadBumper(ctx, p.cfg.Assembly.IntroKey),
		Outro:            p.loadBumper(ctx, p.cfg.Assembly.OutroKey),
	})
	if err != nil {
		return nil, 0, err
	}

	mixed, placements, err := assembler.Assemble(segments)
	if err != nil {
		return nil, 0, err
	}

	for i := range job.SegmentMeta {
		if i < len(placements) {
			job.SegmentMeta[i].StartSeconds = placements[i].StartSeconds
		}
	}

	// The artifact is longer than the last dialogue end: the mix adds a
	// tail and any intro/outro extends past the fade.
	return audio.EncodeWAV(mixed, sampleRate), mixed.Duration(sampleRate), nil
}

// loadBumper fetches an optional intro/outro clip. A missing or broken
// clip only logs; the episode still assembles without it.
func (p *Processor) loadBumper(ctx context.Context, key string) *audio.Buffer {
	if key == "" {
		return nil
	}
	data, err := p.objects.Get(ctx, key)
	if err != nil {
		p.logger.Warn("bumper clip unavailable", logging.String("key", key), logging.Error(err))
		return nil
	}
	buf, _, err := audio.DecodeWAV(data)
	if err != nil {
		p.logger.Warn("bumper clip undecodable", logging.String("key", key), logging.Error(err))
		return nil
	}
	return buf
}

// runPostCompletion runs the fire-and-forget side effects after the
// terminal state is durably committed.
func (p *Processor) runPostCompletion(ctx context.Context, logger *slog.Logger, job *podcast.Job) {
	for _, locale := range locales.Supported {
		locale := locale
		bestEffort(logger, "link episode "+locale, func() error {
			return p.store.LinkEpisode(ctx, job.ID, locale, job.AudioURL)
		})
	}

	if p.personalities != nil {
		bestEffort(logger, "advance personality", func() error {
			_, err := p.personalities.Advance(ctx, p.cfg.Personality.SourceLocale, job.Script)
			return err
		})
	}

	bestEffort(logger, "completion notification", func() error {
		return p.notifier.NotifyJobCompleted(ctx, job.Title, time.Duration(job.DurationSeconds*float64(time.Second)))
	})
}
