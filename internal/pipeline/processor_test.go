package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"castpress/internal/audio"
	"castpress/internal/notifications"
	"castpress/internal/personality"
	"castpress/internal/podcast"
	"castpress/internal/synthesis"
	"castpress/internal/testsupport"
)

const testSampleRate = 8000

func toneWAV(seconds float64) []byte {
	frames := int(seconds * testSampleRate)
	buf := audio.NewBuffer(frames)
	for i := range buf.Left {
		buf.Left[i] = 0.2
		buf.Right[i] = 0.2
	}
	return audio.EncodeWAV(buf, testSampleRate)
}

type fakeSynth struct {
	mu       sync.Mutex
	calls    int
	garbage  bool
	err      error
	failWhen func(text string) bool
}

func (f *fakeSynth) Synthesize(_ context.Context, req synthesis.Request) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failWhen != nil && f.failWhen(req.Text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if fail {
		return nil, errors.New("provider rejected line")
	}
	if f.garbage {
		return []byte("definitely not audio"), nil
	}
	return toneWAV(2.5), nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "nats-obj://test/" + key, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func newProcessor(t *testing.T, synth *fakeSynth) (*Processor, *podcast.Store, *memStore) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithSampleRate(testSampleRate))
	store := testsupport.MustOpenStore(t, cfg)
	objects := newMemStore()
	personalities := personality.NewStore(store.DB())

	proc, err := New(cfg, store, synth, objects, personalities, notifications.NewService(cfg), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return proc, store, objects
}

func TestProcessJobHappyPath(t *testing.T) {
	synth := &fakeSynth{}
	proc, store, objects := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	done, err := proc.ProcessJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if done.AudioURL == "" {
		t.Error("audio url not set")
	}
	if done.DurationSeconds <= 0 {
		t.Errorf("duration = %v", done.DurationSeconds)
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != podcast.StatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if stored.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", stored.Attempts)
	}
	if stored.Progress != 100 {
		t.Errorf("progress = %v", stored.Progress)
	}
	if len(stored.SegmentURLs) != 4 {
		t.Errorf("segment urls = %d, want 4", len(stored.SegmentURLs))
	}

	// The episode artifact really is in the object store.
	key := strings.TrimPrefix(stored.AudioURL, "nats-obj://test/")
	if _, err := objects.Get(context.Background(), key); err != nil {
		t.Errorf("episode artifact missing: %v", err)
	}

	// Post-success side effects ran.
	links, err := store.EpisodeLinks(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("EpisodeLinks: %v", err)
	}
	if len(links) != 4 {
		t.Errorf("episode links = %d, want 4 locales", len(links))
	}
}

func TestPersistedDurationMatchesArtifact(t *testing.T) {
	synth := &fakeSynth{}
	proc, store, objects := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	done, err := proc.ProcessJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}

	key := strings.TrimPrefix(done.AudioURL, "nats-obj://test/")
	data, err := objects.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("episode artifact missing: %v", err)
	}
	buf, rate, err := audio.DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}

	decoded := buf.Duration(rate).Seconds()
	if diff := done.DurationSeconds - decoded; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("persisted duration %.6fs, artifact decodes to %.6fs", done.DurationSeconds, decoded)
	}

	// Four sequential 2.5s lines plus the mix tail.
	want := 4*2.5 + 0.5
	if diff := done.DurationSeconds - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("duration = %.6fs, want %.6fs", done.DurationSeconds, want)
	}
}

func TestProcessJobPersonalityAdvances(t *testing.T) {
	synth := &fakeSynth{}
	proc, store, _ := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	if _, err := proc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}

	state, err := personality.NewStore(store.DB()).Get(context.Background(), "en")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.EpisodeCount != 1 {
		t.Errorf("episode count = %d, want 1", state.EpisodeCount)
	}
}

func TestProcessJobSynthesisFailure(t *testing.T) {
	synth := &fakeSynth{err: errors.New("provider exploded")}
	proc, store, _ := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	if _, err := proc.ProcessJob(context.Background(), job.ID); err == nil {
		t.Fatal("expected error")
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != podcast.StatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Error("error message not set")
	}
	if stored.AudioURL != "" {
		t.Errorf("audio url = %q, want empty for failed job", stored.AudioURL)
	}
}

func TestProcessJobAssemblyFailureKeepsCheckpoint(t *testing.T) {
	synth := &fakeSynth{garbage: true}
	proc, store, _ := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	if _, err := proc.ProcessJob(context.Background(), job.ID); err == nil {
		t.Fatal("expected error")
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != podcast.StatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Error("error message not set")
	}
	// Segments uploaded before assembly failed remain addressable.
	if len(stored.SegmentURLs) != 4 {
		t.Errorf("checkpointed segment urls = %d, want 4", len(stored.SegmentURLs))
	}
}

func TestProcessJobOnlyClaimsPending(t *testing.T) {
	synth := &fakeSynth{}
	proc, store, _ := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, testsupport.SampleScript)

	if _, err := proc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	// The job is terminal now; a second invocation must not re-claim it.
	if _, err := proc.ProcessJob(context.Background(), job.ID); !errors.Is(err, podcast.ErrAlreadyClaimed) {
		t.Errorf("err = %v, want ErrAlreadyClaimed", err)
	}
}

func TestProcessNextEmptyQueue(t *testing.T) {
	proc, _, _ := newProcessor(t, &fakeSynth{})
	if _, err := proc.ProcessNext(context.Background()); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("err = %v, want ErrQueueEmpty", err)
	}
}

func TestProcessQueueDrainsPending(t *testing.T) {
	synth := &fakeSynth{}
	proc, store, _ := newProcessor(t, synth)
	testsupport.NewJob(t, store, testsupport.SampleScript)
	testsupport.NewJob(t, store, testsupport.SampleScript)

	processed, failed, err := proc.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("ProcessQueue: %v", err)
	}
	if processed != 2 || failed != 0 {
		t.Errorf("processed = %d, failed = %d", processed, failed)
	}
}

func TestRetryFailedResumesFromCheckpoint(t *testing.T) {
	// Eight lines, batch size five: the first batch checkpoints before a
	// failure in the second batch fails the job.
	var lines []string
	for i := 0; i < 8; i++ {
		speaker := "HOST"
		if i%2 == 1 {
			speaker = "GUEST"
		}
		text := "A perfectly ordinary answer that runs on for a while."
		if i == 6 {
			text = "poison line"
		}
		lines = append(lines, speaker+": "+text)
	}
	longScript := strings.Join(lines, "\n")

	synth := &fakeSynth{failWhen: func(text string) bool {
		return strings.Contains(text, "poison")
	}}
	proc, store, _ := newProcessor(t, synth)
	job := testsupport.NewJob(t, store, longScript)

	if _, err := proc.ProcessJob(context.Background(), job.ID); err == nil {
		t.Fatal("expected first run to fail")
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got := len(stored.SegmentURLs); got != 5 {
		t.Fatalf("checkpointed urls = %d, want 5", got)
	}

	if _, err := store.RetryFailed(context.Background(), job.ID); err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	synth.failWhen = nil
	synth.calls = 0
	if _, err := proc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("ProcessJob retry: %v", err)
	}

	// Checkpointed segments were fetched, not re-billed.
	if synth.calls != 3 {
		t.Errorf("provider calls on retry = %d, want 3", synth.calls)
	}

	stored, err = store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != podcast.StatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if stored.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", stored.Attempts)
	}
}
