package audio

import (
	"math"
	"testing"

	"castpress/internal/script"
)

func newTestAssembler(t *testing.T, opts Options) *Assembler {
	t.Helper()
	if opts.SampleRate == 0 {
		opts.SampleRate = testRate
	}
	if opts.HostPan == 0 {
		opts.HostPan = 0.35
	}
	if opts.GuestPan == 0 {
		opts.GuestPan = 0.65
	}
	asm, err := NewAssembler(opts)
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return asm
}

func constantSegment(speaker script.Speaker, seconds, level float64) Segment {
	samples := make([]float64, int(seconds*testRate))
	for i := range samples {
		samples[i] = level
	}
	return Segment{Speaker: speaker, Samples: samples}
}

func TestAssembleDurationIsSumPlusTail(t *testing.T) {
	// Both responses are >= 2s, so the speaker change adds no overlap.
	asm := newTestAssembler(t, Options{})
	buf, placements, err := asm.Assemble([]Segment{
		constantSegment(script.SpeakerHost, 2.0, 0.3),
		constantSegment(script.SpeakerGuest, 2.5, 0.3),
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := (2.0 + 2.5 + tailSeconds)
	if got := buf.Duration(testRate).Seconds(); math.Abs(got-want) > 0.01 {
		t.Errorf("duration = %v, want %v", got, want)
	}
	if placements[1].StartSeconds != 2.0 {
		t.Errorf("guest start = %v, want 2.0", placements[1].StartSeconds)
	}
}

func TestAssembleOutputNeverClips(t *testing.T) {
	// Hot overlapping segments; normalization must cap the final peak.
	asm := newTestAssembler(t, Options{})
	buf, _, err := asm.Assemble([]Segment{
		constantSegment(script.SpeakerHost, 2.0, 0.9),
		constantSegment(script.SpeakerGuest, 0.5, 0.9),
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if peak := Peak(buf); peak > 1.0 {
		t.Errorf("peak = %v, want <= 1.0", peak)
	}
}

func TestAssembleWithIntroCrossfade(t *testing.T) {
	intro := NewBuffer(3 * testRate)
	for i := range intro.Left {
		intro.Left[i] = 0.4
		intro.Right[i] = 0.4
	}
	asm := newTestAssembler(t, Options{Intro: intro, CrossfadeSeconds: 1.0})
	buf, _, err := asm.Assemble([]Segment{
		constantSegment(script.SpeakerHost, 2.0, 0.3),
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// intro (3s) + dialogue (2s + 0.5s tail) - 1s fade
	want := 3.0 + 2.5 - 1.0
	if got := buf.Duration(testRate).Seconds(); math.Abs(got-want) > 0.01 {
		t.Errorf("duration = %v, want %v", got, want)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	asm := newTestAssembler(t, Options{})
	if _, _, err := asm.Assemble(nil); err == nil {
		t.Error("expected error for empty segment list")
	}
}

func TestCrossfadeLength(t *testing.T) {
	a := NewBuffer(1000)
	b := NewBuffer(800)
	out := Crossfade(a, b, 200)
	if out.Frames() != 1600 {
		t.Errorf("frames = %d, want 1600", out.Frames())
	}
}

func TestCrossfadeSumsOverlap(t *testing.T) {
	a := NewBuffer(100)
	b := NewBuffer(100)
	for i := range a.Left {
		a.Left[i] = 1.0
		b.Left[i] = 1.0
	}
	out := Crossfade(a, b, 100)
	// fadeOut + fadeIn of equal signals sums to the original level,
	// give or take the linear ramp's endpoints.
	mid := out.Left[len(out.Left)/2]
	if math.Abs(mid-1.0) > 0.05 {
		t.Errorf("mid overlap = %v, want ~1.0", mid)
	}
}
