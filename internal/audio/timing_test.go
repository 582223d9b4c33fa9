package audio

import (
	"math"
	"testing"

	"castpress/internal/script"
)

const testRate = 1000 // 1ms per sample keeps durations exact

func segmentOf(speaker script.Speaker, seconds float64) Segment {
	return Segment{Speaker: speaker, Samples: make([]float64, int(seconds*testRate))}
}

func TestComputeTimingOverlapThresholds(t *testing.T) {
	cases := []struct {
		name        string
		duration    float64
		wantOverlap float64
	}{
		{"interruption", 0.999, 0.300},
		{"reaction_boundary", 1.000, 0.150},
		{"reaction", 1.999, 0.150},
		{"sequential_boundary", 2.000, 0},
		{"long_answer", 5.000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segments := []Segment{
				segmentOf(script.SpeakerHost, 3.0),
				segmentOf(script.SpeakerGuest, tc.duration),
			}
			placements := ComputeTiming(segments, testRate)
			wantStart := 3.0 - tc.wantOverlap
			if math.Abs(placements[1].StartSeconds-wantStart) > 1e-9 {
				t.Errorf("start = %v, want %v", placements[1].StartSeconds, wantStart)
			}
		})
	}
}

func TestComputeTimingSameSpeakerSequential(t *testing.T) {
	segments := []Segment{
		segmentOf(script.SpeakerHost, 2.0),
		segmentOf(script.SpeakerHost, 0.5), // short but same speaker: no overlap
	}
	placements := ComputeTiming(segments, testRate)
	if placements[1].StartSeconds != 2.0 {
		t.Errorf("start = %v, want 2.0", placements[1].StartSeconds)
	}
}

func TestComputeTimingFirstSegmentNeverOverlaps(t *testing.T) {
	segments := []Segment{segmentOf(script.SpeakerGuest, 0.5)}
	placements := ComputeTiming(segments, testRate)
	if placements[0].StartSeconds != 0 {
		t.Errorf("start = %v, want 0", placements[0].StartSeconds)
	}
}

func TestComputeTimingClampsAtZero(t *testing.T) {
	segments := []Segment{
		segmentOf(script.SpeakerHost, 0.1),
		segmentOf(script.SpeakerGuest, 0.5),
	}
	placements := ComputeTiming(segments, testRate)
	if placements[1].StartSeconds < 0 {
		t.Errorf("start = %v, want >= 0", placements[1].StartSeconds)
	}
}

func TestTimelineIncludesTail(t *testing.T) {
	segments := []Segment{
		segmentOf(script.SpeakerHost, 1.0),
		segmentOf(script.SpeakerGuest, 3.0),
	}
	placements := ComputeTiming(segments, testRate)
	frames := timelineFrames(placements, testRate)
	want := int((1.0 + 3.0 + tailSeconds) * testRate)
	if frames != want {
		t.Errorf("frames = %d, want %d", frames, want)
	}
}
