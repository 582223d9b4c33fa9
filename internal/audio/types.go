package audio

import "castpress/internal/script"

// DecodedDuration is a duration in seconds derived from an actual
// decoded sample count. This is the ground truth the timing pass uses.
type DecodedDuration float64

// EstimatedDuration is a duration in seconds guessed from encoded byte
// length at the provider's nominal bitrate. Cheap but approximate; it
// exists as a distinct type so it cannot slip into timing computations
// that need DecodedDuration.
type EstimatedDuration float64

// Seconds returns the duration as a plain float.
func (d DecodedDuration) Seconds() float64 { return float64(d) }

// Seconds returns the estimate as a plain float.
func (d EstimatedDuration) Seconds() float64 { return float64(d) }

// DurationFromSamples computes the decoded duration of n mono samples.
func DurationFromSamples(n, sampleRate int) DecodedDuration {
	if sampleRate <= 0 {
		return 0
	}
	return DecodedDuration(float64(n) / float64(sampleRate))
}

// EstimateFromBytes guesses a clip's duration from its encoded size.
// byteRate is the provider's nominal bytes-per-second for the format.
func EstimateFromBytes(n, byteRate int) EstimatedDuration {
	if byteRate <= 0 {
		return 0
	}
	return EstimatedDuration(float64(n) / float64(byteRate))
}

// Segment is the decoded audio for exactly one dialogue line.
type Segment struct {
	Speaker script.Speaker
	Text    string
	Samples []float64
}

// Duration returns the segment's decoded duration at the given rate.
func (s Segment) Duration(sampleRate int) DecodedDuration {
	return DurationFromSamples(len(s.Samples), sampleRate)
}

// Buffer is a non-interleaved stereo sample buffer. Both channels are
// always the same length.
type Buffer struct {
	Left  []float64
	Right []float64
}

// NewBuffer allocates a silent stereo buffer of n frames.
func NewBuffer(n int) *Buffer {
	return &Buffer{Left: make([]float64, n), Right: make([]float64, n)}
}

// Frames returns the buffer length in frames.
func (b *Buffer) Frames() int {
	if b == nil {
		return 0
	}
	return len(b.Left)
}

// Duration returns the buffer's play time at the given rate.
func (b *Buffer) Duration(sampleRate int) DecodedDuration {
	return DurationFromSamples(b.Frames(), sampleRate)
}
