package audio

import (
	"math"

	"castpress/internal/script"
)

// PanGains computes constant-power stereo gains for a pan value in
// [0,1], 0 being hard left and 1 hard right. The cosine/sine pair keeps
// leftGain²+rightGain² at 1 so perceived loudness does not dip mid-field.
func PanGains(pan float64) (left, right float64) {
	pan = math.Max(0, math.Min(1, pan))
	angle := pan * math.Pi / 2
	return math.Cos(angle), math.Sin(angle)
}

// Mix places panned segments onto a stereo timeline. Samples are added
// rather than overwritten so overlapping placements play simultaneously.
func Mix(segments []Segment, placements []Placement, pans map[script.Speaker]float64, sampleRate int) *Buffer {
	out := NewBuffer(timelineFrames(placements, sampleRate))
	for i, seg := range segments {
		leftGain, rightGain := PanGains(pans[seg.Speaker])
		offset := int(placements[i].StartSeconds * float64(sampleRate))
		for j, sample := range seg.Samples {
			idx := offset + j
			if idx < 0 || idx >= out.Frames() {
				continue
			}
			out.Left[idx] += sample * leftGain
			out.Right[idx] += sample * rightGain
		}
	}
	return out
}
