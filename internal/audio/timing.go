package audio

const (
	// Speaker-change segments shorter than these thresholds are pulled
	// backward to overlap the previous segment's tail, which reads as an
	// interruption or a backchannel reaction instead of turn-taking with
	// a hard seam.
	interruptionMaxSeconds = 1.0
	reactionMaxSeconds     = 2.0

	interruptionOverlapSeconds = 0.300
	reactionOverlapSeconds     = 0.150

	// Silence appended after the final segment.
	tailSeconds = 0.5
)

// Placement fixes one segment's position on the output timeline.
type Placement struct {
	StartSeconds float64
	EndSeconds   float64
}

// ComputeTiming walks segments in order and assigns each a start time.
// A segment following a speaker change is classified by its own decoded
// duration: under 1s it overlaps the previous segment by 300ms, under
// 2s by 150ms, otherwise it starts at the previous end. Same-speaker
// segments are strictly sequential.
func ComputeTiming(segments []Segment, sampleRate int) []Placement {
	placements := make([]Placement, len(segments))
	var currentEnd float64
	for i, seg := range segments {
		duration := seg.Duration(sampleRate).Seconds()
		start := currentEnd
		if i > 0 && seg.Speaker != segments[i-1].Speaker {
			switch {
			case duration < interruptionMaxSeconds:
				start -= interruptionOverlapSeconds
			case duration < reactionMaxSeconds:
				start -= reactionOverlapSeconds
			}
			if start < 0 {
				start = 0
			}
		}
		placements[i] = Placement{StartSeconds: start, EndSeconds: start + duration}
		if placements[i].EndSeconds > currentEnd {
			currentEnd = placements[i].EndSeconds
		}
	}
	return placements
}

// timelineFrames returns the output buffer length for a set of
// placements, including the fixed tail.
func timelineFrames(placements []Placement, sampleRate int) int {
	var latest float64
	for _, p := range placements {
		if p.EndSeconds > latest {
			latest = p.EndSeconds
		}
	}
	return int((latest + tailSeconds) * float64(sampleRate))
}
