package audio

// Crossfade joins two stereo buffers with a linear-gain fade: the tail
// of a fades out while the head of b fades in, summed sample-by-sample.
// fadeFrames is clipped to the shorter of the two inputs.
func Crossfade(a, b *Buffer, fadeFrames int) *Buffer {
	if a.Frames() == 0 {
		return b
	}
	if b.Frames() == 0 {
		return a
	}
	if fadeFrames > a.Frames() {
		fadeFrames = a.Frames()
	}
	if fadeFrames > b.Frames() {
		fadeFrames = b.Frames()
	}
	if fadeFrames < 0 {
		fadeFrames = 0
	}

	out := NewBuffer(a.Frames() + b.Frames() - fadeFrames)
	overlapStart := a.Frames() - fadeFrames

	copy(out.Left, a.Left[:overlapStart])
	copy(out.Right, a.Right[:overlapStart])

	for i := 0; i < fadeFrames; i++ {
		fadeIn := float64(i+1) / float64(fadeFrames)
		fadeOut := 1 - fadeIn
		out.Left[overlapStart+i] = a.Left[overlapStart+i]*fadeOut + b.Left[i]*fadeIn
		out.Right[overlapStart+i] = a.Right[overlapStart+i]*fadeOut + b.Right[i]*fadeIn
	}

	copy(out.Left[a.Frames():], b.Left[fadeFrames:])
	copy(out.Right[a.Frames():], b.Right[fadeFrames:])
	return out
}
