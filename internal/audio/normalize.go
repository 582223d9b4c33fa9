package audio

import "math"

const normalizeTarget = 0.95

// Normalize scales the buffer down to a 0.95 peak if any sample would
// clip. A buffer that already fits in [-1,1] is left untouched. Returns
// the scale factor applied (1 when untouched).
func Normalize(buf *Buffer) float64 {
	peak := Peak(buf)
	if peak <= 1.0 {
		return 1
	}
	scale := normalizeTarget / peak
	for i := range buf.Left {
		buf.Left[i] *= scale
		buf.Right[i] *= scale
	}
	return scale
}

// Peak returns the largest absolute sample value across both channels.
func Peak(buf *Buffer) float64 {
	var peak float64
	for i := range buf.Left {
		if v := math.Abs(buf.Left[i]); v > peak {
			peak = v
		}
		if v := math.Abs(buf.Right[i]); v > peak {
			peak = v
		}
	}
	return peak
}
