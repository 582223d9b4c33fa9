package audio

import (
	"math"
	"testing"
)

func TestNormalizeNoOpBelowPeak(t *testing.T) {
	buf := &Buffer{Left: []float64{0.2, -0.9}, Right: []float64{0.5, 0.1}}
	if scale := Normalize(buf); scale != 1 {
		t.Errorf("scale = %v, want 1", scale)
	}
	if buf.Left[1] != -0.9 {
		t.Errorf("buffer modified: %v", buf.Left)
	}
}

func TestNormalizeScalesClipping(t *testing.T) {
	buf := &Buffer{Left: []float64{2.0, -0.5}, Right: []float64{1.0, 0.25}}
	scale := Normalize(buf)
	if math.Abs(scale-0.95/2.0) > 1e-12 {
		t.Errorf("scale = %v, want %v", scale, 0.95/2.0)
	}
	if got := Peak(buf); math.Abs(got-0.95) > 1e-12 {
		t.Errorf("peak after normalize = %v, want 0.95", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	buf := &Buffer{Left: []float64{3.0}, Right: []float64{-1.5}}
	Normalize(buf)
	first := Peak(buf)
	Normalize(buf)
	if got := Peak(buf); got != first {
		t.Errorf("second normalize changed peak: %v -> %v", first, got)
	}
	if math.Abs(first-0.95) > 1e-12 {
		t.Errorf("peak = %v, want 0.95", first)
	}
}
