package audio

import (
	"math"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	in := &Buffer{
		Left:  []float64{0, 0.5, -0.5, 1.0, -1.0},
		Right: []float64{0.25, -0.25, 0.75, -0.75, 0},
	}
	encoded := EncodeWAV(in, 44100)

	out, rate, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 44100 {
		t.Errorf("rate = %d", rate)
	}
	if out.Frames() != in.Frames() {
		t.Fatalf("frames = %d, want %d", out.Frames(), in.Frames())
	}
	const tol = 1.0 / math.MaxInt16 * 2
	for i := range in.Left {
		if math.Abs(out.Left[i]-in.Left[i]) > tol {
			t.Errorf("left[%d] = %v, want %v", i, out.Left[i], in.Left[i])
		}
		if math.Abs(out.Right[i]-in.Right[i]) > tol {
			t.Errorf("right[%d] = %v, want %v", i, out.Right[i], in.Right[i])
		}
	}
}

func TestEncodeWAVClampsOutOfRange(t *testing.T) {
	in := &Buffer{Left: []float64{2.5}, Right: []float64{-3.0}}
	out, _, err := DecodeWAV(EncodeWAV(in, 44100))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if out.Left[0] > 1.0001 || out.Right[0] < -1.0001 {
		t.Errorf("samples not clamped: %v %v", out.Left[0], out.Right[0])
	}
}

func TestDecodeWAVMonoAverages(t *testing.T) {
	in := &Buffer{Left: []float64{0.4}, Right: []float64{0.8}}
	mono, rate, err := DecodeWAVMono(EncodeWAV(in, 22050))
	if err != nil {
		t.Fatalf("DecodeWAVMono: %v", err)
	}
	if rate != 22050 {
		t.Errorf("rate = %d", rate)
	}
	if math.Abs(mono[0]-0.6) > 1e-3 {
		t.Errorf("mono[0] = %v, want 0.6", mono[0])
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("not audio at all, sorry")); err == nil {
		t.Error("expected error for short input")
	}
	junk := make([]byte, 128)
	copy(junk, "RIFFxxxxJUNK")
	if _, _, err := DecodeWAV(junk); err == nil {
		t.Error("expected error for non-WAVE data")
	}
}
