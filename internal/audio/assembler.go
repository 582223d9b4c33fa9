// Package audio assembles synthesized dialogue segments into a finished
// stereo episode: conversational timing with deliberate overlaps for
// short reactive lines, constant-power speaker panning, optional
// intro/outro crossfades, peak normalization, and 16-bit PCM encoding.
package audio

import (
	"errors"

	"castpress/internal/script"
)

const defaultCrossfadeSeconds = 4.0

// Options configures an Assembler.
type Options struct {
	SampleRate       int
	HostPan          float64
	GuestPan         float64
	CrossfadeSeconds float64
	Intro            *Buffer
	Outro            *Buffer
}

// Assembler renders an ordered segment list into one episode buffer.
type Assembler struct {
	opts Options
	pans map[script.Speaker]float64
}

// NewAssembler validates options and builds an assembler.
func NewAssembler(opts Options) (*Assembler, error) {
	if opts.SampleRate <= 0 {
		return nil, errors.New("assembler: sample rate must be positive")
	}
	if opts.CrossfadeSeconds <= 0 {
		opts.CrossfadeSeconds = defaultCrossfadeSeconds
	}
	return &Assembler{
		opts: opts,
		pans: map[script.Speaker]float64{
			script.SpeakerHost:  opts.HostPan,
			script.SpeakerGuest: opts.GuestPan,
		},
	}, nil
}

// Assemble runs the timing, mix, crossfade, and normalization passes.
// The returned placements describe where each segment landed on the
// dialogue timeline, before any intro shifts it.
func (a *Assembler) Assemble(segments []Segment) (*Buffer, []Placement, error) {
	if len(segments) == 0 {
		return nil, nil, errors.New("assembler: no segments")
	}

	placements := ComputeTiming(segments, a.opts.SampleRate)
	mixed := Mix(segments, placements, a.pans, a.opts.SampleRate)

	fadeFrames := int(a.opts.CrossfadeSeconds * float64(a.opts.SampleRate))
	if a.opts.Intro != nil {
		mixed = Crossfade(a.opts.Intro, mixed, fadeFrames)
	}
	if a.opts.Outro != nil {
		mixed = Crossfade(mixed, a.opts.Outro, fadeFrames)
	}

	Normalize(mixed)
	return mixed, placements, nil
}

// AssembleWAV assembles and encodes in one step.
func (a *Assembler) AssembleWAV(segments []Segment) ([]byte, []Placement, error) {
	buf, placements, err := a.Assemble(segments)
	if err != nil {
		return nil, nil, err
	}
	return EncodeWAV(buf, a.opts.SampleRate), placements, nil
}
