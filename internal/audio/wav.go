package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	wavHeaderSize  = 44
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
)

// EncodeWAV renders a stereo buffer as an interleaved 16-bit PCM WAV
// file. Samples are clamped to [-1,1] before quantization.
func EncodeWAV(buf *Buffer, sampleRate int) []byte {
	frames := buf.Frames()
	dataSize := frames * 2 * bytesPerSample
	out := make([]byte, wavHeaderSize+dataSize)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataSize))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], 2) // stereo
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*2*bytesPerSample))
	binary.LittleEndian.PutUint16(out[32:34], 2*bytesPerSample)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	offset := wavHeaderSize
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(out[offset:], uint16(quantize(buf.Left[i])))
		binary.LittleEndian.PutUint16(out[offset+2:], uint16(quantize(buf.Right[i])))
		offset += 4
	}
	return out
}

func quantize(sample float64) int16 {
	clamped := math.Max(-1, math.Min(1, sample))
	return int16(math.Round(clamped * math.MaxInt16))
}

// DecodeWAV parses a 16-bit PCM WAV file into a stereo buffer. Mono
// input is duplicated into both channels.
func DecodeWAV(data []byte) (*Buffer, int, error) {
	samples, channels, rate, err := decodePCM(data)
	if err != nil {
		return nil, 0, err
	}
	frames := len(samples) / channels
	buf := NewBuffer(frames)
	switch channels {
	case 1:
		copy(buf.Left, samples)
		copy(buf.Right, samples)
	case 2:
		for i := 0; i < frames; i++ {
			buf.Left[i] = samples[2*i]
			buf.Right[i] = samples[2*i+1]
		}
	default:
		return nil, 0, fmt.Errorf("decode wav: unsupported channel count %d", channels)
	}
	return buf, rate, nil
}

// DecodeWAVMono parses a 16-bit PCM WAV file into a mono sample slice,
// averaging channels for stereo input.
func DecodeWAVMono(data []byte) ([]float64, int, error) {
	samples, channels, rate, err := decodePCM(data)
	if err != nil {
		return nil, 0, err
	}
	switch channels {
	case 1:
		return samples, rate, nil
	case 2:
		frames := len(samples) / 2
		mono := make([]float64, frames)
		for i := 0; i < frames; i++ {
			mono[i] = (samples[2*i] + samples[2*i+1]) / 2
		}
		return mono, rate, nil
	default:
		return nil, 0, fmt.Errorf("decode wav: unsupported channel count %d", channels)
	}
}

func decodePCM(data []byte) (samples []float64, channels, sampleRate int, err error) {
	if len(data) < wavHeaderSize {
		return nil, 0, 0, errors.New("decode wav: truncated header")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("decode wav: not a RIFF/WAVE file")
	}

	// Walk the chunk list; fmt and data may be separated by other chunks.
	var (
		format   uint16
		bits     uint16
		haveFmt  bool
		pcmBytes []byte
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, 0, errors.New("decode wav: short fmt chunk")
			}
			format = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			pcmBytes = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++ // chunk bodies are word-aligned
		}
	}

	if !haveFmt {
		return nil, 0, 0, errors.New("decode wav: missing fmt chunk")
	}
	if pcmBytes == nil {
		return nil, 0, 0, errors.New("decode wav: missing data chunk")
	}
	if format != 1 || bits != bitsPerSample {
		return nil, 0, 0, fmt.Errorf("decode wav: unsupported encoding (format %d, %d bits)", format, bits)
	}
	if channels < 1 {
		return nil, 0, 0, errors.New("decode wav: invalid channel count")
	}

	count := len(pcmBytes) / bytesPerSample
	samples = make([]float64, count)
	for i := 0; i < count; i++ {
		raw := int16(binary.LittleEndian.Uint16(pcmBytes[i*bytesPerSample:]))
		samples[i] = float64(raw) / math.MaxInt16
	}
	return samples, channels, sampleRate, nil
}
