package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"sfx/internal/synth"
)

// ErrUnsupportedFormat is returned for data that is not WAV, Ogg Vorbis or MP3.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Decoder turns raw asset bytes into a Buffer at sampleRate. A sampleRate
// <= 0 keeps the asset's own rate.
type Decoder interface {
	Decode(data []byte, sampleRate int) (*synth.Buffer, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte, sampleRate int) (*synth.Buffer, error)

func (f DecoderFunc) Decode(data []byte, sampleRate int) (*synth.Buffer, error) {
	return f(data, sampleRate)
}

// BeepDecoder decodes WAV, Ogg Vorbis and MP3 and resamples to the target rate.
type BeepDecoder struct {
	Quality resample.Quality
}

type container int

const (
	unknownContainer container = iota
	wavContainer
	oggContainer
	mp3Container
)

func sniff(data []byte) container {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return wavContainer
	case bytes.HasPrefix(data, []byte("OggS")):
		return oggContainer
	case bytes.HasPrefix(data, []byte("ID3")):
		return mp3Container
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return mp3Container
	}
	return unknownContainer
}

func (d BeepDecoder) open(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	switch sniff(data) {
	case wavContainer:
		return wav.Decode(bytes.NewReader(data))
	case oggContainer:
		return vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	case mp3Container:
		return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	}
	return nil, beep.Format{}, ErrUnsupportedFormat
}

func (d BeepDecoder) Decode(data []byte, sampleRate int) (*synth.Buffer, error) {
	stream, format, err := d.open(data)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	left, right, err := drain(stream)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	if len(left) == 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrUnsupportedFormat)
	}

	rate := int(format.SampleRate)
	if sampleRate > 0 && sampleRate != rate {
		if left, err = d.resample(left, rate, sampleRate); err != nil {
			return nil, err
		}
		if right, err = d.resample(right, rate, sampleRate); err != nil {
			return nil, err
		}
		rate = sampleRate
	}
	if format.NumChannels == 1 {
		return synth.NewBuffer(rate, toFloat32(left)), nil
	}
	return synth.NewBuffer(rate, toFloat32(left), toFloat32(right)), nil
}

func drain(s beep.Streamer) (left, right []float64, err error) {
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, f := range chunk[:n] {
			left = append(left, f[0])
			right = append(right, f[1])
		}
		if !ok {
			break
		}
	}
	return left, right, s.Err()
}

func (d BeepDecoder) resample(in []float64, from, to int) ([]float64, error) {
	r, err := resample.NewForRates(float64(from), float64(to), resample.WithQuality(d.Quality))
	if err != nil {
		return nil, fmt.Errorf("resampling %d Hz to %d Hz: %w", from, to, err)
	}
	// The polyphase filter is causal: flush its tail with zeros and drop
	// the group delay so output sample n lines up with input time n/to.
	up, down := r.Ratio()
	taps := r.TapsPerPhase()
	padded := make([]float64, len(in)+taps+1)
	copy(padded, in)
	out := r.Process(padded)

	delay := int(math.Round(float64(taps*up-1) / float64(2*down)))
	want := int(math.Round(float64(len(in)) * float64(up) / float64(down)))
	if delay > len(out) {
		delay = len(out)
	}
	if delay+want > len(out) {
		want = len(out) - delay
	}
	return out[delay : delay+want], nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
