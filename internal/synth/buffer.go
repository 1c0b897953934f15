package synth

import "math"

// Buffer is fully decoded audio ready for playback. It is never mutated
// after construction and may be shared by any number of BufferSources.
type Buffer struct {
	sampleRate int
	channels   [][]float32
	frames     int
}

// NewBuffer copies the given channels into a new Buffer. Channels shorter
// than the longest one are treated as silent past their end.
func NewBuffer(sampleRate int, channels ...[]float32) *Buffer {
	b := &Buffer{sampleRate: sampleRate, channels: make([][]float32, len(channels))}
	for i, ch := range channels {
		b.channels[i] = append([]float32(nil), ch...)
		if len(ch) > b.frames {
			b.frames = len(ch)
		}
	}
	return b
}

func (b *Buffer) SampleRate() int  { return b.sampleRate }
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Len returns the length in frames.
func (b *Buffer) Len() int { return b.frames }

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(b.frames) / float64(b.sampleRate)
}

// Channel returns a copy of channel i.
func (b *Buffer) Channel(i int) []float32 {
	return append([]float32(nil), b.channels[i]...)
}

// Frame returns the stereo frame at index i. Mono buffers feed both sides;
// indexes outside the buffer are silent.
func (b *Buffer) Frame(i int) (float64, float64) {
	if i < 0 || i >= b.frames || len(b.channels) == 0 {
		return 0, 0
	}
	l := sampleAt(b.channels[0], i)
	if len(b.channels) == 1 {
		return l, l
	}
	return l, sampleAt(b.channels[1], i)
}

// Peak returns the largest absolute sample across channels at frame i.
func (b *Buffer) Peak(i int) float64 {
	var peak float64
	for _, ch := range b.channels {
		peak = math.Max(peak, math.Abs(sampleAt(ch, i)))
	}
	return peak
}

func sampleAt(ch []float32, i int) float64 {
	if i < 0 || i >= len(ch) {
		return 0
	}
	return float64(ch[i])
}
