package synth

import "math"

// Voice is one self-terminating source connected to a mixer.
type Voice interface {
	// Span returns the start and stop instants on the context clock.
	Span() (start, stop float64)
	// Render returns the stereo sample at context time t. dt is the
	// length of one frame in seconds.
	Render(t, dt float64) (left, right float64)
}

// Oscillator is a periodic generator with automated frequency and gain.
// It is silent outside [start, stop) and is never restarted.
type Oscillator struct {
	Type      Waveform
	Frequency *Param
	Gain      *Param

	start, stop float64
	phase       float64
}

// NewOscillator returns an oscillator of waveform w at a constant freq with
// unity gain. It does not play until StartAt and StopAt are set.
func NewOscillator(w Waveform, freq float64) *Oscillator {
	return &Oscillator{
		Type:      w,
		Frequency: NewParam(freq),
		Gain:      NewParam(1),
		start:     math.Inf(1),
		stop:      math.Inf(1),
	}
}

// StartAt schedules the oscillator to begin at t.
func (o *Oscillator) StartAt(t float64) { o.start = t }

// StopAt schedules the oscillator to end at t.
func (o *Oscillator) StopAt(t float64) { o.stop = t }

func (o *Oscillator) Span() (float64, float64) { return o.start, o.stop }

func (o *Oscillator) Render(t, dt float64) (float64, float64) {
	s := o.Type.At(o.phase) * o.Gain.ValueAt(t)
	o.phase += o.Frequency.ValueAt(t) * dt
	o.phase -= math.Floor(o.phase)
	return s, s
}

// BufferSource plays a trimmed region of a Buffer once.
type BufferSource struct {
	buf      *Buffer
	when     float64
	offset   float64
	duration float64
}

// NewBufferSource plays buf from when, reading [offset, offset+duration].
// offset is clamped to the buffer; duration <= 0 or past the end of the
// buffer plays the remainder.
func NewBufferSource(buf *Buffer, when, offset, duration float64) *BufferSource {
	total := buf.Duration()
	offset = math.Max(0, math.Min(offset, total))
	remaining := total - offset
	if duration <= 0 || duration > remaining {
		duration = remaining
	}
	return &BufferSource{buf: buf, when: when, offset: offset, duration: duration}
}

// Buffer returns the source buffer.
func (b *BufferSource) Buffer() *Buffer { return b.buf }

// Offset returns the trim start within the buffer, in seconds.
func (b *BufferSource) Offset() float64 { return b.offset }

// Duration returns the trimmed playback length, in seconds.
func (b *BufferSource) Duration() float64 { return b.duration }

func (b *BufferSource) Span() (float64, float64) { return b.when, b.when + b.duration }

func (b *BufferSource) Render(t, _ float64) (float64, float64) {
	pos := (b.offset + t - b.when) * float64(b.buf.SampleRate())
	i := int(pos)
	frac := pos - float64(i)
	l0, r0 := b.buf.Frame(i)
	if frac == 0 {
		return l0, r0
	}
	l1, r1 := b.buf.Frame(i + 1)
	return l0 + (l1-l0)*frac, r0 + (r1-r0)*frac
}
