package synth

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

// Mixer sums scheduled voices into one stereo stream. Its running frame
// position is the context clock: time only advances as frames are pulled.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	pos        int64
	voices     []*voiceState
	scratch    [][2]float64
}

type voiceState struct {
	id    string
	v     Voice
	start float64
	stop  float64
}

func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

// Time returns the clock in seconds.
func (m *Mixer) Time() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.pos) / float64(m.sampleRate)
}

// Add schedules v and returns its playback id. Voices whose stop time has
// already passed are dropped on the next frame.
func (m *Mixer) Add(v Voice) string {
	start, stop := v.Span()
	vs := &voiceState{id: uuid.NewString(), v: v, start: start, stop: stop}
	m.mu.Lock()
	m.voices = append(m.voices, vs)
	m.mu.Unlock()
	return vs.id
}

// Active returns the ids of voices that have not yet stopped.
func (m *Mixer) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.voices))
	for i, vs := range m.voices {
		ids[i] = vs.id
	}
	return ids
}

// Remove stops the voice with the given id immediately. It reports
// whether the voice was still scheduled.
func (m *Mixer) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, vs := range m.voices {
		if vs.id == id {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			return true
		}
	}
	return false
}

// Mix renders len(dst) frames into dst and advances the clock.
func (m *Mixer) Mix(dst [][2]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr := float64(m.sampleRate)
	dt := 1 / sr
	for i := range dst {
		t := float64(m.pos) / sr
		var l, r float64
		n := 0
		for _, vs := range m.voices {
			if t >= vs.stop {
				continue
			}
			m.voices[n] = vs
			n++
			if t >= vs.start {
				vl, vr := vs.v.Render(t, dt)
				l += vl
				r += vr
			}
		}
		clear(m.voices[n:])
		m.voices = m.voices[:n]
		dst[i] = [2]float64{l, r}
		m.pos++
	}
}

// Read implements io.Reader for an oto player: float32 LE stereo frames.
// It never reports EOF; an idle mixer produces silence.
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(m.scratch) < frames {
		m.scratch = make([][2]float64, frames)
	}
	buf := m.scratch[:frames]
	m.Mix(buf)
	for i, f := range buf {
		putStereoF32LR(p, i, SoftClip(f[0]), SoftClip(f[1]))
	}
	return frames * 8, nil
}

// putStereoF32LR writes independent left/right samples in [-1,1].
func putStereoF32LR(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}

// SoftClip keeps overlapping voices inside (-1,1) without a hard edge.
// Samples within [-0.5,0.5] pass through unchanged.
func SoftClip(x float64) float64 {
	a := math.Abs(x)
	if a <= 0.5 {
		return x
	}
	return math.Copysign(0.5+0.5*math.Tanh((a-0.5)/0.5), x)
}
