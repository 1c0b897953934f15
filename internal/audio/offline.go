package audio

import (
	"sync"

	"sfx/internal/synth"
)

// OfflineContext is a context whose clock moves only when frames are
// rendered. It serves headless rendering and, with WithRecording, lets
// callers inspect every voice the engine scheduled.
type OfflineContext struct {
	mixer  *synth.Mixer
	record bool

	mu        sync.Mutex
	state     State
	connected []synth.Voice
}

// OfflineOption configures an OfflineContext.
type OfflineOption func(*OfflineContext)

// WithRecording keeps every connected voice for Voices. The record grows
// with each voice, so leave it off for long-running use.
func WithRecording() OfflineOption {
	return func(c *OfflineContext) { c.record = true }
}

// NewOfflineContext returns a running context at sampleRate.
func NewOfflineContext(sampleRate int, opts ...OfflineOption) *OfflineContext {
	c := &OfflineContext{mixer: synth.NewMixer(sampleRate), state: StateRunning}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OfflineContext) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *OfflineContext) Resume() error  { return c.transition(StateRunning) }
func (c *OfflineContext) Suspend() error { return c.transition(StateSuspended) }

func (c *OfflineContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
	return nil
}

func (c *OfflineContext) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrContextClosed
	}
	c.state = to
	return nil
}

func (c *OfflineContext) CurrentTime() float64 { return c.mixer.Time() }
func (c *OfflineContext) SampleRate() int      { return c.mixer.SampleRate() }

func (c *OfflineContext) Connect(v synth.Voice) string {
	if c.record {
		c.mu.Lock()
		c.connected = append(c.connected, v)
		c.mu.Unlock()
	}
	return c.mixer.Add(v)
}

func (c *OfflineContext) Stop(id string) bool { return c.mixer.Remove(id) }
func (c *OfflineContext) Active() []string    { return c.mixer.Active() }

// Voices returns every voice connected so far, in connection order. It is
// empty unless the context was created WithRecording.
func (c *OfflineContext) Voices() []synth.Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]synth.Voice(nil), c.connected...)
}

// Render advances the clock by seconds and returns the mixed frames. A
// context that is not running renders nothing.
func (c *OfflineContext) Render(seconds float64) [][2]float64 {
	if c.State() != StateRunning || seconds <= 0 {
		return nil
	}
	frames := make([][2]float64, int(seconds*float64(c.mixer.SampleRate())))
	c.mixer.Mix(frames)
	return frames
}
