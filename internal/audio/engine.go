package audio

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/resample"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sfx/internal/log"
	"sfx/internal/synth"
)

// Envelope levels for tones built by PlayTone.
const (
	tonePeakGain  = 0.1
	toneFloorGain = 0.001
)

// Engine is the one audio context and mute gate of a running application.
// Construct it once and pass it to every consumer.
type Engine struct {
	newContext ContextFactory
	fetcher    Fetcher
	decoder    Decoder
	tracer     trace.Tracer

	mu          sync.Mutex
	ctx         Context
	unavailable bool

	soundOn atomic.Bool
	subMu   sync.Mutex
	subs    map[int]func(bool)
	nextSub int

	sfx *Effects
}

// Option configures an Engine.
type Option func(*Engine)

// WithContextFactory replaces the device context, e.g. with OfflineFactory.
func WithContextFactory(f ContextFactory) Option {
	return func(e *Engine) { e.newContext = f }
}

func WithFetcher(f Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

func WithDecoder(d Decoder) Option {
	return func(e *Engine) { e.decoder = d }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithSoundOn sets the initial mute state. Sound is on by default.
func WithSoundOn(on bool) Option {
	return func(e *Engine) { e.soundOn.Store(on) }
}

// New returns an engine with no context yet; Init creates it.
func New(opts ...Option) *Engine {
	e := &Engine{
		newContext: DeviceFactory(SampleRate),
		fetcher:    NewHTTPFetcher(),
		decoder:    BeepDecoder{Quality: resample.QualityBalanced},
		tracer:     otel.Tracer("sfx/internal/audio"),
		subs:       make(map[int]func(bool)),
	}
	e.soundOn.Store(true)
	for _, opt := range opts {
		opt(e)
	}
	e.sfx = &Effects{engine: e}
	return e
}

// Init creates the context on first use and resumes it when suspended.
// It is safe to call on every user interaction. When the platform has no
// audio output the failure is logged once and the engine stays silent.
func (e *Engine) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked()
}

func (e *Engine) initLocked() {
	if e.ctx == nil {
		if e.unavailable {
			return
		}
		c, err := e.newContext()
		if err != nil {
			e.unavailable = true
			log.Warn(log.CatAudio, "Audio unavailable, continuing without sound", "error", err)
			return
		}
		e.ctx = c
		log.Debug(log.CatAudio, "Audio context created", "sampleRate", c.SampleRate(), "state", c.State())
	}
	if e.ctx.State() == StateSuspended {
		if err := e.ctx.Resume(); err != nil {
			log.Debug(log.CatAudio, "Resume failed", "error", err)
		}
	}
}

// State reports the context state; StateUninitialized before Init or when
// audio is unavailable.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return StateUninitialized
	}
	return e.ctx.State()
}

// Suspend pauses the context clock, e.g. while the host is in background.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return nil
	}
	return e.ctx.Suspend()
}

// Close releases the context. A closed engine is never reinitialized.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		e.unavailable = true
		return nil
	}
	return e.ctx.Close()
}

// ensureContext returns the context, creating it when absent.
func (e *Engine) ensureContext() Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		e.initLocked()
	}
	return e.ctx
}

// audible returns the context when a new sound would be heard, or nil.
func (e *Engine) audible() Context {
	if !e.soundOn.Load() {
		return nil
	}
	e.mu.Lock()
	c := e.ctx
	e.mu.Unlock()
	if c == nil || c.State() != StateRunning {
		return nil
	}
	return c
}

// PlayTone schedules one tone of waveform w at freq Hz, starting
// startOffset seconds from now and lasting duration seconds. Its gain
// decays exponentially from 0.1 to 0.001 over the tone. It does nothing
// while muted or when the context is not running.
func (e *Engine) PlayTone(freq float64, w synth.Waveform, duration, startOffset float64) {
	c := e.audible()
	if c == nil {
		return
	}
	start := c.CurrentTime() + startOffset
	stop := start + duration

	osc := synth.NewOscillator(w, freq)
	osc.Gain.SetValueAtTime(tonePeakGain, start)
	osc.Gain.ExponentialRampToValueAtTime(toneFloorGain, stop)
	osc.StartAt(start)
	osc.StopAt(stop)
	c.Connect(osc)
}

// playSweep schedules an immediate pitch sweep with its own envelope.
func (e *Engine) playSweep(s Sweep) {
	c := e.audible()
	if c == nil {
		return
	}
	now := c.CurrentTime()
	stop := now + s.Duration

	osc := synth.NewOscillator(s.Waveform, s.From)
	osc.Frequency.SetValueAtTime(s.From, now)
	osc.Frequency.ExponentialRampToValueAtTime(s.To, stop)
	osc.Gain.SetValueAtTime(s.Peak, now)
	osc.Gain.ExponentialRampToValueAtTime(s.Floor, stop)
	osc.StartAt(now)
	osc.StopAt(stop)
	c.Connect(osc)
}

// PlaybackRequest trims a buffer for playback. Duration <= 0 plays the
// remainder of the buffer after Offset.
type PlaybackRequest struct {
	Buffer   *synth.Buffer
	Offset   float64
	Duration float64
}

// PlayBuffer plays buf immediately from startOffset for duration seconds
// (the remainder when duration <= 0). Nil buffers, mute and a non-running
// context make it a no-op.
func (e *Engine) PlayBuffer(buf *synth.Buffer, startOffset, duration float64) {
	e.Play(PlaybackRequest{Buffer: buf, Offset: startOffset, Duration: duration})
}

// Play plays r.Buffer immediately and returns its playback id, or "" when
// nothing was scheduled. See PlayBuffer.
func (e *Engine) Play(r PlaybackRequest) string {
	if r.Buffer == nil {
		return ""
	}
	c := e.audible()
	if c == nil {
		return ""
	}
	return c.Connect(synth.NewBufferSource(r.Buffer, c.CurrentTime(), r.Offset, r.Duration))
}

// Stop silences the playback with the given id. It reports whether the
// playback was still scheduled. Stopping ignores the mute switch.
func (e *Engine) Stop(id string) bool {
	e.mu.Lock()
	c := e.ctx
	e.mu.Unlock()
	if c == nil || id == "" {
		return false
	}
	return c.Stop(id)
}

// Playing lists the ids of playbacks and tones that have not finished.
func (e *Engine) Playing() []string {
	e.mu.Lock()
	c := e.ctx
	e.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Active()
}

// SFX returns the effect catalog bound to this engine.
func (e *Engine) SFX() *Effects { return e.sfx }
