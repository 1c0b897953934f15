//go:build !audio_stub

package audio

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"sfx/internal/log"
	"sfx/internal/synth"
)

// deviceContext plays through the platform device. One oto player pulls
// from a mixer for the lifetime of the context; the mixer's frame position
// is the context clock.
type deviceContext struct {
	ctx   *oto.Context
	ready chan struct{}
	mixer *synth.Mixer

	mu        sync.Mutex
	player    oto.Player
	suspended bool
	closed    bool
}

// NewDeviceContext opens the audio device. oto allows a single device
// context per process.
func NewDeviceContext(sampleRate int) (Context, error) {
	ctx, ready, err := oto.NewContext(sampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	d := &deviceContext{ctx: ctx, ready: ready, mixer: synth.NewMixer(sampleRate)}
	// Browsers keep the context blocked until a user gesture, so wait off
	// the caller's goroutine.
	go d.startPlayer()
	return d, nil
}

func (d *deviceContext) startPlayer() {
	<-d.ready
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.player = d.ctx.NewPlayer(d.mixer)
	d.player.Play()
	log.Debug(log.CatAudio, "Audio device ready", "sampleRate", d.mixer.SampleRate())
}

func (d *deviceContext) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed || d.ctx.Err() != nil:
		return StateClosed
	case d.player == nil || d.suspended:
		return StateSuspended
	}
	return StateRunning
}

func (d *deviceContext) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrContextClosed
	}
	if err := d.ctx.Resume(); err != nil {
		return fmt.Errorf("resuming device: %w", err)
	}
	d.suspended = false
	return nil
}

func (d *deviceContext) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrContextClosed
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspending device: %w", err)
	}
	d.suspended = true
	return nil
}

func (d *deviceContext) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.player == nil {
		return nil
	}
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	return nil
}

func (d *deviceContext) CurrentTime() float64 { return d.mixer.Time() }
func (d *deviceContext) SampleRate() int      { return d.mixer.SampleRate() }

func (d *deviceContext) Connect(v synth.Voice) string {
	id := d.mixer.Add(v)
	start, stop := v.Span()
	log.Debug(log.CatAudio, "Voice connected", "id", id, "start", start, "stop", stop)
	return id
}

func (d *deviceContext) Stop(id string) bool { return d.mixer.Remove(id) }
func (d *deviceContext) Active() []string    { return d.mixer.Active() }
