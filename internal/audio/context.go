// Package audio is the sound-effect engine: it owns the audio context,
// the mute gate, tone synthesis, the effect catalog and decoded-asset
// loading and playback.
package audio

import (
	"errors"

	"sfx/internal/synth"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
)

var (
	// ErrUnavailable reports that the platform offers no audio output.
	ErrUnavailable = errors.New("audio: output unavailable")
	// ErrContextClosed reports use of a context after Close.
	ErrContextClosed = errors.New("audio: context closed")
)

// State is the lifecycle of the engine's audio context.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Context is the processing pipeline every voice connects into. Its clock
// only advances while it is running.
type Context interface {
	State() State
	Resume() error
	Suspend() error
	Close() error
	// CurrentTime returns the context clock in seconds.
	CurrentTime() float64
	SampleRate() int
	// Connect schedules v for output according to its Span and returns
	// its playback id.
	Connect(v synth.Voice) string
	// Stop silences the voice with the given id at once.
	Stop(id string) bool
	// Active lists the ids of voices that have not finished.
	Active() []string
}

// ContextFactory creates the engine's context on first initialization.
type ContextFactory func() (Context, error)

// DeviceFactory opens the platform audio device at sampleRate.
func DeviceFactory(sampleRate int) ContextFactory {
	return func() (Context, error) {
		return NewDeviceContext(sampleRate)
	}
}

// OfflineFactory creates a manually clocked OfflineContext.
func OfflineFactory(sampleRate int) ContextFactory {
	return func() (Context, error) {
		return NewOfflineContext(sampleRate), nil
	}
}
