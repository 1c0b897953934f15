package audio

import (
	"errors"
	"fmt"
	"math"

	"sfx/internal/synth"
)

// ErrUnknownEffect is returned by Effects.Play for names not in the catalog.
var ErrUnknownEffect = errors.New("audio: unknown effect")

// ToneRequest is one PlayTone call.
type ToneRequest struct {
	Frequency float64
	Waveform  synth.Waveform
	Duration  float64
	Offset    float64
}

// Sweep is a percussive tone whose frequency and gain both fall
// exponentially over Duration.
type Sweep struct {
	Waveform    synth.Waveform
	From, To    float64
	Duration    float64
	Peak, Floor float64
}

// EffectDefinition is a named, fixed set of tones with precomputed offsets,
// or a single sweep.
type EffectDefinition struct {
	Name  string
	Tones []ToneRequest
	Sweep *Sweep
}

// Length returns the time from trigger until the last voice stops.
func (d EffectDefinition) Length() float64 {
	var end float64
	for _, t := range d.Tones {
		end = math.Max(end, t.Offset+t.Duration)
	}
	if d.Sweep != nil {
		end = math.Max(end, d.Sweep.Duration)
	}
	return end
}

var catalog = []EffectDefinition{
	{Name: "click", Tones: []ToneRequest{
		{Frequency: 800, Waveform: synth.Sine, Duration: 0.1},
	}},
	{Name: "select", Tones: []ToneRequest{
		{Frequency: 600, Waveform: synth.Triangle, Duration: 0.05},
	}},
	{Name: "correct", Tones: []ToneRequest{
		{Frequency: 523.25, Waveform: synth.Sine, Duration: 0.3},
		{Frequency: 659.25, Waveform: synth.Sine, Duration: 0.4, Offset: 0.1},
	}},
	{Name: "wrong", Tones: []ToneRequest{
		{Frequency: 150, Waveform: synth.Sawtooth, Duration: 0.3},
		{Frequency: 130, Waveform: synth.Sawtooth, Duration: 0.3, Offset: 0.15},
	}},
	{Name: "win", Tones: arpeggio(synth.Square, 0.2, 0.15, 523, 659, 783, 1046)},
	{Name: "pop", Sweep: &Sweep{
		Waveform: synth.Sine,
		From:     400,
		To:       50,
		Duration: 0.1,
		Peak:     0.5,
		Floor:    0.01,
	}},
}

var byName = func() map[string]EffectDefinition {
	m := make(map[string]EffectDefinition, len(catalog))
	for _, d := range catalog {
		m[d.Name] = d
	}
	return m
}()

// arpeggio spaces equal-length notes step seconds apart.
func arpeggio(w synth.Waveform, dur, step float64, freqs ...float64) []ToneRequest {
	tones := make([]ToneRequest, len(freqs))
	for i, f := range freqs {
		tones[i] = ToneRequest{Frequency: f, Waveform: w, Duration: dur, Offset: float64(i) * step}
	}
	return tones
}

// Catalog returns the built-in effects in a fixed order.
func Catalog() []EffectDefinition {
	out := make([]EffectDefinition, len(catalog))
	for i, d := range catalog {
		out[i] = d.clone()
	}
	return out
}

// Lookup returns the effect named name.
func Lookup(name string) (EffectDefinition, bool) {
	d, ok := byName[name]
	if !ok {
		return EffectDefinition{}, false
	}
	return d.clone(), true
}

func (d EffectDefinition) clone() EffectDefinition {
	d.Tones = append([]ToneRequest(nil), d.Tones...)
	if d.Sweep != nil {
		s := *d.Sweep
		d.Sweep = &s
	}
	return d
}

// Effects triggers catalog entries on an engine. Every trigger is gated by
// the engine's mute switch and context state exactly like PlayTone.
type Effects struct {
	engine *Engine
}

func (f *Effects) Click()   { f.trigger(byName["click"]) }
func (f *Effects) Select()  { f.trigger(byName["select"]) }
func (f *Effects) Correct() { f.trigger(byName["correct"]) }
func (f *Effects) Wrong()   { f.trigger(byName["wrong"]) }
func (f *Effects) Win()     { f.trigger(byName["win"]) }
func (f *Effects) Pop()     { f.trigger(byName["pop"]) }

// Play triggers the effect named name.
func (f *Effects) Play(name string) error {
	d, ok := byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	f.trigger(d)
	return nil
}

func (f *Effects) trigger(d EffectDefinition) {
	for _, t := range d.Tones {
		f.engine.PlayTone(t.Frequency, t.Waveform, t.Duration, t.Offset)
	}
	if d.Sweep != nil {
		f.engine.playSweep(*d.Sweep)
	}
}
