// Package synth holds the sample-level building blocks of the sound engine:
// waveforms, automated parameters, voices and the mixer that sums them.
package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the shape produced by an Oscillator.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

var waveformNames = [...]string{
	Sine:     "sine",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
	Square:   "square",
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform maps a waveform name ("sine", "triangle", "sawtooth", "square")
// to its Waveform.
func ParseWaveform(s string) (Waveform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

// At returns the waveform value in [-1,1] at phase in [0,1).
func (w Waveform) At(phase float64) float64 {
	switch w {
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	case Sawtooth:
		return 2 * (phase - 0.5)
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
