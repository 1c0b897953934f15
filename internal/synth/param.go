package synth

import (
	"math"
	"sort"
)

type eventKind int

const (
	setValue eventKind = iota
	linearRamp
	exponentialRamp
)

type automation struct {
	kind  eventKind
	value float64
	time  float64
}

// Param is a value automated on the context clock. Events are kept ordered
// by time; a ramp event interpolates from the preceding event's value and
// time up to its own.
type Param struct {
	initial float64
	events  []automation
}

// NewParam returns a Param holding v until the first scheduled event.
func NewParam(v float64) *Param {
	return &Param{initial: v}
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(automation{kind: setValue, value: v, time: t})
}

// LinearRampToValueAtTime ramps linearly to v, arriving at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(automation{kind: linearRamp, value: v, time: t})
}

// ExponentialRampToValueAtTime ramps exponentially to v, arriving at time t.
// When the ramp's endpoints differ in sign or one is zero the previous value
// is held until t.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(automation{kind: exponentialRamp, value: v, time: t})
}

func (p *Param) insert(ev automation) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > ev.time })
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

// ValueAt returns the automated value at time t.
func (p *Param) ValueAt(t float64) float64 {
	v, from := p.initial, 0.0
	for _, ev := range p.events {
		if ev.time <= t {
			v, from = ev.value, ev.time
			continue
		}
		span := ev.time - from
		if span <= 0 {
			return v
		}
		frac := (t - from) / span
		switch ev.kind {
		case linearRamp:
			return v + (ev.value-v)*frac
		case exponentialRamp:
			if v*ev.value <= 0 {
				return v
			}
			return v * math.Pow(ev.value/v, frac)
		}
		return v
	}
	return v
}
