package audio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sfx/internal/synth"
)

type scheduled struct {
	freq     float64
	waveform synth.Waveform
	start    float64
	stop     float64
}

func schedule(t *testing.T, oc *OfflineContext) []scheduled {
	t.Helper()
	var out []scheduled
	for _, o := range oscillators(t, oc) {
		start, stop := o.Span()
		out = append(out, scheduled{
			freq:     o.Frequency.ValueAt(start),
			waveform: o.Type,
			start:    start,
			stop:     stop,
		})
	}
	return out
}

func requireSchedule(t *testing.T, want, got []scheduled) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i].freq, got[i].freq, 1e-9, "tone %d freq", i)
		require.Equal(t, want[i].waveform, got[i].waveform, "tone %d waveform", i)
		require.InDelta(t, want[i].start, got[i].start, 1e-9, "tone %d start", i)
		require.InDelta(t, want[i].stop, got[i].stop, 1e-9, "tone %d stop", i)
	}
}

func TestEffects_Schedules(t *testing.T) {
	tests := []struct {
		name    string
		trigger func(*Effects)
		want    []scheduled
	}{
		{
			name:    "click",
			trigger: (*Effects).Click,
			want:    []scheduled{{800, synth.Sine, 0, 0.1}},
		},
		{
			name:    "select",
			trigger: (*Effects).Select,
			want:    []scheduled{{600, synth.Triangle, 0, 0.05}},
		},
		{
			name:    "correct",
			trigger: (*Effects).Correct,
			want: []scheduled{
				{523.25, synth.Sine, 0, 0.3},
				{659.25, synth.Sine, 0.1, 0.5},
			},
		},
		{
			name:    "wrong",
			trigger: (*Effects).Wrong,
			want: []scheduled{
				{150, synth.Sawtooth, 0, 0.3},
				{130, synth.Sawtooth, 0.15, 0.45},
			},
		},
		{
			name:    "win",
			trigger: (*Effects).Win,
			want: []scheduled{
				{523, synth.Square, 0, 0.2},
				{659, synth.Square, 0.15, 0.35},
				{783, synth.Square, 0.30, 0.50},
				{1046, synth.Square, 0.45, 0.65},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, oc := newOfflineEngine(t)
			tt.trigger(e.SFX())
			requireSchedule(t, tt.want, schedule(t, oc))
		})
	}
}

func TestEffects_Pop(t *testing.T) {
	e, oc := newOfflineEngine(t)
	e.SFX().Pop()

	oscs := oscillators(t, oc)
	require.Len(t, oscs, 1)
	o := oscs[0]
	start, stop := o.Span()
	require.InDelta(t, 0.1, stop-start, 1e-9)
	require.Equal(t, synth.Sine, o.Type)
	require.InDelta(t, 400, o.Frequency.ValueAt(start), 1e-9)
	require.InDelta(t, 50, o.Frequency.ValueAt(stop), 1e-9)
	require.InDelta(t, 0.5, o.Gain.ValueAt(start), 1e-9)
	require.InDelta(t, 0.01, o.Gain.ValueAt(stop), 1e-9)

	mid := o.Frequency.ValueAt(start + 0.05)
	require.InDelta(t, 141.42, mid, 0.01) // geometric mean of 400 and 50
}

func TestEffects_ClickAfterToggleIsSilent(t *testing.T) {
	e, oc := newOfflineEngine(t)
	require.False(t, e.ToggleSound())
	e.SFX().Click()
	require.Empty(t, oc.Voices())

	require.True(t, e.ToggleSound())
	e.SFX().Click()
	require.Len(t, oc.Voices(), 1)
}

func TestEffects_RapidRetriggerOverlaps(t *testing.T) {
	e, oc := newOfflineEngine(t)
	for i := 0; i < 5; i++ {
		e.SFX().Correct()
	}
	require.Len(t, oc.Voices(), 10)
}

func TestEffects_PlayByName(t *testing.T) {
	e, oc := newOfflineEngine(t)
	require.NoError(t, e.SFX().Play("wrong"))
	require.Len(t, oc.Voices(), 2)

	err := e.SFX().Play("fanfare")
	require.ErrorIs(t, err, ErrUnknownEffect)
	require.Len(t, oc.Voices(), 2)
}

func TestCatalog(t *testing.T) {
	names := make([]string, 0)
	for _, d := range Catalog() {
		names = append(names, d.Name)
	}
	require.Equal(t, []string{"click", "select", "correct", "wrong", "win", "pop"}, names)

	win, ok := Lookup("win")
	require.True(t, ok)
	require.InDelta(t, 0.65, win.Length(), 1e-9)

	pop, ok := Lookup("pop")
	require.True(t, ok)
	require.InDelta(t, 0.1, pop.Length(), 1e-9)

	_, ok = Lookup("nope")
	require.False(t, ok)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	d, _ := Lookup("click")
	d.Tones[0].Frequency = 1
	d.Name = "changed"

	again, _ := Lookup("click")
	require.Equal(t, "click", again.Name)
	require.InDelta(t, 800, again.Tones[0].Frequency, 1e-9)

	pop, _ := Lookup("pop")
	pop.Sweep.From = 1
	again, _ = Lookup("pop")
	require.InDelta(t, 400, again.Sweep.From, 1e-9)
}
