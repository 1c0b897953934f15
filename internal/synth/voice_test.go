package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOscillator_UnscheduledNeverStarts(t *testing.T) {
	o := NewOscillator(Sine, 440)
	start, stop := o.Span()
	require.True(t, math.IsInf(start, 1))
	require.True(t, math.IsInf(stop, 1))
}

func TestOscillator_FollowsGainEnvelope(t *testing.T) {
	o := NewOscillator(Square, 100)
	o.Gain.SetValueAtTime(0.1, 0)
	o.StartAt(0)
	o.StopAt(1)

	l, r := o.Render(0, 1.0/44100)
	require.InDelta(t, 0.1, l, 1e-12)
	require.Equal(t, l, r)
}

func TestOscillator_FrequencyAdvancesPhase(t *testing.T) {
	const sr = 8000
	o := NewOscillator(Square, 1000)
	o.StartAt(0)
	o.StopAt(1)

	// 8 frames per period: 4 high then 4 low
	var got []float64
	for i := 0; i < 8; i++ {
		l, _ := o.Render(float64(i)/sr, 1.0/sr)
		got = append(got, l)
	}
	require.Equal(t, []float64{1, 1, 1, 1, -1, -1, -1, -1}, got)
}

func TestBufferSource_Trim(t *testing.T) {
	buf := NewBuffer(10, make([]float32, 20)) // 2s

	tests := []struct {
		name             string
		offset, duration float64
		wantOffset       float64
		wantDuration     float64
	}{
		{"full", 0, 0, 0, 2},
		{"offset only", 0.5, 0, 0.5, 1.5},
		{"offset and duration", 0.5, 1, 0.5, 1},
		{"duration past end", 1.5, 5, 1.5, 0.5},
		{"offset past end", 3, 1, 2, 0},
		{"negative offset", -1, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewBufferSource(buf, 4, tt.offset, tt.duration)
			require.InDelta(t, tt.wantOffset, src.Offset(), 1e-12)
			require.InDelta(t, tt.wantDuration, src.Duration(), 1e-12)
			start, stop := src.Span()
			require.Equal(t, 4.0, start)
			require.InDelta(t, 4+tt.wantDuration, stop, 1e-12)
		})
	}
}

func TestBufferSource_ReadsFromOffset(t *testing.T) {
	buf := NewBuffer(4, []float32{0, 0.25, 0.5, 0.75, 1})
	src := NewBufferSource(buf, 10, 0.5, 0)

	l, r := src.Render(10, 0.25)
	require.InDelta(t, 0.5, l, 1e-6)
	require.InDelta(t, 0.5, r, 1e-6)

	// halfway between frames 2 and 3
	l, _ = src.Render(10.125, 0.25)
	require.InDelta(t, 0.625, l, 1e-6)
}
