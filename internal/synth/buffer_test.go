package synth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_CopiesInput(t *testing.T) {
	src := []float32{0.1, 0.2}
	b := NewBuffer(44100, src)
	src[0] = 9

	l, _ := b.Frame(0)
	require.InDelta(t, 0.1, l, 1e-6)

	ch := b.Channel(0)
	ch[1] = 9
	l, _ = b.Frame(1)
	require.InDelta(t, 0.2, l, 1e-6)
}

func TestBuffer_MonoFeedsBothSides(t *testing.T) {
	b := NewBuffer(2, []float32{0.5})
	l, r := b.Frame(0)
	require.InDelta(t, 0.5, l, 1e-6)
	require.InDelta(t, 0.5, r, 1e-6)
}

func TestBuffer_StereoAndBounds(t *testing.T) {
	b := NewBuffer(2, []float32{0.5, 0.5, 0.5}, []float32{-0.25})
	require.Equal(t, 2, b.NumChannels())
	require.Equal(t, 3, b.Len())
	require.InDelta(t, 1.5, b.Duration(), 1e-12)

	l, r := b.Frame(0)
	require.InDelta(t, 0.5, l, 1e-6)
	require.InDelta(t, -0.25, r, 1e-6)

	_, r = b.Frame(2)
	require.Zero(t, r)

	l, r = b.Frame(3)
	require.Zero(t, l)
	require.Zero(t, r)
	require.InDelta(t, 0.5, b.Peak(0), 1e-6)
}

func TestBuffer_ZeroSampleRate(t *testing.T) {
	require.Zero(t, NewBuffer(0, []float32{1}).Duration())
}
