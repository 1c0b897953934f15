// Package clips cuts a recording of many spoken phrases into addressable
// clips: it finds the pauses between phrases, labels the phrases and plays
// them back by id.
package clips

import (
	"math"
	"time"

	"sfx/internal/synth"
)

// DetectOptions controls silence detection.
type DetectOptions struct {
	// ThresholdDB is the level, in dBFS, below which a frame is silent.
	ThresholdDB float64
	// MinSilence is the shortest quiet run that separates two phrases.
	MinSilence time.Duration
}

// DefaultDetectOptions suits speech recorded with short pauses.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{ThresholdDB: -35, MinSilence: 400 * time.Millisecond}
}

// Segment is one stretch of sound, in seconds.
type Segment struct {
	Start float64
	End   float64
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// Detect returns the sounding segments of buf. A segment runs from the end
// of one qualifying silence to the start of the next; quiet runs shorter
// than MinSilence are part of the segment around them. Sound running to the
// end of the buffer forms a final segment.
func Detect(buf *synth.Buffer, opts DetectOptions) []Segment {
	if buf == nil || buf.Len() == 0 || buf.SampleRate() <= 0 {
		return nil
	}
	threshold := math.Pow(10, opts.ThresholdDB/20)
	sr := float64(buf.SampleRate())
	minFrames := int(math.Ceil(opts.MinSilence.Seconds() * sr))
	if minFrames < 1 {
		minFrames = 1
	}

	var (
		segments   []Segment
		soundStart = 0.0
		quietFrom  = -1
	)
	closeSilence := func(end int) {
		if end-quietFrom >= minFrames {
			silenceStart := float64(quietFrom) / sr
			if silenceStart > soundStart {
				segments = append(segments, Segment{Start: soundStart, End: silenceStart})
			}
			soundStart = float64(end) / sr
		}
		quietFrom = -1
	}

	for i := 0; i < buf.Len(); i++ {
		quiet := buf.Peak(i) < threshold
		switch {
		case quiet && quietFrom < 0:
			quietFrom = i
		case !quiet && quietFrom >= 0:
			closeSilence(i)
		}
	}
	if quietFrom >= 0 {
		closeSilence(buf.Len())
	}
	if end := buf.Duration(); soundStart < end {
		segments = append(segments, Segment{Start: soundStart, End: end})
	}
	return segments
}
