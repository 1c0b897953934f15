package audio

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sfx/internal/log"
	"sfx/internal/synth"
)

// LoadAudioBuffer fetches url and decodes it at the context's sample rate,
// creating the context first if none exists. Every failure is logged and
// yields nil; callers treat nil as "asset unavailable". Results are not
// cached.
func (e *Engine) LoadAudioBuffer(ctx context.Context, url string) *synth.Buffer {
	ctx, span := e.tracer.Start(ctx, "audio.LoadAudioBuffer",
		trace.WithAttributes(attribute.String("audio.url", url)))
	defer span.End()

	buf, err := e.loadAudioBuffer(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error(log.CatLoader, "Error loading audio buffer", "url", url, "error", err)
		return nil
	}
	span.SetAttributes(
		attribute.Float64("audio.duration", buf.Duration()),
		attribute.Int("audio.channels", buf.NumChannels()),
	)
	log.Debug(log.CatLoader, "Loaded audio buffer", "url", url, "duration", buf.Duration())
	return buf
}

// LoadAudioBufferAsync runs LoadAudioBuffer in the background. The channel
// receives exactly one value, possibly nil.
func (e *Engine) LoadAudioBufferAsync(ctx context.Context, url string) <-chan *synth.Buffer {
	out := make(chan *synth.Buffer, 1)
	go func() {
		out <- e.LoadAudioBuffer(ctx, url)
	}()
	return out
}

func (e *Engine) loadAudioBuffer(ctx context.Context, url string) (*synth.Buffer, error) {
	c := e.ensureContext()
	if c == nil {
		return nil, ErrUnavailable
	}
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	buf, err := e.decoder.Decode(data, c.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return buf, nil
}
