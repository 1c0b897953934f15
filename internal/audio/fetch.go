package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ErrTooLarge is returned when an asset exceeds the fetcher's byte limit.
var ErrTooLarge = errors.New("audio: asset too large")

// Fetcher retrieves raw asset bytes.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// HTTPFetcher reads http(s) URLs over the network and file URLs or plain
// paths from disk.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBytes     = 64 << 20
)

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: defaultFetchTimeout},
		MaxBytes: defaultMaxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return f.get(ctx, u.String())
	case u.Scheme == "file":
		return f.readFile(u.Path)
	case u.Scheme == "" || len(u.Scheme) == 1: // bare path or windows drive
		return f.readFile(rawURL)
	}
	return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return f.limit(resp.Body)
}

func (f *HTTPFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return f.limit(file)
}

func (f *HTTPFetcher) limit(r io.Reader) ([]byte, error) {
	if f.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, f.MaxBytes)
	}
	return data, nil
}
