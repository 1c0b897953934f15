package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("payload"))
		case "/big":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "asset.bin")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0o644))

	f := NewHTTPFetcher()
	f.MaxBytes = 32
	ctx := context.Background()

	t.Run("http", func(t *testing.T) {
		data, err := f.Fetch(ctx, srv.URL+"/ok")
		require.NoError(t, err)
		require.Equal(t, "payload", string(data))
	})
	t.Run("status", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/missing")
		require.ErrorContains(t, err, "404")
	})
	t.Run("too large", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/big")
		require.ErrorIs(t, err, ErrTooLarge)
	})
	t.Run("file url", func(t *testing.T) {
		data, err := f.Fetch(ctx, "file://"+path)
		require.NoError(t, err)
		require.Equal(t, "on disk", string(data))
	})
	t.Run("bare path", func(t *testing.T) {
		data, err := f.Fetch(ctx, path)
		require.NoError(t, err)
		require.Equal(t, "on disk", string(data))
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := f.Fetch(ctx, filepath.Join(dir, "nope.wav"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := f.Fetch(ctx, "ftp://example.com/a.wav")
		require.ErrorContains(t, err, "unsupported url scheme")
	})
	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.Fetch(cctx, srv.URL+"/ok")
		require.ErrorIs(t, err, context.Canceled)
	})
}
