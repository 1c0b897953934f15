// Package assets keeps decoded audio buffers for reuse so an asset is
// fetched and decoded once per URL rather than once per play.
package assets

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sfx/internal/log"
	"sfx/internal/synth"
)

var errUnavailable = errors.New("assets: unavailable")

// Loader produces a decoded buffer for url, or nil when it is unavailable.
// *audio.Engine satisfies it.
type Loader interface {
	LoadAudioBuffer(ctx context.Context, url string) *synth.Buffer
}

// Cache memoizes a Loader. Failed loads are not cached, so a later Get
// retries them.
type Cache struct {
	loader Loader
	items  *gocache.Cache
	group  singleflight.Group
}

// New returns a cache whose entries expire after ttl (never when ttl <= 0),
// purging expired entries every cleanup interval.
func New(loader Loader, ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cache{loader: loader, items: gocache.New(ttl, cleanup)}
}

// Get returns the buffer for url, loading it on first use. Concurrent Gets
// for the same url share one load, which outlives any single caller's ctx;
// a caller whose ctx ends first gets nil while the load carries on for the
// others.
func (c *Cache) Get(ctx context.Context, url string) *synth.Buffer {
	if v, ok := c.items.Get(url); ok {
		return v.(*synth.Buffer)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (any, error) {
		if v, ok := c.items.Get(url); ok {
			return v, nil
		}
		buf := c.loader.LoadAudioBuffer(loadCtx, url)
		if buf == nil {
			log.Debug(log.CatLoader, "Asset not cached", "url", url)
			return nil, errUnavailable
		}
		c.items.SetDefault(url, buf)
		return buf, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		if res.Err != nil {
			return nil
		}
		return res.Val.(*synth.Buffer)
	}
}

// Preload loads urls concurrently and returns how many are available.
func (c *Cache) Preload(ctx context.Context, urls ...string) int {
	var (
		g      errgroup.Group
		loaded atomic.Int32
	)
	for _, u := range urls {
		g.Go(func() error {
			if c.Get(ctx, u) != nil {
				loaded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	n := int(loaded.Load())
	log.Debug(log.CatLoader, "Preloaded assets", "requested", len(urls), "loaded", n)
	return n
}

// Forget drops url so the next Get reloads it.
func (c *Cache) Forget(url string) { c.items.Delete(url) }

// Len returns the number of cached buffers, including expired ones not yet
// purged.
func (c *Cache) Len() int { return c.items.ItemCount() }
