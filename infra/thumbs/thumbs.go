// Package thumbs fetches, decodes and caches attachment thumbnails by URL.
package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/CrestNiraj12/boardhud/app"
)

// Getter downloads a URL, reading at most limit bytes. *dvach.Client satisfies
// it, sharing its rate limits.
type Getter interface {
	GetLimited(ctx context.Context, url string, limit int64) ([]byte, error)
}

// Options configures a Cache.
type Options struct {
	MaxBytes   int           // Larger payloads are rejected; 0 means 4 MiB
	MaxWidth   int           // Decoded images wider than this are downscaled; 0 means 200
	RetryAfter time.Duration // Wait before retrying a retryable failure; 0 means 30s
	Logger     zerolog.Logger
	Now        func() time.Time
}

type entry struct {
	img      image.Image
	state    app.ThumbState
	err      error
	failedAt time.Time
	retry    bool
}

// Cache implements app.ThumbnailSource. Every URL is fetched at most once unless
// a retryable failure has aged past RetryAfter. Safe for concurrent use.
type Cache struct {
	getter Getter
	opts   Options
	log    zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

var _ app.ThumbnailSource = (*Cache)(nil)

// New creates an empty cache.
func New(getter Getter, opts Options) *Cache {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 4 * 1024 * 1024
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 200
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		getter:  getter,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "thumbs").Logger(),
		entries: make(map[string]*entry),
	}
}

// Thumbnail returns the cached image and its state. A failure that may be
// retried reports ThumbMissing once RetryAfter has passed, so callers request
// it again.
func (c *Cache) Thumbnail(url string) (image.Image, app.ThumbState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, app.ThumbMissing
	}
	if e.state == app.ThumbFailed && c.retryDueLocked(e) {
		return nil, app.ThumbMissing
	}
	return e.img, e.state
}

func (c *Cache) retryDueLocked(e *entry) bool {
	return e.retry && c.opts.Now().Sub(e.failedAt) >= c.opts.RetryAfter
}

// Fetch downloads and decodes url unless it is cached, in flight, or failed
// recently. Returns the failure of the last attempt, if any.
func (c *Cache) Fetch(ctx context.Context, url string) error {
	c.mu.Lock()
	e, ok := c.entries[url]
	switch {
	case !ok:
		e = &entry{}
		c.entries[url] = e
	case e.state == app.ThumbReady, e.state == app.ThumbLoading:
		c.mu.Unlock()
		return nil
	case e.state == app.ThumbFailed && !c.retryDueLocked(e):
		err := e.err
		c.mu.Unlock()
		return err
	}
	e.state = app.ThumbLoading
	c.mu.Unlock()

	img, err := c.load(ctx, url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		e.state, e.err, e.img = app.ThumbFailed, err, nil
		e.failedAt = c.opts.Now()
		e.retry = isRetryable(err)
		c.log.Warn().Err(err).Str("url", url).Bool("retry", e.retry).Msg("thumbnail failed")
		return err
	}
	e.state, e.err, e.img = app.ThumbReady, nil, img
	b := img.Bounds()
	c.log.Debug().Str("url", url).Int("w", b.Dx()).Int("h", b.Dy()).Msg("thumbnail ready")
	return nil
}

// Len returns the number of known URLs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) load(ctx context.Context, url string) (image.Image, error) {
	data, err := c.getter.GetLimited(ctx, url, int64(c.opts.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetching thumbnail: %w", err)
	}
	if len(data) > c.opts.MaxBytes {
		return nil, fmt.Errorf("thumbnail is %d bytes, limit %d", len(data), c.opts.MaxBytes)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding thumbnail: %w", err)
	}
	return downscale(img, c.opts.MaxWidth), nil
}

// downscale shrinks img to maxWidth keeping the aspect ratio. Smaller images
// are returned as is.
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth || b.Dx() == 0 {
		return img
	}
	h := max(b.Dy()*maxWidth/b.Dx(), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// isRetryable treats transport failures and errors that say so as transient.
// Decoding failures are permanent.
func isRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isTransport(err)
}

func isTransport(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr)
}
