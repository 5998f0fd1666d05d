package app

import (
	"context"
	"image"
)

// ThumbState is the lifecycle of one thumbnail.
type ThumbState int

const (
	ThumbMissing ThumbState = iota // Never requested
	ThumbLoading
	ThumbReady
	ThumbFailed
)

func (s ThumbState) String() string {
	switch s {
	case ThumbLoading:
		return "loading"
	case ThumbReady:
		return "ready"
	case ThumbFailed:
		return "failed"
	default:
		return "missing"
	}
}

// ThumbnailSource resolves thumbnail URLs to decoded images.
type ThumbnailSource interface {
	// Thumbnail looks up a cached image without blocking.
	Thumbnail(url string) (image.Image, ThumbState)

	// Fetch downloads and decodes url. Each URL is fetched at most once unless
	// a previous failure is eligible for retry.
	Fetch(ctx context.Context, url string) error
}
