package domain

import "errors"

var (
	// ErrThreadNotFound indicates no thread in the catalog carries the requested tag.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrThreadRolledOver indicates the tracked thread hit the bump limit and the tag
	// now resolves to a newer thread.
	ErrThreadRolledOver = errors.New("thread rolled over")

	// ErrMalformedPost indicates a feed entry that cannot be turned into a post.
	ErrMalformedPost = errors.New("malformed post")

	// ErrEmptyFeed indicates a thread response without any posts.
	ErrEmptyFeed = errors.New("thread has no posts")
)
