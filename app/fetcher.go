package app

import (
	"context"

	"github.com/CrestNiraj12/boardhud/domain"
)

// ThreadFetcher loads posts of a tagged imageboard thread.
type ThreadFetcher interface {
	// ResolveThreadID finds the live thread carrying tag.
	ResolveThreadID(ctx context.Context, tag string) (int, error)

	// FetchAllPosts returns every post of the thread, oldest first.
	FetchAllPosts(ctx context.Context, threadID int) ([]*domain.Post, error)

	// FetchNewPosts returns posts newer than sinceNum, oldest first.
	// Returns domain.ErrThreadRolledOver when the thread was replaced.
	FetchNewPosts(ctx context.Context, threadID, sinceNum int) ([]*domain.Post, error)
}
