package dvach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/boardhud/app"
	"github.com/CrestNiraj12/boardhud/domain"
)

var _ app.ThreadFetcher = (*threadService)(nil)

// BumpLimit is the post count after which a thread stops bumping and the
// community opens a new one under the same tag.
const BumpLimit = 999

// threadService implements app.ThreadFetcher over the 2ch JSON API.
type threadService struct {
	client  *Client
	baseURL string
	board   string
	tag     string
	log     zerolog.Logger
}

// NewThreadService creates a ThreadFetcher for one board. tag is the catalog
// tag checked when a thread reaches the bump limit.
func NewThreadService(client *Client, baseURL, board, tag string, logger zerolog.Logger) *threadService {
	return &threadService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		board:   board,
		tag:     tag,
		log:     logger.With().Str("component", "dvach").Str("board", board).Logger(),
	}
}

type catalogResponse struct {
	Threads []struct {
		Num  flexInt `json:"num"`
		Tags string  `json:"tags"`
	} `json:"threads"`
}

type threadResponse struct {
	Threads []struct {
		Posts []json.RawMessage `json:"posts"`
	} `json:"threads"`
}

type infoResponse struct {
	Thread struct {
		Posts flexInt `json:"posts"`
	} `json:"thread"`
}

type afterResponse struct {
	Posts []json.RawMessage `json:"posts"`
}

func (s *threadService) getJSON(ctx context.Context, path string, v any) error {
	data, err := s.client.Get(ctx, s.baseURL+path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (s *threadService) ResolveThreadID(ctx context.Context, tag string) (int, error) {
	var catalog catalogResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/%s/catalog_num.json", s.board), &catalog); err != nil {
		return 0, fmt.Errorf("fetching catalog: %w", err)
	}
	for _, th := range catalog.Threads {
		if th.Tags == tag && th.Num > 0 {
			return int(th.Num), nil
		}
	}
	return 0, fmt.Errorf("tag %q on /%s/: %w", tag, s.board, domain.ErrThreadNotFound)
}

func (s *threadService) FetchAllPosts(ctx context.Context, threadID int) ([]*domain.Post, error) {
	var resp threadResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/%s/res/%d.json", s.board, threadID), &resp); err != nil {
		return nil, fmt.Errorf("fetching thread %d: %w", threadID, err)
	}
	if len(resp.Threads) == 0 || len(resp.Threads[0].Posts) == 0 {
		return nil, fmt.Errorf("thread %d: %w", threadID, domain.ErrEmptyFeed)
	}
	return s.decodePosts(resp.Threads[0].Posts), nil
}

func (s *threadService) FetchNewPosts(ctx context.Context, threadID, sinceNum int) ([]*domain.Post, error) {
	if sinceNum <= 0 {
		return s.FetchAllPosts(ctx, threadID)
	}

	var info infoResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/api/mobile/v2/info/%s/%d", s.board, threadID), &info); err != nil {
		return nil, fmt.Errorf("fetching thread %d info: %w", threadID, err)
	}
	if int(info.Thread.Posts) > BumpLimit {
		current, err := s.ResolveThreadID(ctx, s.tag)
		switch {
		case err == nil && current != threadID:
			s.log.Info().Int("old", threadID).Int("new", current).Msg("thread rolled over")
			return nil, fmt.Errorf("thread %d replaced by %d: %w", threadID, current, domain.ErrThreadRolledOver)
		case err != nil && !errors.Is(err, domain.ErrThreadNotFound):
			return nil, err
		}
	}

	var resp afterResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/api/mobile/v2/after/%s/%d/%d", s.board, threadID, sinceNum), &resp); err != nil {
		return nil, fmt.Errorf("fetching thread %d after %d: %w", threadID, sinceNum, err)
	}

	posts := s.decodePosts(resp.Posts)
	fresh := posts[:0]
	for _, p := range posts {
		if p.Num > sinceNum {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}

// decodePosts maps raw entries to posts. Malformed entries are logged and
// skipped; the rest of the batch is kept.
func (s *threadService) decodePosts(raw []json.RawMessage) []*domain.Post {
	posts := make([]*domain.Post, 0, len(raw))
	for i, item := range raw {
		p, err := s.decodePost(item)
		if err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("skipping post")
			continue
		}
		posts = append(posts, p)
	}
	return posts
}
