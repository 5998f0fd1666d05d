package thread

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/boardhud/app"
	"github.com/CrestNiraj12/boardhud/domain"
	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
)

type stubFetcher struct {
	threadID int
	posts    []*domain.Post
	newPosts []*domain.Post
	err      error
	pollErr  error
}

func (s *stubFetcher) ResolveThreadID(context.Context, string) (int, error) {
	return s.threadID, s.err
}

func (s *stubFetcher) FetchAllPosts(context.Context, int) ([]*domain.Post, error) {
	return s.posts, s.err
}

func (s *stubFetcher) FetchNewPosts(context.Context, int, int) ([]*domain.Post, error) {
	return s.newPosts, s.pollErr
}

type stubThumbs struct {
	mu      sync.Mutex
	fetched []string
}

func (s *stubThumbs) Thumbnail(string) (image.Image, app.ThumbState) { return nil, app.ThumbMissing }

func (s *stubThumbs) Fetch(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, url)
	return nil
}

func makePosts(from, to int) []*domain.Post {
	var out []*domain.Post
	for i := from; i <= to; i++ {
		out = append(out, &domain.Post{Num: i, Comment: fmt.Sprintf("post %d", i)})
	}
	return out
}

func newTestModel(t *testing.T, f *stubFetcher, thumbs app.ThumbnailSource) (*Model, *input.Router, *render.Resources) {
	t.Helper()
	router := input.NewRouter(zerolog.Nop())
	res := render.NewResources()
	cfg := config.DefaultConfig().Board
	m := New(Deps{
		Fetcher:   f,
		Thumbs:    thumbs,
		Router:    router,
		Resources: res,
		Config:    cfg,
		Logger:    zerolog.Nop(),
	})
	router.Register(m)
	res.Setup()
	return m, router, res
}

func loaded(t *testing.T, m *Model) {
	t.Helper()
	m.reqSeq++
	m.loading = true
	msg := m.fetchThread(m.reqSeq)()
	require.IsType(t, ThreadLoadedMsg{}, msg)
	require.NotNil(t, m.Update(msg))
}

func TestModel_InitialLoad(t *testing.T) {
	m, _, _ := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 3)}, nil)
	loaded(t, m)

	assert.False(t, m.loading)
	assert.Equal(t, 100, m.threadID)
	assert.Equal(t, 3, m.store.Len())
	assert.Contains(t, m.Status(), "/vg/100")
	assert.Contains(t, m.Status(), "3 posts")
}

func TestModel_IgnoresStaleResponses(t *testing.T) {
	m, _, _ := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 3)}, nil)
	loaded(t, m)

	assert.Nil(t, m.Update(PostsLoadedMsg{ReqSeq: m.reqSeq - 1, ThreadID: 100, Posts: makePosts(4, 4)}))
	assert.Nil(t, m.Update(PostsLoadedMsg{ReqSeq: m.reqSeq, ThreadID: 99, Posts: makePosts(4, 4)}))
	assert.Nil(t, m.Update(ThreadLoadedMsg{ReqSeq: m.reqSeq - 1, ThreadID: 5}))
	assert.Equal(t, 3, m.store.Len())
	assert.Equal(t, 100, m.threadID)
}

func TestModel_PollIngestsAndLinks(t *testing.T) {
	f := &stubFetcher{
		threadID: 100,
		posts:    makePosts(1, 3),
		newPosts: []*domain.Post{{Num: 4, Comment: "&gt;&gt;2 yes"}},
	}
	m, _, _ := newTestModel(t, f, nil)
	loaded(t, m)

	msg := m.fetchNew(m.reqSeq, m.threadID, 3)()
	require.NotNil(t, m.Update(msg))
	assert.Equal(t, 4, m.store.Len())

	p2, _ := m.store.Get(2)
	assert.Equal(t, []int{4}, p2.IncomingRefs())
}

func TestModel_PollFailureBacksOffAndRecovers(t *testing.T) {
	m, _, _ := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 3)}, nil)
	loaded(t, m)

	require.NotNil(t, m.Update(PollErrorMsg{ReqSeq: m.reqSeq, Err: errors.New("boom")}))
	assert.Equal(t, 1, m.failures)
	assert.Contains(t, m.Status(), "boom")
	assert.Equal(t, 3, m.store.Len(), "store keeps its state")

	m.Update(PostsLoadedMsg{ReqSeq: m.reqSeq, ThreadID: 100})
	assert.Zero(t, m.failures)
	assert.NotContains(t, m.Status(), "boom")
}

func TestModel_RolloverRefetches(t *testing.T) {
	f := &stubFetcher{threadID: 100, posts: makePosts(1, 3)}
	m, router, _ := newTestModel(t, f, nil)
	loaded(t, m)
	m.HandleKey(input.Event{Key: "up"})
	require.Equal(t, Name, router.Owner())

	seq := m.reqSeq
	f.threadID, f.posts = 200, makePosts(10, 11)
	cmd := m.Update(PollErrorMsg{ReqSeq: seq, Err: fmt.Errorf("wrapped: %w", domain.ErrThreadRolledOver)})
	require.NotNil(t, cmd)
	assert.Equal(t, seq+1, m.reqSeq)
	assert.True(t, m.loading)
	assert.Zero(t, m.failures)

	m.Update(m.fetchThread(m.reqSeq)())
	assert.Equal(t, 200, m.threadID)
	assert.Equal(t, []int{10, 11}, []int{m.store.At(0).Num, m.store.At(1).Num})
	_, focused := m.nav.Focused()
	assert.False(t, focused)
	assert.Empty(t, router.Owner(), "reset releases the input lock")
}

func TestModel_ThreadErrorRetries(t *testing.T) {
	m, _, _ := newTestModel(t, &stubFetcher{err: domain.ErrThreadNotFound}, nil)
	m.reqSeq = 1
	msg := m.fetchThread(1)()
	require.IsType(t, ThreadErrorMsg{}, msg)
	require.NotNil(t, m.Update(msg))
	assert.Equal(t, 1, m.failures)
	assert.ErrorIs(t, m.err, domain.ErrThreadNotFound)

	assert.Nil(t, m.Update(reloadMsg{ReqSeq: 0}))
	assert.NotNil(t, m.Update(reloadMsg{ReqSeq: 1}))
}

func TestModel_BrowsingKeysHoldTheLock(t *testing.T) {
	m, router, _ := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 3)}, nil)
	loaded(t, m)

	_, by := router.Dispatch("up")
	assert.Equal(t, Name, by)
	assert.Equal(t, Name, router.Owner())
	assert.Equal(t, 3, m.nav.Position())

	router.Dispatch("up")
	assert.Equal(t, 2, m.nav.Position())
	router.Dispatch("enter")
	assert.True(t, m.nav.Expanded())
	assert.Contains(t, m.Status(), "2/3 expanded")

	router.Dispatch("down")
	router.Dispatch("down")
	assert.Zero(t, m.nav.Position())
	assert.Empty(t, router.Owner())

	router.Dispatch("up")
	router.Dispatch("esc")
	assert.Empty(t, router.Owner())

	_, by = router.Dispatch("1")
	assert.Empty(t, by, "unfocused board ignores other keys")
}

func TestModel_RefreshKeyQueuesReload(t *testing.T) {
	m, router, _ := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 3)}, nil)
	loaded(t, m)
	seq := m.reqSeq

	router.Dispatch("f5")
	assert.Equal(t, seq+1, m.reqSeq)
	assert.NotNil(t, m.PendingCmd())
	assert.Nil(t, m.PendingCmd())
}

func TestModel_RenderRequestsThumbnailsOnce(t *testing.T) {
	posts := makePosts(1, 2)
	posts[1].Files = []domain.File{{Thumbnail: "http://x/t.jpg", TnWidth: 100, TnHeight: 100}}
	thumbs := &stubThumbs{}
	m, _, res := newTestModel(t, &stubFetcher{threadID: 100, posts: posts}, thumbs)
	loaded(t, m)

	canvas := render.NewCanvas(res, 80, 30, 6, 17)
	cmd := m.Render(canvas, canvas.Bounds())
	require.NotNil(t, cmd)
	assert.Nil(t, m.Render(canvas, canvas.Bounds()), "already in flight")
	assert.Contains(t, canvas.String(), "post 2")

	msg := fetchThumb(thumbs.Fetch, "http://x/t.jpg", time.Second)()
	m.Update(msg)
	assert.Equal(t, []string{"http://x/t.jpg"}, thumbs.fetched)
	assert.NotNil(t, m.Render(canvas, canvas.Bounds()), "still missing, so asked again")
}

func TestModel_PruneForgetsEvictedPosts(t *testing.T) {
	m, _, res := newTestModel(t, &stubFetcher{threadID: 100, posts: makePosts(1, 1)}, nil)
	m.cfg.MaxPosts = 3
	loaded(t, m)
	m.HandleKey(input.Event{Key: "up"})
	require.Equal(t, 1, m.nav.Position())

	canvas := render.NewCanvas(res, 100, 40, 6, 17)
	for n := 2; n <= 20; n++ {
		m.Update(PostsLoadedMsg{
			ReqSeq:   m.reqSeq,
			ThreadID: 100,
			Posts:    []*domain.Post{{Num: n, Comment: "&gt;&gt;1"}},
		})
		canvas.Clear()
		m.Render(canvas, canvas.Bounds())
	}

	assert.Equal(t, []int{1, 19, 20}, []int{m.store.At(0).Num, m.store.At(1).Num, m.store.At(2).Num})
	first, _ := m.store.Get(1)
	assert.Equal(t, []int{19, 20}, first.IncomingRefs())
	assert.LessOrEqual(t, m.cache.Len(), 3)
	assert.NotContains(t, canvas.String(), ">>18")
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 5 * time.Second},
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{4, time.Minute},
		{10, time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff(5*time.Second, time.Minute, tt.failures), "failures=%d", tt.failures)
	}
}
