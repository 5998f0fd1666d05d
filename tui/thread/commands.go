package thread

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchThread resolves the tagged thread and loads every post.
func (m *Model) fetchThread(reqSeq int) tea.Cmd {
	fetcher := m.fetcher
	tag := m.cfg.Tag
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()

		id, err := fetcher.ResolveThreadID(ctx, tag)
		if err != nil {
			return ThreadErrorMsg{ReqSeq: reqSeq, Err: err}
		}
		posts, err := fetcher.FetchAllPosts(ctx, id)
		if err != nil {
			return ThreadErrorMsg{ReqSeq: reqSeq, Err: err}
		}
		return ThreadLoadedMsg{ReqSeq: reqSeq, ThreadID: id, Posts: posts}
	}
}

// fetchNew loads posts after sinceNum.
func (m *Model) fetchNew(reqSeq, threadID, sinceNum int) tea.Cmd {
	fetcher := m.fetcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()

		posts, err := fetcher.FetchNewPosts(ctx, threadID, sinceNum)
		if err != nil {
			return PollErrorMsg{ReqSeq: reqSeq, Err: err}
		}
		return PostsLoadedMsg{ReqSeq: reqSeq, ThreadID: threadID, Posts: posts}
	}
}

func (m *Model) schedulePoll(after time.Duration) tea.Cmd {
	seq := m.reqSeq
	return tea.Tick(after, func(time.Time) tea.Msg { return pollTickMsg{ReqSeq: seq} })
}

// fetchThumbs requests every thumbnail not already in flight.
func (m *Model) fetchThumbs(urls []string) tea.Cmd {
	if m.thumbs == nil || len(urls) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(urls))
	for _, url := range urls {
		if _, ok := m.requested[url]; ok {
			continue
		}
		m.requested[url] = struct{}{}
		cmds = append(cmds, fetchThumb(m.thumbs.Fetch, url, m.cfg.RequestTimeout))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func fetchThumb(fetch func(context.Context, string) error, url string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		return ThumbLoadedMsg{URL: url, Err: fetch(ctx, url)}
	}
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// backoff doubles interval per consecutive failure, capped at limit.
func backoff(interval, limit time.Duration, failures int) time.Duration {
	d := interval
	for i := 0; i < failures && d < limit; i++ {
		d *= 2
	}
	if limit > 0 && d > limit {
		d = limit
	}
	return d
}

func describeErr(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("error: %v", err)
}
