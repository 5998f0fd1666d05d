// Package thread is the imageboard viewer system: it polls the feed, keeps the post
// store and navigator, routes browsing keys and draws the post window.
package thread

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/boardhud/app"
	"github.com/CrestNiraj12/boardhud/board"
	"github.com/CrestNiraj12/boardhud/domain"
	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
)

// Name identifies the system to the input router.
const Name = "board"

// --- Messages ---

// ThreadLoadedMsg carries a full thread fetch.
type ThreadLoadedMsg struct {
	ReqSeq   int
	ThreadID int
	Posts    []*domain.Post
}

// ThreadErrorMsg is sent when resolving or fetching the whole thread fails.
type ThreadErrorMsg struct {
	ReqSeq int
	Err    error
}

// PostsLoadedMsg carries posts newer than the last known one.
type PostsLoadedMsg struct {
	ReqSeq   int
	ThreadID int
	Posts    []*domain.Post
}

// PollErrorMsg is sent when an incremental fetch fails.
type PollErrorMsg struct {
	ReqSeq int
	Err    error
}

// ThumbLoadedMsg is sent when a thumbnail fetch finishes, successfully or not.
type ThumbLoadedMsg struct {
	URL string
	Err error
}

type pollTickMsg struct{ ReqSeq int }

type reloadMsg struct{ ReqSeq int }

// Deps holds what the board system needs. Plain struct, not a DI container.
type Deps struct {
	Fetcher   app.ThreadFetcher
	Thumbs    app.ThumbnailSource
	Router    *input.Router
	Resources *render.Resources
	Config    config.BoardConfig
	Logger    zerolog.Logger
}

// Model holds the board state. It is owned by the root update loop; fetches run
// as commands and report back through messages.
type Model struct {
	fetcher app.ThreadFetcher
	thumbs  app.ThumbnailSource
	router  *input.Router
	cfg     config.BoardConfig
	log     zerolog.Logger
	keys    common.KeyMap
	spinner spinner.Model

	store    *board.Store
	nav      *board.Navigator
	cache    *board.LayoutCache
	renderer *board.Renderer

	threadID  int
	reqSeq    int
	loading   bool
	failures  int
	err       error
	requested map[string]struct{}
	queued    []tea.Cmd
}

// New creates the board system with injected dependencies.
func New(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = common.SpinnerStyle

	store := board.NewStore()
	nav := board.NewNavigator(store)
	cache := board.NewLayoutCache(board.DefaultMetrics())

	return &Model{
		fetcher:   deps.Fetcher,
		thumbs:    deps.Thumbs,
		router:    deps.Router,
		cfg:       deps.Config,
		log:       deps.Logger.With().Str("component", "board").Logger(),
		keys:      common.DefaultKeyMap(),
		spinner:   s,
		store:     store,
		nav:       nav,
		cache:     cache,
		renderer:  board.NewRenderer(nav, cache, deps.Thumbs, deps.Resources),
		requested: make(map[string]struct{}),
	}
}

func (m *Model) Name() string { return Name }

// Init starts the initial thread fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), m.spinner.Tick)
}

// reload invalidates every request in flight and fetches the thread from scratch.
func (m *Model) reload() tea.Cmd {
	m.reqSeq++
	m.loading = true
	return m.fetchThread(m.reqSeq)
}

// Update handles feed and thumbnail messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case ThreadLoadedMsg:
		if msg.ReqSeq != m.reqSeq {
			return nil
		}
		m.resetThread(msg.ThreadID)
		added := m.store.IngestAll(msg.Posts)
		m.prune()
		m.loading = false
		m.failures = 0
		m.err = nil
		m.log.Info().Int("thread", msg.ThreadID).Int("posts", added).Msg("thread loaded")
		return m.schedulePoll(m.cfg.PollInterval)

	case ThreadErrorMsg:
		if msg.ReqSeq != m.reqSeq {
			return nil
		}
		m.failures++
		m.err = msg.Err
		delay := backoff(m.cfg.PollInterval, m.cfg.MaxBackoff, m.failures)
		m.log.Warn().Err(msg.Err).Dur("retry_in", delay).Msg("thread fetch failed")
		seq := m.reqSeq
		return tea.Tick(delay, func(time.Time) tea.Msg { return reloadMsg{ReqSeq: seq} })

	case reloadMsg:
		if msg.ReqSeq != m.reqSeq {
			return nil
		}
		return m.fetchThread(m.reqSeq)

	case pollTickMsg:
		if msg.ReqSeq != m.reqSeq || m.loading {
			return nil
		}
		since := 0
		if last := m.store.Last(); last != nil {
			since = last.Num
		}
		return m.fetchNew(m.reqSeq, m.threadID, since)

	case PostsLoadedMsg:
		if msg.ReqSeq != m.reqSeq || msg.ThreadID != m.threadID {
			return nil
		}
		if added := m.store.IngestAll(msg.Posts); added > 0 {
			m.log.Debug().Int("added", added).Int("total", m.store.Len()).Msg("new posts")
		}
		m.prune()
		m.failures = 0
		m.err = nil
		return m.schedulePoll(m.cfg.PollInterval)

	case PollErrorMsg:
		if msg.ReqSeq != m.reqSeq {
			return nil
		}
		if errors.Is(msg.Err, domain.ErrThreadRolledOver) {
			m.log.Info().Int("thread", m.threadID).Msg("following the new thread")
			return m.reload()
		}
		m.failures++
		m.err = msg.Err
		delay := backoff(m.cfg.PollInterval, m.cfg.MaxBackoff, m.failures)
		m.log.Warn().Err(msg.Err).Dur("retry_in", delay).Msg("poll failed")
		return m.schedulePoll(delay)

	case ThumbLoadedMsg:
		delete(m.requested, msg.URL)
		return nil
	}
	return nil
}

// resetThread drops everything tied to the previous thread.
func (m *Model) resetThread(threadID int) {
	m.threadID = threadID
	m.store.Reset()
	m.cache.Reset()
	m.exitFocus()
}

func (m *Model) prune() {
	if m.cfg.MaxPosts <= 0 {
		return
	}
	var pinned []int
	if p, ok := m.nav.Focused(); ok {
		pinned = append(pinned, p.Num)
	}
	evicted := m.store.Prune(m.cfg.MaxPosts, pinned...)
	for _, n := range evicted {
		m.cache.Forget(n)
	}
	if len(evicted) > 0 {
		m.log.Debug().Int("evicted", len(evicted)).Msg("pruned store")
	}
}

// HandleKey applies browsing keys. While a post is focused the board holds the
// input lock so other systems do not see the keys.
func (m *Model) HandleKey(ev input.Event) bool {
	k := ev.Key
	if _, focused := m.nav.Focused(); !focused {
		switch {
		case common.Matches(k, m.keys.Focus):
			m.nav.EnterFocus()
			if _, ok := m.nav.Focused(); ok && m.router != nil {
				m.router.Lock(Name)
			}
			return true
		case common.Matches(k, m.keys.Refresh):
			m.queued = append(m.queued, m.reload())
			return true
		}
		return false
	}

	switch {
	case common.Matches(k, m.keys.Up):
		m.nav.FocusPrevious()
	case common.Matches(k, m.keys.Down):
		m.nav.FocusNext()
		if _, ok := m.nav.Focused(); !ok {
			m.unlock()
		}
	case common.Matches(k, m.keys.Expand):
		m.nav.ToggleExpand()
	case common.Matches(k, m.keys.Exit):
		m.exitFocus()
	case common.Matches(k, m.keys.Refresh):
		m.queued = append(m.queued, m.reload())
	default:
		return false
	}
	return true
}

func (m *Model) exitFocus() {
	m.nav.ExitFocus()
	m.unlock()
}

func (m *Model) unlock() {
	if m.router != nil {
		m.router.Unlock(Name)
	}
}

// PendingCmd returns commands queued by key handling since the last call.
func (m *Model) PendingCmd() tea.Cmd {
	if len(m.queued) == 0 {
		return nil
	}
	cmd := tea.Batch(m.queued...)
	m.queued = nil
	return cmd
}
