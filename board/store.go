// Package board holds the thread viewer core: the post store with its
// back-reference graph, the focus navigator, post layout and the render loop.
package board

import "github.com/CrestNiraj12/boardhud/domain"

// Store is an arena of posts in arrival order with a number index.
//
// Store is not safe for concurrent use; the owning update loop serializes access.
type Store struct {
	posts []*domain.Post
	index map[int]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[int]int)}
}

// Ingest appends p unless its number is already known, then records p as an
// incoming reference on every linked post already present. Posts that arrive
// later never learn about links made before them.
func (s *Store) Ingest(p *domain.Post) bool {
	if p == nil {
		return false
	}
	if _, ok := s.index[p.Num]; ok {
		return false
	}
	s.index[p.Num] = len(s.posts)
	s.posts = append(s.posts, p)

	for _, target := range p.OutgoingLinks() {
		if i, ok := s.index[target]; ok && target != p.Num {
			s.posts[i].AddIncomingRef(p.Num)
		}
	}
	return true
}

// IngestAll ingests posts in slice order and returns how many were new.
func (s *Store) IngestAll(posts []*domain.Post) int {
	added := 0
	for _, p := range posts {
		if s.Ingest(p) {
			added++
		}
	}
	return added
}

func (s *Store) Len() int { return len(s.posts) }

// At returns the post at arrival position i, or nil when out of range.
func (s *Store) At(i int) *domain.Post {
	if i < 0 || i >= len(s.posts) {
		return nil
	}
	return s.posts[i]
}

// Get looks a post up by number.
func (s *Store) Get(num int) (*domain.Post, bool) {
	i, ok := s.index[num]
	if !ok {
		return nil, false
	}
	return s.posts[i], true
}

// IndexOf returns the arrival position of num, or -1.
func (s *Store) IndexOf(num int) int {
	if i, ok := s.index[num]; ok {
		return i
	}
	return -1
}

// Last returns the newest post, or nil when empty.
func (s *Store) Last() *domain.Post {
	return s.At(len(s.posts) - 1)
}

// First returns the oldest post, or nil when empty.
func (s *Store) First() *domain.Post {
	return s.At(0)
}

// Posts returns a copy of the arrival-ordered slice.
func (s *Store) Posts() []*domain.Post {
	return append([]*domain.Post(nil), s.posts...)
}

// Reset drops every post.
func (s *Store) Reset() {
	s.posts = nil
	s.index = make(map[int]int)
}

// Prune evicts the oldest posts until at most limit remain, sparing pinned
// numbers, and drops the survivors' references from evicted posts. Returns the
// evicted numbers in store order. limit <= 0 keeps everything.
func (s *Store) Prune(limit int, pinned ...int) []int {
	if limit <= 0 || len(s.posts) <= limit {
		return nil
	}
	keep := make(map[int]struct{}, len(pinned))
	for _, n := range pinned {
		keep[n] = struct{}{}
	}

	excess := len(s.posts) - limit
	kept := s.posts[:0]
	var evicted []int
	for _, p := range s.posts {
		if _, ok := keep[p.Num]; len(evicted) < excess && !ok {
			evicted = append(evicted, p.Num)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(s.posts); i++ {
		s.posts[i] = nil
	}
	s.posts = kept

	s.index = make(map[int]int, len(s.posts))
	for i, p := range s.posts {
		s.index[p.Num] = i
		if p.IncomingRefCount() == 0 {
			continue
		}
		for _, n := range evicted {
			p.RemoveIncomingRef(n)
		}
	}
	return evicted
}
