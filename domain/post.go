package domain

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	markupTagRe = regexp.MustCompile(`(?im)<(\w?\W?\s?)[^>]*>`)
	replyLinkRe = regexp.MustCompile(`>>(\d+)`)
)

// Post is one message of an imageboard thread.
//
// Content fields are immutable after construction. The only mutable part is the
// set of incoming references, which the store grows as later posts link here.
type Post struct {
	Num       int
	Parent    int
	Board     string
	Timestamp int64
	Date      string
	Subject   string
	Name      string
	Trip      string
	Email     string
	Tags      string
	OP        bool
	Sticky    bool
	Closed    bool
	Banned    bool
	Likes     int
	Dislikes  int
	Views     int
	Comment   string // Raw markup
	Files     []File

	cleanOnce sync.Once
	cleaned   string

	linksOnce sync.Once
	links     []int

	refsMu   sync.Mutex
	refs     []int
	refIndex map[int]struct{}
}

// CleanedComment returns the comment as plain text: line breaks become newlines,
// the common entities are decoded and every remaining tag is dropped.
func (p *Post) CleanedComment() string {
	p.cleanOnce.Do(func() {
		p.cleaned = CleanComment(p.Comment)
	})
	return p.cleaned
}

// CleanComment strips imageboard markup from a raw comment.
func CleanComment(raw string) string {
	s := strings.ReplaceAll(raw, "&#47;", "/")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "<br>", "\n")
	return markupTagRe.ReplaceAllString(s, "")
}

// OutgoingLinks returns the post numbers referenced with >>N, in order of first
// appearance. Parsed once per post.
func (p *Post) OutgoingLinks() []int {
	p.linksOnce.Do(func() {
		p.links = ParseLinks(p.CleanedComment())
	})
	return p.links
}

// ParseLinks extracts >>N references from plain text without duplicates.
func ParseLinks(text string) []int {
	matches := replyLinkRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(matches))
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// AddIncomingRef records that post num links to p. Returns false if it was
// already recorded.
func (p *Post) AddIncomingRef(num int) bool {
	p.refsMu.Lock()
	defer p.refsMu.Unlock()
	if p.refIndex == nil {
		p.refIndex = make(map[int]struct{})
	}
	if _, ok := p.refIndex[num]; ok {
		return false
	}
	p.refIndex[num] = struct{}{}
	p.refs = append(p.refs, num)
	return true
}

// RemoveIncomingRef drops a recorded reference. Returns false if it was unknown.
func (p *Post) RemoveIncomingRef(num int) bool {
	p.refsMu.Lock()
	defer p.refsMu.Unlock()
	if _, ok := p.refIndex[num]; !ok {
		return false
	}
	delete(p.refIndex, num)
	for i, n := range p.refs {
		if n == num {
			p.refs = append(p.refs[:i], p.refs[i+1:]...)
			break
		}
	}
	return true
}

// IncomingRefs returns a copy of the referencing post numbers in arrival order.
func (p *Post) IncomingRefs() []int {
	p.refsMu.Lock()
	defer p.refsMu.Unlock()
	return append([]int(nil), p.refs...)
}

// IncomingRefCount is the number of distinct posts linking here.
func (p *Post) IncomingRefCount() int {
	p.refsMu.Lock()
	defer p.refsMu.Unlock()
	return len(p.refs)
}
