// Package input routes key presses to the overlay's systems under a
// priority/lock protocol: one system may take the keyboard for itself, and the
// whole keyboard may be suspended.
package input

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Priority is the routing state a key was dispatched under.
type Priority int

const (
	Normal Priority = iota // Every handler may see the key
	Locked                 // Only the lock owner sees the key
	System                 // Keyboard suspended, handlers see nothing
)

func (p Priority) String() string {
	switch p {
	case Locked:
		return "locked"
	case System:
		return "system"
	default:
		return "normal"
	}
}

// Event is one key press with the routing state it was dispatched under.
type Event struct {
	Key      string
	Priority Priority
	Owner    string // Lock owner, empty when unlocked
}

// Handler consumes key events. HandleKey returns true when the key was used.
type Handler interface {
	Name() string
	HandleKey(Event) bool
}

// Router dispatches keys to registered handlers. It is safe for concurrent use;
// handlers run without the router's lock held, so they may call Lock and Unlock.
type Router struct {
	mu        sync.Mutex
	handlers  []Handler
	locks     []string
	suspended bool
	log       zerolog.Logger
}

// NewRouter returns a router with no handlers.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{log: logger.With().Str("component", "input").Logger()}
}

// Register appends h; handlers are offered keys in registration order.
func (r *Router) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Lock gives owner exclusive use of the keyboard. Locks stack: the most recent
// owner wins until it unlocks. Returns false if owner already holds the top lock.
func (r *Router) Lock(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.locks); n > 0 && r.locks[n-1] == owner {
		return false
	}
	r.locks = append(r.locks, owner)
	r.log.Debug().Str("owner", owner).Int("depth", len(r.locks)).Msg("input locked")
	return true
}

// Unlock releases owner's lock wherever it sits in the stack.
func (r *Router) Unlock(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.locks) - 1; i >= 0; i-- {
		if r.locks[i] == owner {
			r.locks = slices.Delete(r.locks, i, i+1)
			r.log.Debug().Str("owner", owner).Int("depth", len(r.locks)).Msg("input unlocked")
			return true
		}
	}
	return false
}

// Owner returns the current lock owner, or "".
func (r *Router) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownerLocked()
}

func (r *Router) ownerLocked() string {
	if n := len(r.locks); n > 0 {
		return r.locks[n-1]
	}
	return ""
}

// Priority returns the state the next key would be dispatched under.
func (r *Router) Priority() Priority {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.priorityLocked()
}

func (r *Router) priorityLocked() Priority {
	switch {
	case r.suspended:
		return System
	case len(r.locks) > 0:
		return Locked
	default:
		return Normal
	}
}

// Suspend toggles the keyboard suspension and returns the new state. While
// suspended Dispatch offers keys to no handler; the caller owns the resume key.
func (r *Router) Suspend() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = !r.suspended
	r.log.Info().Bool("suspended", r.suspended).Msg("keyboard suspension toggled")
	return r.suspended
}

// Suspended reports whether the keyboard is suspended.
func (r *Router) Suspended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended
}

// Dispatch offers key to the handlers. Under a lock only the owner sees it;
// otherwise handlers are tried in order until one consumes it. Returns the event
// and the name of the consuming handler, "" when nobody took it.
func (r *Router) Dispatch(key string) (Event, string) {
	r.mu.Lock()
	ev := Event{Key: key, Priority: r.priorityLocked(), Owner: r.ownerLocked()}
	handlers := slices.Clone(r.handlers)
	r.mu.Unlock()

	switch ev.Priority {
	case System:
		return ev, ""
	case Locked:
		for _, h := range handlers {
			if h.Name() == ev.Owner {
				if h.HandleKey(ev) {
					return ev, h.Name()
				}
				return ev, ""
			}
		}
		return ev, ""
	}

	for _, h := range handlers {
		if h.HandleKey(ev) {
			return ev, h.Name()
		}
	}
	return ev, ""
}
