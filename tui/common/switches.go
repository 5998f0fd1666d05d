package common

import "slices"

// Switches records which systems are turned on. Systems start on. It is owned
// by the update loop and is not safe for concurrent use.
type Switches struct {
	names []string
	off   map[string]bool
}

// NewSwitches returns an empty set.
func NewSwitches() *Switches {
	return &Switches{off: make(map[string]bool)}
}

// Add registers name, turned on. Adding a name twice is a no-op.
func (s *Switches) Add(name string) {
	if !slices.Contains(s.names, name) {
		s.names = append(s.names, name)
	}
}

// Names returns the registered names in registration order.
func (s *Switches) Names() []string { return slices.Clone(s.names) }

// On reports whether name is turned on. Unknown names are on.
func (s *Switches) On(name string) bool { return !s.off[name] }

// Toggle flips name and returns the new state.
func (s *Switches) Toggle(name string) bool {
	s.off[name] = !s.off[name]
	return !s.off[name]
}
