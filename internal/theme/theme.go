// Package theme holds the current presentation theme and notifies
// subscribers when it changes.
package theme

import (
	"fmt"
	"strings"
	"sync"
)

// Theme is the presentation theme name
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Default is the theme used when nothing has been persisted yet
const Default = Dark

// Parse validates a theme name (case-insensitive)
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want dark or light)", s)
	}
}

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// String implements fmt.Stringer
func (t Theme) String() string { return string(t) }

// Listener is called with the new theme after a change
type Listener func(Theme)

// State is the current theme plus its change subscribers. The zero value is
// not usable; create one with NewState.
type State struct {
	mu        sync.Mutex
	current   Theme
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewState creates a State starting at initial
func NewState(initial Theme) *State {
	if initial != Light {
		initial = Dark
	}
	return &State{
		current:   initial,
		listeners: make(map[int]Listener),
	}
}

// Current returns the active theme
func (s *State) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set changes the theme. Listeners run in subscription order, outside the
// lock, and only when the theme actually changes.
func (s *State) Set(t Theme) {
	s.mu.Lock()
	if t == s.current {
		s.mu.Unlock()
		return
	}
	s.current = t
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(t)
	}
}

// Toggle flips between dark and light and returns the new theme
func (s *State) Toggle() Theme {
	next := s.Current().Opposite()
	s.Set(next)
	return next
}

// Subscribe registers l for change events. The returned function removes it.
func (s *State) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *State) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}
