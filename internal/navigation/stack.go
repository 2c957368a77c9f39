// Package navigation models which screen a client is looking at.
//
// A Stack is either at the root list or viewing one screen with a history of
// the screens it replaced. Only one branch is ever live. Stacks are plain
// in-memory values and are not safe for concurrent use; Sessions serialises
// access when several clients share a process.
package navigation

import (
	"fmt"

	"github.com/starford/organizer/internal/apperr"
)

// Screen is the kind of view a client renders.
type Screen string

const (
	ScreenItems    Screen = "items"
	ScreenNotes    Screen = "notes"
	ScreenTasks    Screen = "tasks"
	ScreenEditItem Screen = "edit-item"
	ScreenEditNote Screen = "edit-note"
)

var screens = map[Screen]struct{}{
	ScreenItems:    {},
	ScreenNotes:    {},
	ScreenTasks:    {},
	ScreenEditItem: {},
	ScreenEditNote: {},
}

// View is one entry of the navigation history. RecordID is set on edit
// screens; an empty RecordID on an edit screen means "add new".
type View struct {
	Screen   Screen `json:"screen"`
	RecordID string `json:"record_id,omitempty"`
}

// Validate rejects unknown screens.
func (v View) Validate() error {
	if _, ok := screens[v.Screen]; !ok {
		return fmt.Errorf("%w: unknown screen %q", apperr.ErrInvalid, v.Screen)
	}
	return nil
}

// Stack is the current view plus the views it replaced, most recent last.
type Stack struct {
	current *View
	history []View
}

// State is a serialisable snapshot of a Stack. Current is nil at root.
type State struct {
	Current *View  `json:"current"`
	History []View `json:"history"`
}

// Navigate makes v current, pushing the outgoing view (if any) onto history.
func (s *Stack) Navigate(v View) {
	if s.current != nil {
		s.history = append(s.history, *s.current)
	}
	s.current = &v
}

// GoBack restores the most recent history entry, or returns to root when the
// history is empty. At root it does nothing.
func (s *Stack) GoBack() {
	if s.current == nil {
		return
	}
	if n := len(s.history); n > 0 {
		prev := s.history[n-1]
		s.history = s.history[:n-1]
		s.current = &prev
		return
	}
	s.current = nil
}

// GoToRoot clears the history and returns to root.
func (s *Stack) GoToRoot() {
	s.current = nil
	s.history = nil
}

// AtRoot reports whether no screen is active.
func (s *Stack) AtRoot() bool {
	return s.current == nil
}

// Current returns the active view and false at root.
func (s *Stack) Current() (View, bool) {
	if s.current == nil {
		return View{}, false
	}
	return *s.current, true
}

// History returns a copy of the history, most recent last.
func (s *Stack) History() []View {
	return append([]View{}, s.history...)
}

// Snapshot returns the stack's state.
func (s *Stack) Snapshot() State {
	st := State{History: s.History()}
	if v, ok := s.Current(); ok {
		st.Current = &v
	}
	return st
}
