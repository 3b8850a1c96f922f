// Package session holds the per-view state machines that sit between user
// input and the remote service: Idle -> Loading -> Ready | Failed.
//
// Each submission is stamped with a generation token. A response carrying a
// token that is no longer current is discarded, so the last submission always
// wins. Sessions are not safe for concurrent use; drive each one from a
// single goroutine (the TUI update loop or straight-line CLI code).
package session

import "errors"

// ErrNoResult is returned when a report is requested before any result is held.
var ErrNoResult = errors.New("no result available")

// State is a view's request lifecycle state
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Token identifies one submission. The zero token is never issued.
type Token uint64

// Slot tracks one in-flight request and the last successful result.
type Slot[T any] struct {
	state  State
	gen    Token
	result T
	has    bool
	err    error
}

// Begin moves to Loading and returns the token the response must carry.
// Any earlier token becomes stale.
func (s *Slot[T]) Begin() Token {
	s.gen++
	s.state = Loading
	s.err = nil
	return s.gen
}

// Resolve stores v if tok is current. It reports whether v was accepted.
func (s *Slot[T]) Resolve(tok Token, v T) bool {
	if !s.current(tok) {
		return false
	}
	s.result = v
	s.has = true
	s.state = Ready
	return true
}

// Fail records err if tok is current. The previous result is kept.
func (s *Slot[T]) Fail(tok Token, err error) bool {
	if !s.current(tok) {
		return false
	}
	s.err = err
	s.state = Failed
	return true
}

// Reset returns to Idle, drops the result and invalidates in-flight tokens.
func (s *Slot[T]) Reset() {
	var zero T
	s.gen++
	s.state = Idle
	s.result = zero
	s.has = false
	s.err = nil
}

func (s *Slot[T]) current(tok Token) bool {
	return tok != 0 && tok == s.gen && s.state == Loading
}

// State returns the lifecycle state.
func (s *Slot[T]) State() State { return s.state }

// Err returns the error of the last failed request, if the slot is Failed.
func (s *Slot[T]) Err() error { return s.err }

// Result returns the last successful result.
func (s *Slot[T]) Result() (T, bool) { return s.result, s.has }
