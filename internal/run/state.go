package run

import (
	"fmt"
	"sync"
	"sync/atomic"

	"noter/internal/config"
)

// State is the shared mutable state both pipelines read: whether the
// speech pipeline should listen, the active recognition language, and
// the last user-visible error. It is passed explicitly to everything
// that needs it.
type State struct {
	listening atomic.Bool

	mu        sync.RWMutex
	language  string
	lastError string
}

// NewState returns state with the given language, audio listening on.
func NewState(language string) *State {
	s := &State{language: language}
	s.listening.Store(true)
	return s
}

// Listening reports whether the speech pipeline should be listening.
func (s *State) Listening() bool {
	return s.listening.Load()
}

// SetListening flips the speech pipeline gate. An in-flight listen
// finishes first; the change applies before the next attempt.
func (s *State) SetListening(v bool) {
	s.listening.Store(v)
}

// ToggleListening flips the gate and returns the new value.
func (s *State) ToggleListening() bool {
	for {
		old := s.listening.Load()
		if s.listening.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Language returns the active recognition language tag.
func (s *State) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage switches the language for subsequent recognition calls.
// In-flight calls keep the tag they started with.
func (s *State) SetLanguage(lang string) error {
	switch lang {
	case config.LangAmharic, config.LangEnglish:
	default:
		return fmt.Errorf("unsupported language %q", lang)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return nil
}

// ReportError records a user-visible error message.
func (s *State) ReportError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// LastError returns the most recent user-visible error, if any.
func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
