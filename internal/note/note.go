// Package note holds the recognition event model and the output sink
// that persists events, maintains the visible results buffer, and
// triggers speech synthesis.
package note

import (
	"time"
)

// Source identifies which pipeline produced an event.
type Source string

const (
	SourceCamera Source = "Camera"
	SourceAudio  Source = "Audio"
)

// Event is a single successfully recognized piece of text.
type Event struct {
	Source    Source    `json:"source"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Label returns the heading used for this source in the results buffer.
func (s Source) Label() string {
	if s == SourceAudio {
		return "Audio Text:"
	}
	return "Camera Text:"
}
