package note

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// keepChars is how much of the previous render survives a new entry.
// The buffer is "newest block plus a truncated remainder", not a full
// history; the notes file is the complete record.
const keepChars = 200

// Speaker voices recognized text. Implemented by the tts package.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// Sink receives recognition events from both pipelines. It appends each
// one to the notes file, refreshes the rendered results buffer, keeps a
// bounded tail of recent events for status queries, and for audio events
// optionally speaks the text before returning.
type Sink struct {
	logger  *logrus.Logger
	speaker Speaker

	mu        sync.Mutex
	notesPath string
	rendered  string
	tail      []Event
	tailCap   int

	ttsEnabled bool
	ttsLang    string

	// Report surfaces a user-visible error message. Optional.
	Report func(msg string)
	// Notify observes every recorded event, after persistence. Optional.
	Notify func(ev Event)
}

// NewSink returns a sink writing to notesPath.
func NewSink(notesPath string, tailCap int, logger *logrus.Logger) *Sink {
	if tailCap < 1 {
		tailCap = 1
	}
	return &Sink{
		logger:    logger,
		notesPath: notesPath,
		tail:      make([]Event, 0, tailCap),
		tailCap:   tailCap,
	}
}

// SetSpeaker enables speech synthesis for audio events.
func (s *Sink) SetSpeaker(sp Speaker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaker = sp
}

// SetTTS updates whether audio events are spoken and in which language.
func (s *Sink) SetTTS(enabled bool, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttsEnabled = enabled
	s.ttsLang = lang
}

// SetTTSLanguage changes the synthesis language without touching the
// enabled flag (used when the user switches recognition language).
func (s *Sink) SetTTSLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttsLang = lang
}

// SetNotesPath switches the notes file for subsequent records.
func (s *Sink) SetNotesPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notesPath = path
}

// Record persists one event. Every failure is logged and reported but
// never returned to the producing pipeline.
func (s *Sink) Record(ctx context.Context, ev Event) {
	if err := s.appendNote(ev); err != nil {
		s.logger.Errorf("note save: %v", err)
		s.report(fmt.Sprintf("Note Save Error: %v", err))
	} else {
		s.logger.Infof("note saved from %s: %.50s", ev.Source, ev.Text)
	}
	s.updateBuffer(ev)

	s.mu.Lock()
	speaker := s.speaker
	speak := ev.Source == SourceAudio && s.ttsEnabled && speaker != nil
	lang := s.ttsLang
	notify := s.Notify
	s.mu.Unlock()

	if speak {
		// The audio pipeline waits for playback before its next listen.
		if err := speaker.Speak(ctx, ev.Text, lang); err != nil {
			s.logger.Errorf("tts: %v", err)
		}
	}
	if notify != nil {
		notify(ev)
	}
}

// appendNote opens, appends one line, and closes. No buffering across calls.
func (s *Sink) appendNote(ev Event) error {
	s.mu.Lock()
	path := s.notesPath
	s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("[%s] %s: %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Source, ev.Text)
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Sink) updateBuffer(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Truncate in characters, not bytes: Amharic runs three bytes per
	// rune and a byte slice would leave invalid UTF-8 in the buffer.
	prev := s.rendered
	if r := []rune(prev); len(r) > keepChars {
		prev = string(r[:keepChars])
	}
	s.rendered = fmt.Sprintf("%s\n%s\n\n%s", ev.Source.Label(), ev.Text, prev)

	s.tail = append(s.tail, ev)
	if len(s.tail) > s.tailCap {
		s.tail = s.tail[len(s.tail)-s.tailCap:]
	}
}

// Rendered returns the current results buffer for display.
func (s *Sink) Rendered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered
}

// SetRendered replaces the buffer contents (used to surface errors in
// the results view the way the pipelines do).
func (s *Sink) SetRendered(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rendered = text
}

// Tail returns the most recent events, oldest first.
func (s *Sink) Tail() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.tail))
	copy(out, s.tail)
	return out
}

func (s *Sink) report(msg string) {
	if s.Report != nil {
		s.Report(msg)
	}
}
