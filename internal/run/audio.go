package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noter/internal/mic"
	"noter/internal/note"
	"noter/internal/stt"
)

// pausePoll is how often the loop re-checks the listening gate while
// the speech pipeline is stopped.
const pausePoll = 100 * time.Millisecond

// audioLoop runs for the process lifetime: record one bounded
// utterance, submit it to the remote recognition service, record the
// result. The loop never exits on error; every failure surfaces and
// the next iteration tries again.
func (s *Server) audioLoop(ctx context.Context) {

	listener, err := mic.NewListener(s.cfg, s.logger)
	if err != nil {
		s.logger.Errorf("microphone init: %v", err)
		s.reportError(fmt.Sprintf("Audio Error: %v", err))
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			s.logger.Warnf("microphone close: %v", err)
		}
	}()

	if s.recognizer == nil {
		rec, err := stt.NewGoogle(ctx)
		if err != nil {
			s.logger.Errorf("speech service init: %v", err)
			s.reportError(fmt.Sprintf("Audio Error: %v", err))
			return
		}
		s.recognizer = rec
	}
	defer func() {
		if err := s.recognizer.Close(); err != nil {
			s.logger.Warnf("speech service close: %v", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		if !s.state.Listening() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pausePoll):
			}
			continue
		}

		samples, err := listener.Listen(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return
			case errors.Is(err, mic.ErrNoSpeech):
				s.logger.Debug("no speech within listen window")
			default:
				s.logger.Errorf("audio capture: %v", err)
				s.reportError(fmt.Sprintf("Audio Error: %v", err))
			}
			continue
		}
		s.handleUtterance(ctx, samples)
	}
}

// handleUtterance submits one recorded utterance and records the
// transcript. Exposed as a method so tests can drive it with a fake
// recognizer.
func (s *Server) handleUtterance(ctx context.Context, samples []int16) {
	text, err := s.recognizer.Recognize(ctx, samples, s.cfg.Audio.SampleRate, s.state.Language())
	if err != nil {
		if errors.Is(err, stt.ErrNotUnderstood) {
			s.logger.Debug("audio not understood")
			return
		}
		s.logger.Errorf("audio api: %v", err)
		s.reportError(fmt.Sprintf("Audio Error: %v", err))
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Debug("audio not understood")
		return
	}
	s.logger.Infof("audio recognition successful: %s", text)
	s.metrics.incAudioNotes()
	// Record blocks through TTS playback when enabled, so the next
	// listen starts only after the note has been spoken.
	s.sink.Record(ctx, note.Event{
		Source:    note.SourceAudio,
		Text:      text,
		Timestamp: time.Now(),
	})
}
