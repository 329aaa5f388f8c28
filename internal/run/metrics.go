package run

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type metrics struct {
	frames        atomic.Int64
	framesSkipped atomic.Int64
	cameraNotes   atomic.Int64
	audioNotes    atomic.Int64
	ttsPlays      atomic.Int64
	errors        atomic.Int64
}

func (m *metrics) incFrames()        { m.frames.Add(1) }
func (m *metrics) incFramesSkipped() { m.framesSkipped.Add(1) }
func (m *metrics) incCameraNotes()   { m.cameraNotes.Add(1) }
func (m *metrics) incAudioNotes()    { m.audioNotes.Add(1) }
func (m *metrics) incTTSPlays()      { m.ttsPlays.Add(1) }
func (m *metrics) incErrors()        { m.errors.Add(1) }

func (s *Server) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "noter_frames_total %d\n", s.metrics.frames.Load())
	fmt.Fprintf(w, "noter_frames_skipped_total %d\n", s.metrics.framesSkipped.Load())
	fmt.Fprintf(w, "noter_camera_notes_total %d\n", s.metrics.cameraNotes.Load())
	fmt.Fprintf(w, "noter_audio_notes_total %d\n", s.metrics.audioNotes.Load())
	fmt.Fprintf(w, "noter_tts_plays_total %d\n", s.metrics.ttsPlays.Load())
	fmt.Fprintf(w, "noter_errors_total %d\n", s.metrics.errors.Load())
}
