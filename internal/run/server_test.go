package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"noter/internal/config"
	"noter/internal/logging"
	"noter/internal/stt"
)

type fakeRecognizer struct {
	transcript string
	err        error
	langs      []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []int16, _ int, language string) (string, error) {
	f.langs = append(f.langs, language)
	return f.transcript, f.err
}

func (f *fakeRecognizer) Close() error { return nil }

type fakeEngine struct {
	text  string
	err   error
	langs []string
}

func (f *fakeEngine) Recognize(_ []byte, lang string) (string, error) {
	f.langs = append(f.langs, lang)
	return f.text, f.err
}

func (f *fakeEngine) Close() error { return nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.NotesFile = filepath.Join(t.TempDir(), "notes.txt")
	srv := newServer(cfg, logging.NewTestLogger(), nil)
	srv.cancel = func() {}
	return srv
}

func TestSpawnRegistersBeforeGoroutineStarts(t *testing.T) {
	srv := testServer(t)
	started := make(chan struct{})
	release := make(chan struct{})
	srv.spawn(context.Background(), func(context.Context) {
		close(started)
		<-release
	})

	done := make(chan struct{})
	go func() {
		srv.wg.Wait()
		close(done)
	}()

	<-started
	select {
	case <-done:
		t.Fatalf("Wait returned while a spawned loop was still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-done
}

func TestStartupSurvivesBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, cfgErr := config.Load(path)
	if cfgErr == nil {
		t.Fatalf("expected parse error")
	}
	if cfg == nil {
		t.Fatalf("Load must return defaults alongside the error")
	}
	cfg.NotesFile = filepath.Join(t.TempDir(), "notes.txt")

	srv := newServer(cfg, logging.NewTestLogger(), cfgErr)
	srv.cancel = func() {}

	st := srv.statusPayload()
	if !strings.HasPrefix(st.LastError, "Config Error:") {
		t.Fatalf("startup config failure must be visible, got %q", st.LastError)
	}
	if st.Language != config.LangAmharic {
		t.Fatalf("daemon should run on defaults, language = %q", st.Language)
	}
}

func notesContent(t *testing.T, srv *Server) string {
	t.Helper()
	data, err := os.ReadFile(srv.cfg.NotesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ""
		}
		t.Fatalf("read notes: %v", err)
	}
	return string(data)
}

func TestLanguageCommandAppliesToNextCalls(t *testing.T) {
	srv := testServer(t)
	rec := &fakeRecognizer{transcript: "hello"}
	srv.recognizer = rec

	srv.apply(Command{Op: "language", Arg: config.LangEnglish})

	srv.handleUtterance(context.Background(), []int16{1, 2, 3})
	if len(rec.langs) != 1 || rec.langs[0] != config.LangEnglish {
		t.Fatalf("recognizer language = %v, want [en-US]", rec.langs)
	}
	if got := config.OCRLanguage(srv.state.Language()); got != "eng" {
		t.Fatalf("next OCR language = %q, want eng", got)
	}
}

func TestLanguageCommandRejectsUnknownTag(t *testing.T) {
	srv := testServer(t)
	srv.apply(Command{Op: "language", Arg: "fr-FR"})
	if srv.state.Language() != config.LangAmharic {
		t.Fatalf("language should stay default, got %q", srv.state.Language())
	}
}

func TestAudioCommands(t *testing.T) {
	srv := testServer(t)
	if !srv.state.Listening() {
		t.Fatalf("listening should start enabled")
	}
	srv.apply(Command{Op: "audio", Arg: "stop"})
	if srv.state.Listening() {
		t.Fatalf("stop should disable listening")
	}
	srv.apply(Command{Op: "audio", Arg: "start"})
	if !srv.state.Listening() {
		t.Fatalf("start should enable listening")
	}
	srv.apply(Command{Op: "audio", Arg: "toggle"})
	if srv.state.Listening() {
		t.Fatalf("toggle should flip listening off")
	}
}

func TestHandleUtteranceRecordsNote(t *testing.T) {
	srv := testServer(t)
	srv.recognizer = &fakeRecognizer{transcript: "good morning"}

	srv.handleUtterance(context.Background(), []int16{1})

	notes := notesContent(t, srv)
	if !strings.Contains(notes, "Audio: good morning") {
		t.Fatalf("notes = %q, want an Audio line", notes)
	}
	if got := srv.sink.Rendered(); !strings.HasPrefix(got, "Audio Text:\ngood morning") {
		t.Fatalf("rendered = %q", got)
	}
}

func TestHandleUtteranceNotUnderstoodIsSilent(t *testing.T) {
	srv := testServer(t)
	srv.recognizer = &fakeRecognizer{err: stt.ErrNotUnderstood}

	srv.handleUtterance(context.Background(), []int16{1})

	if notes := notesContent(t, srv); notes != "" {
		t.Fatalf("no note expected, got %q", notes)
	}
	if srv.state.LastError() != "" {
		t.Fatalf("not-understood must not surface an error, got %q", srv.state.LastError())
	}
}

func TestHandleUtteranceServiceErrorSurfaces(t *testing.T) {
	srv := testServer(t)
	srv.recognizer = &fakeRecognizer{err: errors.New("quota exceeded")}

	srv.handleUtterance(context.Background(), []int16{1})

	if notes := notesContent(t, srv); notes != "" {
		t.Fatalf("no note expected, got %q", notes)
	}
	if got := srv.state.LastError(); !strings.HasPrefix(got, "Audio Error:") {
		t.Fatalf("expected visible audio error, got %q", got)
	}
}

func TestHandleUtteranceBlankTranscriptIsSilent(t *testing.T) {
	srv := testServer(t)
	srv.recognizer = &fakeRecognizer{transcript: "   "}

	srv.handleUtterance(context.Background(), []int16{1})

	if notes := notesContent(t, srv); notes != "" {
		t.Fatalf("no note expected for blank transcript, got %q", notes)
	}
}

func TestExtractTextRecordsCameraNote(t *testing.T) {
	srv := testServer(t)
	srv.apply(Command{Op: "language", Arg: config.LangEnglish})
	eng := &fakeEngine{text: "HELLO"}

	srv.extractText(context.Background(), eng, []byte("png"))

	if len(eng.langs) != 1 || eng.langs[0] != "eng" {
		t.Fatalf("ocr language = %v, want [eng]", eng.langs)
	}
	notes := notesContent(t, srv)
	if !strings.Contains(notes, "Camera: HELLO") {
		t.Fatalf("notes = %q, want a Camera line", notes)
	}
	if got := srv.sink.Rendered(); !strings.HasPrefix(got, "Camera Text:\nHELLO") {
		t.Fatalf("rendered = %q", got)
	}
}

func TestExtractTextEmptyProducesNoEvent(t *testing.T) {
	srv := testServer(t)
	eng := &fakeEngine{text: ""}

	srv.extractText(context.Background(), eng, []byte("png"))

	if notes := notesContent(t, srv); notes != "" {
		t.Fatalf("empty extraction must not write a note, got %q", notes)
	}
	if srv.metrics.cameraNotes.Load() != 0 {
		t.Fatalf("no camera note should be counted")
	}
}

func TestExtractTextEngineErrorSurfaces(t *testing.T) {
	srv := testServer(t)
	eng := &fakeEngine{err: errors.New("tesseract crashed")}

	srv.extractText(context.Background(), eng, []byte("png"))

	if got := srv.state.LastError(); !strings.HasPrefix(got, "Camera Error:") {
		t.Fatalf("expected visible camera error, got %q", got)
	}
}

func TestStatusPayload(t *testing.T) {
	srv := testServer(t)
	srv.recognizer = &fakeRecognizer{transcript: "selam"}
	srv.handleUtterance(context.Background(), []int16{1})
	srv.apply(Command{Op: "audio", Arg: "stop"})

	st := srv.statusPayload()
	if !st.Running {
		t.Fatalf("running should be true")
	}
	if st.Listening {
		t.Fatalf("listening should reflect the stop command")
	}
	if st.Language != config.LangAmharic {
		t.Fatalf("language = %q", st.Language)
	}
	if len(st.Notes) != 1 || st.Notes[0].Text != "selam" {
		t.Fatalf("notes tail = %+v", st.Notes)
	}
	if !strings.HasPrefix(st.Results, "Audio Text:\nselam") {
		t.Fatalf("results = %q", st.Results)
	}
}

func TestReloadConfigAppliesRuntimeSettings(t *testing.T) {
	srv := testServer(t)
	path := filepath.Join(t.TempDir(), "config.json")
	srv.cfg.Paths.ConfigPath = path
	doc := `{"language": "en-US", "tts_enabled": true, "notes_file": "` + srv.cfg.NotesFile + `"}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	srv.apply(Command{Op: "reload"})

	if srv.state.Language() != config.LangEnglish {
		t.Fatalf("reload should switch language, got %q", srv.state.Language())
	}
}
