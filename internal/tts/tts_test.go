package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"noter/internal/logging"
)

func TestSynthQuery(t *testing.T) {
	q, err := url.ParseQuery(synthQuery("good morning", "en"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Get("tl") != "en" {
		t.Fatalf("tl = %q, want en", q.Get("tl"))
	}
	if q.Get("q") != "good morning" {
		t.Fatalf("q = %q", q.Get("q"))
	}
	if q.Get("client") != "tw-ob" || q.Get("ie") != "UTF-8" {
		t.Fatalf("missing endpoint params: %v", q)
	}
}

func TestSynthQueryTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 1000)
	q, err := url.ParseQuery(synthQuery(long, "am"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := q.Get("q"); len(got) != maxSynthChars {
		t.Fatalf("q length = %d, want %d", len(got), maxSynthChars)
	}
}

func TestSynthQueryTruncatesAmharicOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ሰላም", 100) // 300 runes, 3 bytes each
	q, err := url.ParseQuery(synthQuery(long, "am"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := q.Get("q")
	if !utf8.ValidString(got) {
		t.Fatalf("query text is invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxSynthChars {
		t.Fatalf("rune count = %d, want %d", n, maxSynthChars)
	}
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tl"); got != "am" {
			t.Errorf("tl = %q, want am", got)
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	s := NewSpeaker(logging.NewTestLogger())
	s.endpoint = srv.URL

	audio, err := s.synthesize(context.Background(), "selam", "am")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", audio)
	}
}

func TestSynthesizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSpeaker(logging.NewTestLogger())
	s.endpoint = srv.URL

	if _, err := s.synthesize(context.Background(), "hi", "en"); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestSpeakRemovesTempFileOnPlaybackFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an mp3"))
	}))
	defer srv.Close()

	s := NewSpeaker(logging.NewTestLogger())
	s.endpoint = srv.URL

	before := tempMP3s(t)
	if err := s.Speak(context.Background(), "hi", "en"); err == nil {
		t.Fatalf("expected decode error for bogus audio")
	}
	if after := tempMP3s(t); after != before {
		t.Fatalf("temp mp3 count changed from %d to %d", before, after)
	}
}

func tempMP3s(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "noter-tts-*.mp3"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return len(matches)
}

func TestSynthesizeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := NewSpeaker(logging.NewTestLogger())
	s.endpoint = srv.URL

	if _, err := s.synthesize(context.Background(), "hi", "en"); err == nil {
		t.Fatalf("expected error for empty audio")
	}
}
