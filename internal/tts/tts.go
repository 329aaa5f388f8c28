// Package tts synthesizes speech for recognized text and plays it back.
// Synthesis uses the Google Translate speech endpoint (the same service
// behind gTTS); playback decodes the MP3 from a temporary file.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	synthEndpoint = "https://translate.google.com/translate_tts"
	// The endpoint rejects long inputs; anything past this is cut.
	maxSynthChars = 200
)

// Speaker synthesizes and plays text. One Speak call runs to playback
// completion before returning; the speech pipeline relies on that.
type Speaker struct {
	httpClient *http.Client
	logger     *logrus.Logger
	endpoint   string
}

// NewSpeaker returns a Speaker with a bounded request timeout.
func NewSpeaker(logger *logrus.Logger) *Speaker {
	return &Speaker{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		endpoint:   synthEndpoint,
	}
}

// Speak synthesizes text in lang ("am", "en"), writes the audio to a
// temporary file, plays it to completion, and removes the file. The
// temp file is removed even when playback fails.
func (s *Speaker) Speak(ctx context.Context, text, lang string) error {
	audio, err := s.synthesize(ctx, text, lang)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "noter-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("temp audio file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warnf("remove tts file: %v", err)
		}
	}()
	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return fmt.Errorf("write tts file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return playMP3(ctx, path)
}

func (s *Speaker) synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+synthQuery(text, lang), nil)
	if err != nil {
		return nil, err
	}
	// The endpoint serves browsers; an empty agent gets rejected.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request: %s", resp.Status)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts response empty")
	}
	return audio, nil
}

func synthQuery(text, lang string) string {
	// Cut on a rune boundary; a split Amharic rune is invalid UTF-8.
	if r := []rune(text); len(r) > maxSynthChars {
		text = string(r[:maxSynthChars])
	}
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	return q.Encode()
}
