package ocr

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is an Engine backed by a local libtesseract client. The
// client is not safe for concurrent use, so calls are serialized; the
// camera pipeline runs a single OCR worker anyway.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	lang   string
}

// NewTesseract creates a Tesseract engine. languagesDir optionally
// overrides the traineddata directory.
func NewTesseract(languagesDir string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if languagesDir != "" {
		if err := client.SetTessdataPrefix(languagesDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("tessdata prefix: %w", err)
		}
	}
	return &Tesseract{client: client}, nil
}

func (t *Tesseract) Recognize(image []byte, lang string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if lang != t.lang {
		if err := t.client.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("set language %q: %w", lang, err)
		}
		t.lang = lang
	}
	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return Clean(text), nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// AvailableLanguages lists installed traineddata models.
func AvailableLanguages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}
