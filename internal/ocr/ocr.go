// Package ocr extracts text from camera frames. The Engine interface
// keeps the pipeline independent of the Tesseract binding so tests can
// substitute a fake.
package ocr

import "strings"

// Engine converts an encoded image into text.
type Engine interface {
	// Recognize runs text recognition over an encoded image using the
	// given language model ("amh", "eng"). The result is whitespace
	// trimmed; empty means nothing was found.
	Recognize(image []byte, lang string) (string, error)
	Close() error
}

// Clean trims recognition output the way all engines should report it.
func Clean(text string) string {
	return strings.TrimSpace(text)
}
