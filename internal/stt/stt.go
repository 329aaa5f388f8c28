// Package stt submits recorded utterances to a remote speech
// recognition service.
package stt

import (
	"context"
	"errors"
)

// ErrNotUnderstood means the service processed the audio but found no
// speech in it. Callers treat this as routine, not an error condition.
var ErrNotUnderstood = errors.New("speech not understood")

// Recognizer converts one utterance into text.
type Recognizer interface {
	// Recognize transcribes mono PCM16 audio in the given language tag
	// (for example "am-ET"). It returns ErrNotUnderstood when the
	// service found nothing; any other error is a service failure.
	Recognize(ctx context.Context, samples []int16, sampleRate int, language string) (string, error)
	Close() error
}
