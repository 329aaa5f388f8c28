package stt

import (
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

func resp(transcripts ...string) *speechpb.RecognizeResponse {
	r := &speechpb.RecognizeResponse{}
	for _, t := range transcripts {
		r.Results = append(r.Results, &speechpb.SpeechRecognitionResult{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: t},
			},
		})
	}
	return r
}

func TestBestTranscriptPicksLastResult(t *testing.T) {
	got, err := bestTranscript(resp("first pass", "good morning"))
	if err != nil {
		t.Fatalf("bestTranscript: %v", err)
	}
	if got != "good morning" {
		t.Fatalf("transcript = %q, want last result", got)
	}
}

func TestBestTranscriptEmptyIsNotUnderstood(t *testing.T) {
	if _, err := bestTranscript(resp()); !errors.Is(err, ErrNotUnderstood) {
		t.Fatalf("empty response should map to ErrNotUnderstood, got %v", err)
	}
	if _, err := bestTranscript(resp("")); !errors.Is(err, ErrNotUnderstood) {
		t.Fatalf("blank transcript should map to ErrNotUnderstood, got %v", err)
	}
}

func TestBestTranscriptSkipsResultsWithoutAlternatives(t *testing.T) {
	r := resp("kept")
	r.Results = append(r.Results, &speechpb.SpeechRecognitionResult{})
	got, err := bestTranscript(r)
	if err != nil {
		t.Fatalf("bestTranscript: %v", err)
	}
	if got != "kept" {
		t.Fatalf("transcript = %q, want kept", got)
	}
}
