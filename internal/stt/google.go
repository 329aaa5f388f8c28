package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"noter/internal/mic"
)

// Google recognizes speech with the Google Cloud Speech-to-Text API.
// Credentials come from the usual application-default chain.
type Google struct {
	client *speech.Client
}

// NewGoogle creates the client once; it is reused across utterances.
func NewGoogle(ctx context.Context) (*Google, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Recognize(ctx context.Context, samples []int16, sampleRate int, language string) (string, error) {
	if len(samples) == 0 {
		return "", ErrNotUnderstood
	}
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: mic.Bytes(samples),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return bestTranscript(resp)
}

func (g *Google) Close() error {
	return g.client.Close()
}

// bestTranscript picks the top alternative of the last final result,
// matching how the service orders hypotheses.
func bestTranscript(resp *speechpb.RecognizeResponse) (string, error) {
	var transcript string
	for _, res := range resp.GetResults() {
		alts := res.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		transcript = alts[0].GetTranscript()
	}
	if transcript == "" {
		return "", ErrNotUnderstood
	}
	return transcript, nil
}
