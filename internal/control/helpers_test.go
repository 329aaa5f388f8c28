package control

import (
	"testing"

	"noter/internal/config"

	"github.com/go-audio/audio"
)

func TestLanguageTag(t *testing.T) {
	cases := map[string]string{
		"am":      config.LangAmharic,
		"amharic": config.LangAmharic,
		"am-ET":   config.LangAmharic,
		"en":      config.LangEnglish,
		"English": config.LangEnglish,
		"en-us":   config.LangEnglish,
	}
	for in, want := range cases {
		got, err := languageTag(in)
		if err != nil {
			t.Fatalf("languageTag(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("languageTag(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := languageTag("fr"); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
}

func TestTrimTraineddata(t *testing.T) {
	if got := trimTraineddata("amh.traineddata"); got != "amh" {
		t.Fatalf("got %q", got)
	}
	if got := trimTraineddata("notes.txt"); got != "notes.txt" {
		t.Fatalf("got %q", got)
	}
}

func TestDownmixStereoToMono(t *testing.T) {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 16000},
		Data:           []int{100, 300, -200, -400},
		SourceBitDepth: 16,
	}
	got := downmix(buf)
	if len(got) != 2 || got[0] != 200 || got[1] != -300 {
		t.Fatalf("downmix = %v", got)
	}
}

func TestDownmixScalesBitDepth(t *testing.T) {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           []int{1 << 20},
		SourceBitDepth: 24,
	}
	got := downmix(buf)
	if len(got) != 1 || got[0] != 1<<12 {
		t.Fatalf("downmix 24-bit = %v", got)
	}
}
