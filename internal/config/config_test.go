package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if cfg.CameraIndex != 0 {
		t.Fatalf("camera_index default = %d, want 0", cfg.CameraIndex)
	}
	if cfg.Language != LangAmharic {
		t.Fatalf("language default = %q, want %q", cfg.Language, LangAmharic)
	}
	if cfg.NotesFile != "notes.txt" {
		t.Fatalf("notes_file default = %q, want notes.txt", cfg.NotesFile)
	}
	if cfg.TTSEnabled {
		t.Fatalf("tts_enabled should default to false")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	doc := `{"camera_index": 2, "language": "en-US", "unknown_key": true}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CameraIndex != 2 {
		t.Fatalf("camera_index = %d, want 2", cfg.CameraIndex)
	}
	if cfg.Language != LangEnglish {
		t.Fatalf("language = %q, want %q", cfg.Language, LangEnglish)
	}
	// Missing keys keep their defaults.
	if cfg.NotesFile != "notes.txt" {
		t.Fatalf("notes_file = %q, want default", cfg.NotesFile)
	}
	if cfg.TTSEnabled {
		t.Fatalf("tts_enabled should keep default false")
	}
}

func TestLoadMissingFileCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Language != LangAmharic {
		t.Fatalf("language = %q, want default", cfg.Language)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("created file is not valid JSON: %v", err)
	}
	for _, key := range []string{"camera_index", "language", "notes_file", "tts_enabled"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("created file missing key %q", key)
		}
	}
}

func TestLoadParseFailureFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg == nil {
		t.Fatalf("expected default config alongside error")
	}
	if cfg.Language != LangAmharic || cfg.NotesFile != "notes.txt" {
		t.Fatalf("fallback config is not the default set: %+v", cfg)
	}
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"language": "fr-FR"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if cfg.Language != LangAmharic {
		t.Fatalf("language should reset to default, got %q", cfg.Language)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	t.Setenv("NOTER_LANGUAGE", "en-US")
	t.Setenv("NOTER_TTS_ENABLED", "1")
	t.Setenv("NOTER_LOG_LEVEL", "debug")
	t.Setenv("NOTER_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Language != LangEnglish {
		t.Fatalf("language override failed: %q", cfg.Language)
	}
	if !cfg.TTSEnabled {
		t.Fatalf("tts override failed")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
}

func TestUpdateDoesNotPersistEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if _, err := Load(path); err != nil {
		t.Fatalf("create defaults: %v", err)
	}

	t.Setenv("NOTER_LANGUAGE", "en-US")
	t.Setenv("NOTER_TTS_ENABLED", "1")

	cfg, err := Update(path, func(c *Config) { c.Audio.DeviceName = "USB Mic" })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.Audio.DeviceName != "USB Mic" {
		t.Fatalf("mutation lost: %+v", cfg.Audio)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var stored Config
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("parse stored config: %v", err)
	}
	if stored.Language != LangAmharic {
		t.Fatalf("env language leaked to disk: %q", stored.Language)
	}
	if stored.TTSEnabled {
		t.Fatalf("env tts_enabled leaked to disk")
	}
	if stored.Audio.DeviceName != "USB Mic" {
		t.Fatalf("stored device name = %q", stored.Audio.DeviceName)
	}
}

func TestUpdateLeavesBrokenFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Update(path, func(c *Config) { c.CameraIndex = 3 }); err == nil {
		t.Fatalf("expected parse error")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{not json" {
		t.Fatalf("broken file was rewritten: %q", data)
	}
}

func TestLanguageMappings(t *testing.T) {
	if got := OCRLanguage(LangAmharic); got != "amh" {
		t.Fatalf("OCRLanguage(am-ET) = %q", got)
	}
	if got := OCRLanguage(LangEnglish); got != "eng" {
		t.Fatalf("OCRLanguage(en-US) = %q", got)
	}
	if got := TTSLanguage(LangAmharic); got != "am" {
		t.Fatalf("TTSLanguage(am-ET) = %q", got)
	}
	if got := TTSLanguage(LangEnglish); got != "en" {
		t.Fatalf("TTSLanguage(en-US) = %q", got)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Hook.Command = "/bin/echo"
	cfg.CameraIndex = 1

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Hook.Command != "/bin/echo" || loaded.CameraIndex != 1 {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
