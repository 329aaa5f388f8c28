package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// LangAmharic and LangEnglish are the two supported recognition
	// language tags, as the remote speech service expects them.
	LangAmharic = "am-ET"
	LangEnglish = "en-US"

	defaultNotesFile     = "notes.txt"
	defaultResultsTail   = 10
	defaultUIAddr        = "127.0.0.1:8750"
	defaultStateDirLinux = ".local/state/noter"
	defaultConfigDir     = ".config/noter"
)

// Config holds user configuration loaded from the JSON config file.
// The four top-level keys are the user-facing settings; the nested
// sections tune the pipelines and the daemon plumbing.
type Config struct {
	CameraIndex int    `json:"camera_index"`
	Language    string `json:"language"`
	NotesFile   string `json:"notes_file"`
	TTSEnabled  bool   `json:"tts_enabled"`

	Audio struct {
		DeviceName       string  `json:"device_name"`
		SampleRate       int     `json:"sample_rate"`
		FrameMS          int     `json:"frame_ms"`
		VADAggressive    int     `json:"vad_aggressiveness"`
		AmbientSec       float64 `json:"ambient_sec"`
		ListenTimeoutSec float64 `json:"listen_timeout_sec"`
		PhraseLimitSec   float64 `json:"phrase_limit_sec"`
		SilenceMS        int     `json:"silence_ms"`
	} `json:"audio"`

	Camera struct {
		FPS int `json:"fps"`
	} `json:"camera"`

	OCR struct {
		// LanguagesDir overrides where Tesseract looks for traineddata.
		LanguagesDir string `json:"languages_dir"`
	} `json:"ocr"`

	Hook struct {
		Command     string            `json:"command"`
		Args        string            `json:"args"`
		CooldownSec float64           `json:"cooldown_sec"`
		TimeoutSec  float64           `json:"timeout_sec"`
		Env         map[string]string `json:"env"`
	} `json:"hook"`

	Logging struct {
		Level  string `json:"level"`  // debug, info, warn, error
		Format string `json:"format"` // text, json
		Stdout bool   `json:"stdout"`
	} `json:"logging"`

	Paths struct {
		StateDir   string `json:"state_dir"`
		LogPath    string `json:"log_path"`
		SocketPath string `json:"socket_path"`
		PidPath    string `json:"pid_path"`
		ConfigPath string `json:"-"`
	} `json:"paths"`

	UI struct {
		Addr        string `json:"addr"`
		ResultsTail int    `json:"results_tail"`
	} `json:"ui"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "noter")
	}

	cfg := &Config{}

	cfg.CameraIndex = 0
	cfg.Language = LangAmharic
	cfg.NotesFile = defaultNotesFile
	cfg.TTSEnabled = false

	cfg.Audio.SampleRate = 16000
	cfg.Audio.FrameMS = 20
	cfg.Audio.VADAggressive = 2
	cfg.Audio.AmbientSec = 0.5
	cfg.Audio.ListenTimeoutSec = 5
	cfg.Audio.PhraseLimitSec = 5
	cfg.Audio.SilenceMS = 800

	cfg.Camera.FPS = 30

	cfg.Hook.CooldownSec = 1
	cfg.Hook.TimeoutSec = 5
	cfg.Hook.Env = map[string]string{}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.Stdout = true

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "noter.log")
	cfg.Paths.SocketPath = filepath.Join(stateDir, "noter.sock")
	cfg.Paths.PidPath = filepath.Join(stateDir, "noter.pid")

	cfg.UI.Addr = defaultUIAddr
	cfg.UI.ResultsTail = defaultResultsTail

	return cfg, nil
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultConfigDir, "config.json")
}

// Load loads config from path, applying defaults for missing keys and
// NOTER_* env overrides on top. A missing file is created holding the
// defaults. A file that exists but does not parse returns the full
// default config alongside the error, so callers can surface the
// problem and keep running.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if cfg == nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if verr := validate(cfg); err == nil {
		err = verr
	}
	return cfg, err
}

// loadFile reads the on-disk config without env overrides. This is
// what Update mutates, so transient NOTER_* values never reach disk.
func loadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultPath()
	}
	cfg.Paths.ConfigPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Save(cfg, path); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		// A partial unmarshal may have clobbered fields; hand back
		// a clean default set.
		fresh, derr := Default()
		if derr != nil {
			return nil, derr
		}
		fresh.Paths.ConfigPath = path
		return fresh, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Update applies mutate to the stored config and writes it back. The
// file is re-read without env overrides first; an unreadable or
// unparseable file is left untouched.
func Update(path string, mutate func(*Config)) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return cfg, err
	}
	mutate(cfg)
	if err := Save(cfg, cfg.Paths.ConfigPath); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o600)
}

func validate(cfg *Config) error {
	switch cfg.Language {
	case LangAmharic, LangEnglish:
	default:
		lang := cfg.Language
		cfg.Language = LangAmharic
		return fmt.Errorf("unsupported language %q (want %s or %s)", lang, LangAmharic, LangEnglish)
	}
	return nil
}

// OCRLanguage maps a recognition language tag to its Tesseract model name.
func OCRLanguage(lang string) string {
	if lang == LangEnglish {
		return "eng"
	}
	return "amh"
}

// TTSLanguage maps a recognition language tag to its speech-synthesis tag.
func TTSLanguage(lang string) string {
	if lang == LangEnglish {
		return "en"
	}
	return "am"
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	dirs := []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath)}
	if d := filepath.Dir(cfg.NotesFile); d != "" && d != "." {
		dirs = append(dirs, d)
	}
	for _, p := range dirs {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NOTER_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("NOTER_TTS_ENABLED"); v != "" {
		cfg.TTSEnabled = v != "0" && strings.ToLower(v) != "false"
	}
	if v := os.Getenv("NOTER_NOTES_FILE"); v != "" {
		cfg.NotesFile = v
	}
	if v := os.Getenv("NOTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NOTER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("NOTER_UI_ADDR"); v != "" {
		cfg.UI.Addr = v
	}
}
