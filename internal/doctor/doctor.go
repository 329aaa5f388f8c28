// Package doctor performs static capability checks: which of the
// external collaborators (OCR data, camera, microphone, remote speech
// credentials) are usable. Failures never stop the app; the affected
// pipeline simply idles.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"noter/internal/config"
	"noter/internal/ocr"

	"github.com/sirupsen/logrus"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail"`
}

// Run executes capability checks. When probeDevices is false the
// camera and microphone are left untouched (the running daemon owns
// them); only static checks are performed.
func Run(cfg *config.Config, probeDevices bool) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkNotesWritable(cfg.NotesFile),
		checkLanguageData(),
		checkCredentials(),
		checkHookCommand(cfg.Hook.Command),
	}
	if probeDevices {
		results = append(results, checkCamera(cfg.CameraIndex))
		results = append(results, checkInputDevice())
	}
	return results
}

// Report logs one line per check, at warn level for failures.
func Report(logger *logrus.Logger, results []Result) {
	for _, r := range results {
		if r.Pass {
			logger.Infof("check %s: ok (%s)", r.Name, r.Detail)
		} else {
			logger.Warnf("check %s: FAIL (%s)", r.Name, r.Detail)
		}
	}
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkNotesWritable(path string) Result {
	const label = "notes file"
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	_ = f.Close()
	return Result{Name: label, Pass: true, Detail: path}
}

func checkLanguageData() Result {
	const label = "ocr language data"
	langs, err := ocr.AvailableLanguages()
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	have := map[string]bool{}
	for _, l := range langs {
		have[l] = true
	}
	var missing []string
	for _, want := range []string{"amh", "eng"} {
		if !have[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return Result{
			Name:   label,
			Pass:   false,
			Detail: fmt.Sprintf("missing traineddata: %s (run: noter langdata download)", strings.Join(missing, ", ")),
		}
	}
	return Result{Name: label, Pass: true, Detail: "amh, eng"}
}

func checkCredentials() Result {
	const label = "speech credentials"
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Application-default credentials written by gcloud.
	home, err := os.UserHomeDir()
	if err == nil {
		adc := filepath.Join(home, ".config", "gcloud", "application_default_credentials.json")
		if _, err := os.Stat(adc); err == nil {
			return Result{Name: label, Pass: true, Detail: adc}
		}
	}
	return Result{Name: label, Pass: false, Detail: "set GOOGLE_APPLICATION_CREDENTIALS or run gcloud auth application-default login"}
}

func checkHookCommand(cmd string) Result {
	const label = "hook.command"
	if cmd == "" {
		return Result{Name: label, Pass: true, Detail: "not configured (optional)"}
	}
	path := os.ExpandEnv(cmd)
	if strings.ContainsAny(path, `/\`) {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; set hook.command to an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}
