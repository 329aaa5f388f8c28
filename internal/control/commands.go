package control

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"noter/internal/config"
	"noter/internal/doctor"

	"github.com/spf13/cobra"
)

// NewStatusCmd queries daemon status.
func NewStatusCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var status Status
			if err := roundTrip(cfg, Request{Op: "status"}, &status); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			fmt.Printf("running: %v\nuptime: %.1fs\nlistening: %v\nlanguage: %s\n",
				status.Running, status.UptimeSec, status.Listening, status.Language)
			if status.LastError != "" {
				fmt.Printf("last error: %s\n", status.LastError)
			}
			for _, n := range status.Notes {
				fmt.Printf("%s  %-6s  %s\n", n.Timestamp.Format("15:04:05"), n.Source, n.Text)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

// NewHealthCmd pings the control socket.
func NewHealthCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon liveness via control socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return simpleRequest(cfg, Request{Op: "health"})
		},
	}
}

// NewLanguageCmd switches the recognition language in the running daemon.
func NewLanguageCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "language <am|en>",
		Short: "Switch recognition language (Amharic or English)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			tag, err := languageTag(args[0])
			if err != nil {
				return err
			}
			return simpleRequest(cfg, Request{Op: "language", Language: tag})
		},
	}
}

// languageTag normalizes a user-supplied language name to its tag.
func languageTag(arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "am", "amharic", strings.ToLower(config.LangAmharic):
		return config.LangAmharic, nil
	case "en", "english", strings.ToLower(config.LangEnglish):
		return config.LangEnglish, nil
	}
	return "", fmt.Errorf("unknown language %q (want am or en)", arg)
}

// NewAudioCmd starts, stops, or toggles speech listening.
func NewAudioCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "audio <start|stop|toggle>",
		Short: "Control speech listening in the running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			switch args[0] {
			case "start", "stop", "toggle":
			default:
				return fmt.Errorf("unknown audio action %q (want start, stop, or toggle)", args[0])
			}
			return simpleRequest(cfg, Request{Op: "audio", Audio: args[0]})
		},
	}
}

// NewSayCmd speaks text through the daemon's speaker.
func NewSayCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "say \"some text\"",
		Short: "Speak text aloud via the running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return simpleRequest(cfg, Request{Op: "say", Text: args[0]})
		},
	}
}

// NewReloadCmd asks the daemon to reload config.
func NewReloadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload config in the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return simpleRequest(cfg, Request{Op: "reload"})
		},
	}
}

// NewTailLogCmd tails the main log file (simple last N lines).
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-log",
		Short: "Show last 50 log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return tailFile(cfg.Paths.LogPath, 50)
		},
	}
}

// NewTailNotesCmd shows the last saved notes.
func NewTailNotesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-notes",
		Short: "Show last 20 saved notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return tailFile(cfg.NotesFile, 20)
		},
	}
}

func tailFile(path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			fmt.Println(l)
		}
	}
	return nil
}

// NewDoctorCmd runs environment checks, probing camera and microphone.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check camera, microphone, language data, and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			results := doctor.Run(cfg, true)
			exitCode := 0
			for _, r := range results {
				status := "ok"
				if !r.Pass {
					status = "fail"
					exitCode = 1
				}
				fmt.Printf("%-12s %-4s %s\n", r.Name, status, r.Detail)
			}
			if exitCode != 0 {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
}
