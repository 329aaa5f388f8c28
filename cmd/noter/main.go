package main

import (
	"fmt"
	"os"

	"noter/internal/control"
	"noter/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "noter",
		Short: "Noter — assistive camera and speech reader",
		Long: `Noter reads printed text through the camera and spoken notes through the
microphone, shows both on a local web page, saves them to a notes file,
and can read them back aloud. Recognition works in Amharic and English.

Key commands:
  start|stop|restart        Daemon lifecycle
  status [--json]           Uptime, language, last notes
  language am|en            Switch recognition language
  audio start|stop|toggle   Control speech listening
  say "text"                Speak text aloud
  mic list|set              Select microphone
  doctor|setup              Check devices / download language data
  langdata list|download    Manage OCR language models
  service install|uninstall|status   launchd/systemd helper
  health|reload             Liveness ping, config reload
  tail-log|tail-notes       Show recent log lines / notes
  transcribe file.wav       Transcribe a WAV file

Env overrides: NOTER_LANGUAGE, NOTER_TTS_ENABLED, NOTER_NOTES_FILE,
               NOTER_LOG_LEVEL, NOTER_LOG_FORMAT, NOTER_UI_ADDR`,
		Example: `  noter start --language en-US
  noter language am
  noter audio toggle
  noter say "selam"
  noter langdata download amh
  noter service install --env NOTER_LOG_LEVEL=debug
  noter tail-notes`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("Noter v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (JSON). Defaults to ~/.config/noter/config.json")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewLanguageCmd(cfgPath))
	root.AddCommand(control.NewAudioCmd(cfgPath))
	root.AddCommand(control.NewSayCmd(cfgPath))
	root.AddCommand(control.NewReloadCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewTailNotesCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewServiceCmd(cfgPath))
	root.AddCommand(control.NewSetupCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewLangdataCmd(cfgPath))

	// Hidden internal serve command used by start.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	applyColorHelp(root)

	return root.Execute()
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%sNoter%s — assistive camera and speech reader %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sReads printed text via camera OCR, transcribes speech, and speaks notes aloud.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  noter [command] [flags]\n\n")

		write("%sKey commands%s\n", bold, reset)
		writeln("  start|stop|restart          daemon lifecycle")
		writeln("  status [--json]             uptime, language, last notes")
		writeln("  language am|en              switch recognition language")
		writeln("  audio start|stop|toggle     control speech listening")
		writeln("  say \"text\"                 speak text aloud")
		writeln("  mic list|set                select input device")
		writeln("  doctor                      check camera/mic/language data")
		writeln("  setup                       create dirs, download language data")
		writeln("  langdata list|download      manage OCR language models")
		writeln("  service install|uninstall|status manage launchd/systemd service")
		writeln("  health|reload               liveness ping, config reload")
		writeln("  tail-log|tail-notes         show recent log lines / notes")
		writeln("  transcribe file.wav         transcribe a WAV file")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  -c, --config <path>     config file (default ~/.config/noter/config.json)")
		writeln("  Env: NOTER_LANGUAGE=en-US, NOTER_TTS_ENABLED=1,")
		writeln("       NOTER_NOTES_FILE=path, NOTER_LOG_LEVEL=debug,")
		writeln("       NOTER_LOG_FORMAT=json, NOTER_UI_ADDR=host:port")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		writeln("  noter start --language en-US")
		writeln("  noter language am")
		writeln("  noter audio toggle")
		writeln("  noter say \"selam\"")
		writeln("  noter langdata download amh")
		writeln("  noter tail-notes")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
