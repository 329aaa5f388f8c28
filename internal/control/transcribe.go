package control

import (
	"fmt"
	"strings"
	"time"

	"noter/internal/config"
	"noter/internal/hook"
	"noter/internal/logging"
	"noter/internal/note"
	"noter/internal/stt"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd transcribes a WAV file with the remote speech service.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			lang := cfg.Language
			if flagLang, _ := cmd.Flags().GetString("language"); flagLang != "" {
				if lang, err = languageTag(flagLang); err != nil {
					return err
				}
			}

			samples, rate, err := readWAVMono(args[0])
			if err != nil {
				return err
			}

			rec, err := stt.NewGoogle(cmd.Context())
			if err != nil {
				return err
			}
			defer rec.Close()
			txt, err := rec.Recognize(cmd.Context(), samples, rate, lang)
			if err != nil {
				return err
			}
			txt = strings.TrimSpace(txt)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), txt)

			if wantNote, _ := cmd.Flags().GetBool("note"); wantNote {
				sink := note.NewSink(cfg.NotesFile, cfg.UI.ResultsTail, logger)
				sink.Record(cmd.Context(), note.Event{Source: note.SourceAudio, Text: txt, Timestamp: time.Now()})
			}

			if wantHook, _ := cmd.Flags().GetBool("hook"); wantHook {
				r := hook.NewRunner(cfg, logger)
				if !r.Enabled() {
					return fmt.Errorf("no hook configured; set hook.command in config")
				}
				job := hook.Job{Source: note.SourceAudio, Text: txt, Timestamp: time.Now()}
				return r.Run(cmd.Context(), job)
			}
			return nil
		},
	}
	cmd.Flags().String("language", "", "recognition language (am or en, default from config)")
	cmd.Flags().Bool("note", false, "also append the transcript to the notes file")
	cmd.Flags().Bool("hook", false, "also send the transcript through the configured hook")
	return cmd
}
