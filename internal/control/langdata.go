package control

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"noter/internal/config"
	"noter/internal/ocr"

	"github.com/spf13/cobra"
)

// Registry of the Tesseract fast models the reader supports.
var langdataRegistry = map[string]string{
	"amh": "https://github.com/tesseract-ocr/tessdata_fast/raw/main/amh.traineddata",
	"eng": "https://github.com/tesseract-ocr/tessdata_fast/raw/main/eng.traineddata",
}

// NewLangdataCmd wires up the langdata subcommands (list/download).
func NewLangdataCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langdata",
		Short: "List/download OCR language data",
	}
	cmd.AddCommand(newLangdataListCmd(cfgPath))
	cmd.AddCommand(newLangdataDownloadCmd(cfgPath))
	return cmd
}

// langdataDir resolves where traineddata files live for this install.
func langdataDir(cfg *config.Config) string {
	if cfg.OCR.LanguagesDir != "" {
		return cfg.OCR.LanguagesDir
	}
	return filepath.Join(cfg.Paths.StateDir, "tessdata")
}

func newLangdataListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known language models and those installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			installed := map[string]bool{}
			if langs, err := ocr.AvailableLanguages(); err == nil {
				for _, l := range langs {
					installed[l] = true
				}
			}
			entries, _ := os.ReadDir(langdataDir(cfg))
			for _, e := range entries {
				if !e.IsDir() {
					installed[trimTraineddata(e.Name())] = true
				}
			}
			names := make([]string, 0, len(langdataRegistry))
			for n := range langdataRegistry {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				avail := ""
				if installed[n] {
					avail = "(installed)"
				}
				fmt.Printf("- %s %s\n", n, avail)
			}
			return nil
		},
	}
}

func trimTraineddata(name string) string {
	const suffix = ".traineddata"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}

func newLangdataDownloadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "download <lang>",
		Short: "Download a language model from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := langdataRegistry[name]; !ok {
				return fmt.Errorf("unknown language %q; run langdata list", name)
			}
			dir := langdataDir(cfg)
			if err := downloadLangdata(name, dir); err != nil {
				return err
			}
			// Persist the directory so the daemon picks it up.
			if cfg.OCR.LanguagesDir == "" {
				if _, err := config.Update(*cfgPath, func(c *config.Config) {
					if c.OCR.LanguagesDir == "" {
						c.OCR.LanguagesDir = dir
					}
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func downloadLangdata(name, dir string) error {
	url := langdataRegistry[name]
	dest := filepath.Join(dir, name+".traineddata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fmt.Printf("downloading %s -> %s\n", name, dest)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 200 {
		return fmt.Errorf("download failed: %s", resp.Status)
	}
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}
