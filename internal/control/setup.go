package control

import (
	"fmt"
	"os"
	"path/filepath"

	"noter/internal/config"

	"github.com/spf13/cobra"
)

// NewSetupCmd creates state directories and downloads missing language
// data. Loading the config already writes the default file if absent.
func NewSetupCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create state dirs and download OCR language data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := config.MustStatePaths(cfg); err != nil {
				return err
			}
			fmt.Println("config:", cfg.Paths.ConfigPath)
			fmt.Println("state dir:", cfg.Paths.StateDir)

			dir := langdataDir(cfg)
			for _, name := range []string{"amh", "eng"} {
				dest := filepath.Join(dir, name+".traineddata")
				if _, err := os.Stat(dest); err == nil {
					fmt.Printf("language data %s already present\n", name)
					continue
				}
				if err := downloadLangdata(name, dir); err != nil {
					return err
				}
			}
			if cfg.OCR.LanguagesDir == "" {
				if _, err := config.Update(*cfgPath, func(c *config.Config) {
					if c.OCR.LanguagesDir == "" {
						c.OCR.LanguagesDir = dir
					}
				}); err != nil {
					return err
				}
			}
			fmt.Println("setup complete")
			return nil
		},
	}
}
