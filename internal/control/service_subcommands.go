package control

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"noter/internal/config"
	"noter/internal/service"

	"github.com/spf13/cobra"
)

// NewServiceCmd manages the user-level service definition.
func NewServiceCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the user service (launchd or systemd)",
	}
	cmd.AddCommand(newServiceInstallCmd(cfgPath))
	cmd.AddCommand(newServiceUninstallCmd())
	cmd.AddCommand(newServiceStatusCmd())
	return cmd
}

func newServiceInstallCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the user service definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			exe, err := os.Executable()
			if err != nil {
				return err
			}
			envPairs, _ := cmd.Flags().GetStringArray("env")
			env := make(map[string]string)
			for _, p := range envPairs {
				parts := strings.SplitN(p, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("bad env %q, want KEY=VAL", p)
				}
				env[parts[0]] = parts[1]
			}
			params := service.Params{
				Binary: exe,
				Config: cfg.Paths.ConfigPath,
				Log:    cfg.Paths.LogPath,
				Env:    env,
			}
			if runtime.GOOS == "darwin" {
				params.Label = service.LaunchdLabel
				path, err := service.WritePlist(params)
				if err != nil {
					return err
				}
				fmt.Printf("launchd plist written: %s\n", path)
				fmt.Println("Load:   launchctl load -w", path)
				fmt.Printf("Start:  launchctl kickstart gui/$(id -u)/%s\n", params.Label)
				fmt.Printf("Stop:   launchctl bootout gui/$(id -u)/%s\n", params.Label)
				return nil
			}
			params.Label = service.SystemdName
			path, err := service.WriteUnit(params)
			if err != nil {
				return err
			}
			fmt.Printf("systemd unit written: %s\n", path)
			fmt.Printf("Enable: systemctl --user enable --now %s\n", service.SystemdName)
			fmt.Printf("Stop:   systemctl --user stop %s\n", service.SystemdName)
			return nil
		},
	}
	cmd.Flags().StringArray("env", nil, "Env to set in the service definition (KEY=VAL)")
	return cmd
}

func newServiceUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the user service definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := service.Path()
			_ = os.Remove(path)
			if runtime.GOOS == "darwin" {
				fmt.Printf("removed %s (if present); unload manually with: launchctl bootout gui/$(id -u) %s\n", path, path)
				return nil
			}
			fmt.Printf("removed %s (if present); disable with: systemctl --user disable --now %s\n", path, service.SystemdName)
			return nil
		},
	}
}

func newServiceStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the service definition path and whether it exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := service.Status()
			fmt.Printf("definition: %s\n", path)
			if ok {
				fmt.Println("status: present")
			} else {
				fmt.Println("status: missing (install via: noter service install)")
			}
			return nil
		},
	}
}
