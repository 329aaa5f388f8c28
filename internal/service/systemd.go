package service

import (
	"os"
	"path/filepath"
	"text/template"
)

const systemdTemplate = `[Unit]
Description=noter assistive reader daemon
After=default.target

[Service]
ExecStart={{.Binary}} serve --config {{.Config}}
Restart=on-failure
RestartSec=2
{{- range $k, $v := .Env }}
Environment={{$k}}={{$v}}
{{- end }}

[Install]
WantedBy=default.target
`

// UnitPath returns the systemd user unit path for a service name.
func UnitPath(name string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "systemd", "user", name+".service")
}

// WriteUnit writes a systemd user unit. Label is used as the unit name.
func WriteUnit(params Params) (string, error) {
	path := UnitPath(params.Label)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	tpl := template.Must(template.New("systemd").Parse(systemdTemplate))
	if err := tpl.Execute(f, params); err != nil {
		return "", err
	}
	return path, nil
}
