package control

import "noter/internal/note"

// Request is one control-socket command, JSON on a single line.
type Request struct {
	Op       string `json:"op"`
	Language string `json:"language,omitempty"`
	Audio    string `json:"audio,omitempty"` // start, stop, toggle
	Text     string `json:"text,omitempty"`
}

// Status is the daemon status payload.
type Status struct {
	Running   bool         `json:"running"`
	UptimeSec float64      `json:"uptime_sec"`
	Listening bool         `json:"listening"`
	Language  string       `json:"language"`
	LastError string       `json:"last_error,omitempty"`
	Results   string       `json:"results"`
	Notes     []note.Event `json:"notes"`
}

// SimpleResponse acknowledges commands that return no data.
type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
