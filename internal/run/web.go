package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"noter/internal/config"
)

// The web UI is the presentation layer: live camera preview, the
// results buffer, and the three controls (language, audio toggle,
// exit). It is read-only except for the /api endpoints, which post
// commands to the command loop like the control socket does.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>noter</title>
<style>
body { background: #1a1a1a; color: #eee; font-family: sans-serif; margin: 2em; }
img { max-width: 640px; border: 1px solid #444; }
pre { background: #111; color: #fff; padding: 1em; min-height: 10em; white-space: pre-wrap; }
.error { color: #f66; }
button, select { font-size: 1.1em; padding: 0.4em 1em; margin-right: 1em; }
</style>
</head>
<body>
<h1>noter</h1>
<img src="/preview" alt="camera preview">
<pre id="results"></pre>
<p id="error" class="error"></p>
<p>
<select id="language" onchange="setLanguage(this.value)">
  <option value="{{.Amharic}}">Amharic</option>
  <option value="{{.English}}">English</option>
</select>
<button id="audio" onclick="toggleAudio()">Stop Audio</button>
<button onclick="exitApp()">Exit</button>
</p>
<script>
async function refresh() {
  const resp = await fetch('/api/status');
  const st = await resp.json();
  document.getElementById('results').textContent = st.results;
  document.getElementById('error').textContent = st.last_error || '';
  document.getElementById('language').value = st.language;
  document.getElementById('audio').textContent = st.listening ? 'Stop Audio' : 'Start Audio';
}
async function setLanguage(lang) {
  await fetch('/api/language', {method: 'POST', body: JSON.stringify({language: lang})});
}
async function toggleAudio() {
  await fetch('/api/audio', {method: 'POST', body: JSON.stringify({audio: 'toggle'})});
  setTimeout(refresh, 200);
}
async function exitApp() {
  await fetch('/api/exit', {method: 'POST'});
}
setInterval(refresh, 1000);
refresh();
</script>
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexPage))

func (s *Server) webServe(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/preview", s.previewHandler)
	mux.HandleFunc("/api/status", s.statusHandler)
	mux.HandleFunc("/api/language", s.languageHandler)
	mux.HandleFunc("/api/audio", s.audioHandler)
	mux.HandleFunc("/api/exit", s.exitHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)

	server := &http.Server{Addr: s.cfg.UI.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	s.logger.Infof("ui listening on http://%s/", s.cfg.UI.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warnf("ui server: %v", err)
	}
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTmpl.Execute(w, struct{ Amharic, English string }{
		Amharic: config.LangAmharic,
		English: config.LangEnglish,
	})
}

// previewHandler streams the latest camera frame as MJPEG.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		jpeg := s.previewJPEG()
		if len(jpeg) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
			return
		}
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.statusPayload())
}

func (s *Server) languageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.submit(Command{Op: "language", Arg: body.Language}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) audioHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Audio string `json:"audio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.submit(Command{Op: "audio", Arg: body.Audio}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) exitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = s.submit(Command{Op: "shutdown"})
}
