package run

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"noter/internal/config"
	"noter/internal/control"
	"noter/internal/hook"
	"noter/internal/note"
	"noter/internal/stt"
	"noter/internal/tts"

	"github.com/sirupsen/logrus"
)

// Command is one UI/control request applied by the command loop. The
// presentation layer never mutates pipeline state directly; it posts
// commands here.
type Command struct {
	Op  string // "language", "audio", "reload", "shutdown"
	Arg string
}

// Server wires the camera and speech pipelines to the output sink, the
// control socket, and the web UI.
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	state  *State
	sink   *note.Sink
	hook   *hook.Runner

	speaker    *tts.Speaker
	recognizer stt.Recognizer

	startedAt time.Time
	metrics   metrics
	hookCh    chan hook.Job
	commands  chan Command
	cancel    context.CancelFunc

	previewMu sync.RWMutex
	preview   []byte // latest JPEG frame

	wg sync.WaitGroup
}

// Serve runs the daemon until interrupted or told to exit. cfgErr is a
// non-fatal config-load failure: the daemon runs on the defaults it was
// given and surfaces the error, matching reload behavior.
func Serve(cfg *config.Config, logger *logrus.Logger, cfgErr error) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()
	if err := os.Remove(cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debugf("remove stale socket: %v", err)
	}

	srv := newServer(cfg, logger, cfgErr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.cancel = cancel

	// Capability report before the pipelines spin up. Devices are not
	// probed here; the pipelines open them and report for themselves.
	reportChecks(logger, cfg)

	go srv.controlLoop(ctx)
	go srv.commandLoop(ctx)
	go srv.hookWorker(ctx)
	srv.spawn(ctx, srv.cameraLoop)
	srv.spawn(ctx, srv.audioLoop)
	go srv.webServe(ctx)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-sigCh:
		logger.Infof("received signal %s, shutting down", sig)
		cancel()
	case <-ctx.Done():
	}
	srv.wg.Wait()
	return nil
}

func newServer(cfg *config.Config, logger *logrus.Logger, cfgErr error) *Server {
	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		state:     NewState(cfg.Language),
		startedAt: time.Now(),
		hookCh:    make(chan hook.Job, 16),
		commands:  make(chan Command, 16),
	}
	srv.hook = hook.NewRunner(cfg, logger)
	srv.speaker = tts.NewSpeaker(logger)

	srv.sink = note.NewSink(cfg.NotesFile, cfg.UI.ResultsTail, logger)
	srv.sink.SetSpeaker(countingSpeaker{srv})
	srv.sink.SetTTS(cfg.TTSEnabled, config.TTSLanguage(cfg.Language))
	srv.sink.Report = srv.reportError
	srv.sink.Notify = srv.dispatchHook
	if cfgErr != nil {
		logger.Errorf("config: %v (running on defaults)", cfgErr)
		srv.reportError(fmt.Sprintf("Config Error: %v", cfgErr))
	}
	return srv
}

// spawn runs a pipeline loop on the wait group. Registration happens
// before the goroutine starts so Wait cannot pass early.
func (s *Server) spawn(ctx context.Context, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// countingSpeaker wraps the TTS speaker so note playback shows up in
// the metrics.
type countingSpeaker struct {
	s *Server
}

func (c countingSpeaker) Speak(ctx context.Context, text, lang string) error {
	if err := c.s.speaker.Speak(ctx, text, lang); err != nil {
		return err
	}
	c.s.metrics.incTTSPlays()
	return nil
}

// reportError surfaces a message to the user and counts it.
func (s *Server) reportError(msg string) {
	s.metrics.incErrors()
	s.state.ReportError(msg)
}

func (s *Server) dispatchHook(ev note.Event) {
	if !s.hook.Enabled() {
		return
	}
	if !s.hook.ShouldRun() {
		s.logger.Debug("hook skipped (cooldown)")
		return
	}
	job := hook.Job{Source: ev.Source, Text: ev.Text, Timestamp: ev.Timestamp}
	select {
	case s.hookCh <- job:
	default:
		s.logger.Warn("hook queue full, dropping job")
	}
}

func (s *Server) hookWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.hookCh:
			if err := s.hook.Run(ctx, job); err != nil {
				s.logger.Errorf("hook: %v", err)
			}
		}
	}
}

func (s *Server) commandLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			s.apply(cmd)
		}
	}
}

func (s *Server) apply(cmd Command) {
	switch cmd.Op {
	case "language":
		if err := s.state.SetLanguage(cmd.Arg); err != nil {
			s.logger.Warnf("language command: %v", err)
			return
		}
		s.sink.SetTTSLanguage(config.TTSLanguage(cmd.Arg))
		s.logger.Infof("language changed to %s", cmd.Arg)
	case "audio":
		switch cmd.Arg {
		case "start":
			s.state.SetListening(true)
		case "stop":
			s.state.SetListening(false)
		default:
			s.state.ToggleListening()
		}
		s.logger.Infof("audio listening: %v", s.state.Listening())
	case "reload":
		s.reloadConfig()
	case "shutdown":
		s.logger.Info("shutdown requested")
		s.cancel()
	default:
		s.logger.Warnf("unknown command %q", cmd.Op)
	}
}

// reloadConfig re-reads the config file and applies the user-facing
// settings that can change at runtime. Device and path plumbing keeps
// its startup values.
func (s *Server) reloadConfig() {
	fresh, err := config.Load(s.cfg.Paths.ConfigPath)
	if err != nil {
		s.logger.Errorf("config reload: %v", err)
		s.reportError(fmt.Sprintf("Config Error: %v", err))
		return
	}
	if err := s.state.SetLanguage(fresh.Language); err != nil {
		s.logger.Warnf("config reload: %v", err)
	}
	s.sink.SetNotesPath(fresh.NotesFile)
	s.sink.SetTTS(fresh.TTSEnabled, config.TTSLanguage(fresh.Language))
	s.logger.Info("config reloaded")
}

func (s *Server) setPreview(jpeg []byte) {
	s.previewMu.Lock()
	s.preview = jpeg
	s.previewMu.Unlock()
}

func (s *Server) previewJPEG() []byte {
	s.previewMu.RLock()
	defer s.previewMu.RUnlock()
	return s.preview
}

func (s *Server) statusPayload() control.Status {
	return control.Status{
		Running:   true,
		UptimeSec: time.Since(s.startedAt).Seconds(),
		Listening: s.state.Listening(),
		Language:  s.state.Language(),
		LastError: s.state.LastError(),
		Results:   s.sink.Rendered(),
		Notes:     s.sink.Tail(),
	}
}

func (s *Server) controlLoop(ctx context.Context) {
	ln, err := net.Listen("unix", s.cfg.Paths.SocketPath)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	defer func() {
		if err := ln.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control listener close: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	enc := json.NewEncoder(conn)
	switch req.Op {
	case "status":
		_ = enc.Encode(s.statusPayload())
	case "health":
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "ok"})
	case "language":
		if err := s.submit(Command{Op: "language", Arg: req.Language}); err != nil {
			_ = enc.Encode(control.SimpleResponse{OK: false, Message: err.Error()})
			return
		}
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "language " + req.Language})
	case "audio":
		if err := s.submit(Command{Op: "audio", Arg: req.Audio}); err != nil {
			_ = enc.Encode(control.SimpleResponse{OK: false, Message: err.Error()})
			return
		}
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "audio " + req.Audio})
	case "say":
		sayCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		lang := config.TTSLanguage(s.state.Language())
		if err := s.speaker.Speak(sayCtx, req.Text, lang); err != nil {
			_ = enc.Encode(control.SimpleResponse{OK: false, Message: err.Error()})
			return
		}
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "spoken"})
	case "reload":
		if err := s.submit(Command{Op: "reload"}); err != nil {
			_ = enc.Encode(control.SimpleResponse{OK: false, Message: err.Error()})
			return
		}
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "reload requested"})
	case "shutdown":
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "shutting down"})
		_ = s.submit(Command{Op: "shutdown"})
	default:
		_ = enc.Encode(control.SimpleResponse{OK: false, Message: "unknown op " + req.Op})
	}
}

// submit offers a command to the command loop without blocking the
// caller forever.
func (s *Server) submit(cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-time.After(time.Second):
		return errors.New("command queue full")
	}
}
