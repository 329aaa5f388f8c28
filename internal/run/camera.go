package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"noter/internal/camera"
	"noter/internal/config"
	"noter/internal/note"
	"noter/internal/ocr"
)

// cameraLoop grabs frames at a fixed rate, keeps the preview current on
// every tick, and hands frames to a single OCR worker. Recognition runs
// off the capture loop so a slow extraction never stalls the preview;
// frames arriving while the worker is busy are skipped.
func (s *Server) cameraLoop(ctx context.Context) {

	engine, err := ocr.NewTesseract(s.cfg.OCR.LanguagesDir)
	if err != nil {
		s.logger.Errorf("ocr init: %v", err)
		s.reportError(fmt.Sprintf("Camera Error: %v", err))
		engine = nil
	} else {
		defer engine.Close()
	}

	dev, err := camera.Open(s.cfg.CameraIndex)
	if err != nil {
		s.logger.Errorf("camera init: %v", err)
		s.reportError(fmt.Sprintf("Camera Error: %v", err))
		return
	}
	defer func() {
		if err := dev.Close(); err != nil {
			s.logger.Warnf("camera close: %v", err)
		}
	}()
	s.logger.Infof("camera initialized on index %d", dev.Index())

	frameCh := make(chan []byte, 1)
	if engine != nil {
		go s.ocrWorker(ctx, engine, frameCh)
	}

	fps := s.cfg.Camera.FPS
	if fps < 1 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := dev.Grab(&frame); err != nil {
			if errors.Is(err, camera.ErrNoFrame) {
				s.logger.Warn("failed to capture frame")
				continue
			}
			s.logger.Errorf("camera read: %v", err)
			s.reportError(fmt.Sprintf("Camera Error: %v", err))
			continue
		}
		s.metrics.incFrames()

		// The preview updates whether or not any text is found.
		if jpeg, err := camera.EncodeJPEG(frame); err != nil {
			s.logger.Warnf("preview encode: %v", err)
		} else {
			s.setPreview(jpeg)
		}

		if engine == nil {
			continue
		}
		if len(frameCh) > 0 {
			s.metrics.incFramesSkipped()
			continue
		}
		png, err := camera.EncodePNG(frame)
		if err != nil {
			s.logger.Warnf("frame encode: %v", err)
			continue
		}
		select {
		case frameCh <- png:
		default:
			s.metrics.incFramesSkipped()
		}
	}
}

func (s *Server) ocrWorker(ctx context.Context, engine ocr.Engine, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case img := <-frames:
			s.extractText(ctx, engine, img)
		}
	}
}

// extractText runs recognition over one frame with the language bound
// at call time and records any non-empty result.
func (s *Server) extractText(ctx context.Context, engine ocr.Engine, img []byte) {
	lang := config.OCRLanguage(s.state.Language())
	text, err := engine.Recognize(img, lang)
	if err != nil {
		s.logger.Errorf("ocr: %v", err)
		s.reportError(fmt.Sprintf("Camera Error: %v", err))
		return
	}
	if text == "" {
		return
	}
	s.metrics.incCameraNotes()
	s.sink.Record(ctx, note.Event{
		Source:    note.SourceCamera,
		Text:      text,
		Timestamp: time.Now(),
	})
}
