// Package mic records single bounded utterances from the microphone.
// Each Listen call acquires the device, calibrates against ambient
// noise, waits for speech, and releases the device before returning.
package mic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noter/internal/config"

	"github.com/gordonklaus/portaudio"
	vad "github.com/maxhawkins/go-webrtcvad"
	"github.com/sirupsen/logrus"
)

// ErrNoSpeech means no utterance began within the listen timeout.
var ErrNoSpeech = errors.New("no speech detected")

// Listener captures one utterance at a time.
type Listener struct {
	cfg    *config.Config
	logger *logrus.Logger
	vad    *vad.VAD
}

// NewListener validates audio settings and initializes PortAudio for
// the process lifetime.
func NewListener(cfg *config.Config, logger *logrus.Logger) (*Listener, error) {
	if cfg.Audio.FrameMS != 10 && cfg.Audio.FrameMS != 20 && cfg.Audio.FrameMS != 30 {
		return nil, fmt.Errorf("audio.frame_ms must be 10, 20, or 30 (got %d)", cfg.Audio.FrameMS)
	}
	switch cfg.Audio.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("sample_rate must be 8k/16k/32k/48k for webrtc VAD (got %d)", cfg.Audio.SampleRate)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	v := vad.New()
	if err := v.SetMode(cfg.Audio.VADAggressive); err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("vad mode: %w", err)
	}
	return &Listener{cfg: cfg, logger: logger, vad: v}, nil
}

// Close releases PortAudio.
func (l *Listener) Close() error {
	return portaudio.Terminate()
}

// Listen blocks for one utterance: up to listen_timeout_sec for speech
// to begin, then recording until silence_ms of silence or
// phrase_limit_sec of speech. It returns mono PCM16 samples. The call
// is interrupted only by ctx cancellation; a pause toggle elsewhere
// takes effect on the next Listen.
func (l *Listener) Listen(ctx context.Context) ([]int16, error) {
	dev, err := selectDevice(l.cfg.Audio.DeviceName)
	if err != nil {
		return nil, err
	}

	frameSamples := l.cfg.Audio.SampleRate * l.cfg.Audio.FrameMS / 1000
	buf := make([]int16, frameSamples)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(l.cfg.Audio.SampleRate),
		FramesPerBuffer: frameSamples,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	readFrame := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				l.logger.Warn("input overflow")
				return nil
			}
			return fmt.Errorf("stream read: %w", err)
		}
		return nil
	}

	// Ambient calibration: sample the noise floor and derive an energy
	// threshold voiced frames must clear.
	ambientFrames := int(l.cfg.Audio.AmbientSec * 1000 / float64(l.cfg.Audio.FrameMS))
	var noise float64
	for i := 0; i < ambientFrames; i++ {
		if err := readFrame(); err != nil {
			return nil, err
		}
		noise += rms(buf)
	}
	threshold := energyThreshold(noise, ambientFrames)

	voiced := func() bool {
		return l.vad.Process(l.cfg.Audio.SampleRate, buf) && rms(buf) >= threshold
	}

	// Wait for speech to begin.
	deadline := time.Now().Add(time.Duration(l.cfg.Audio.ListenTimeoutSec * float64(time.Second)))
	var chunk []int16
	for {
		if time.Now().After(deadline) {
			return nil, ErrNoSpeech
		}
		if err := readFrame(); err != nil {
			return nil, err
		}
		if voiced() {
			chunk = append(chunk, buf...)
			break
		}
	}

	// Record until silence or the phrase limit.
	var (
		began      = time.Now()
		lastVoice  = began
		silenceDur = time.Duration(l.cfg.Audio.SilenceMS) * time.Millisecond
		phraseDur  = time.Duration(l.cfg.Audio.PhraseLimitSec * float64(time.Second))
	)
	for {
		if err := readFrame(); err != nil {
			return nil, err
		}
		chunk = append(chunk, buf...)
		now := time.Now()
		if voiced() {
			lastVoice = now
		}
		if now.Sub(lastVoice) >= silenceDur || now.Sub(began) >= phraseDur {
			return chunk, nil
		}
	}
}

func selectDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		dev := portaudio.DefaultInputDevice()
		if dev == nil {
			return nil, errors.New("no default input device")
		}
		return dev, nil
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 && d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", name)
}
