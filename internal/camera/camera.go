// Package camera wraps the OpenCV video capture handle used by the
// camera pipeline. The device is opened once at startup and owned by
// that pipeline alone.
package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrNoFrame means the device produced no usable frame this tick.
var ErrNoFrame = errors.New("no frame captured")

// Device is an open camera.
type Device struct {
	cap   *gocv.VideoCapture
	index int
}

// Open opens the camera at index.
func Open(index int) (*Device, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return nil, fmt.Errorf("camera %d not available", index)
	}
	return &Device{cap: cap, index: index}, nil
}

// Index returns the device index the camera was opened with.
func (d *Device) Index() int { return d.index }

// Grab reads one frame into dst.
func (d *Device) Grab(dst *gocv.Mat) error {
	if ok := d.cap.Read(dst); !ok {
		return ErrNoFrame
	}
	if dst.Empty() {
		return ErrNoFrame
	}
	return nil
}

// Close releases the device.
func (d *Device) Close() error {
	return d.cap.Close()
}

// EncodeJPEG returns m as JPEG bytes, for the live preview stream.
func EncodeJPEG(m gocv.Mat) ([]byte, error) {
	return encode(gocv.JPEGFileExt, m)
}

// EncodePNG returns m as PNG bytes, lossless for text recognition.
func EncodePNG(m gocv.Mat) ([]byte, error) {
	return encode(gocv.PNGFileExt, m)
}

func encode(ext gocv.FileExt, m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(ext, m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ext, err)
	}
	defer buf.Close()
	// The native buffer is freed on Close; hand back a copy.
	raw := buf.GetBytes()
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
