package doctor

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"noter/internal/camera"
)

func checkCamera(index int) Result {
	label := fmt.Sprintf("camera %d", index)
	dev, err := camera.Open(index)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	_ = dev.Close()
	return Result{Name: label, Pass: true, Detail: "opens"}
}

func checkInputDevice() Result {
	const label = "microphone"
	if err := portaudio.Initialize(); err != nil {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("portaudio init failed: %v", err)}
	}
	defer func() {
		_ = portaudio.Terminate()
	}()
	dev := portaudio.DefaultInputDevice()
	if dev == nil {
		return Result{Name: label, Pass: false, Detail: "no default input device"}
	}
	return Result{Name: label, Pass: true, Detail: dev.Name}
}
