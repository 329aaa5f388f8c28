package control

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// readWAVMono decodes a WAV file into 16-bit mono samples and reports
// the file's sample rate.
func readWAVMono(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("%s: no audio data", path)
	}
	return downmix(buf), buf.Format.SampleRate, nil
}

// downmix averages channels into mono and scales samples to 16 bits.
func downmix(buf *audio.IntBuffer) []int16 {
	ch := buf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	shift := depth - 16

	out := make([]int16, 0, len(buf.Data)/ch)
	for i := 0; i+ch <= len(buf.Data); i += ch {
		sum := 0
		for c := 0; c < ch; c++ {
			sum += buf.Data[i+c]
		}
		s := sum / ch
		switch {
		case shift > 0:
			s >>= shift
		case shift < 0:
			s <<= -shift
		}
		out = append(out, int16(s))
	}
	return out
}
