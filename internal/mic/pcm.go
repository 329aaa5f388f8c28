package mic

import "math"

// minEnergyThreshold is the floor applied when the room is near silent,
// so electrical noise does not count as speech.
const minEnergyThreshold = 120.0

// rms is the root mean square amplitude of one frame.
func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// energyThreshold derives the voiced-frame energy gate from the summed
// ambient RMS over n calibration frames.
func energyThreshold(noiseSum float64, n int) float64 {
	if n <= 0 {
		return minEnergyThreshold
	}
	t := (noiseSum / float64(n)) * 1.5
	if t < minEnergyThreshold {
		return minEnergyThreshold
	}
	return t
}

// Bytes converts PCM16 samples to little-endian bytes, the layout the
// remote recognition service expects for LINEAR16 content.
func Bytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
