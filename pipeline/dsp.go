package pipeline

import "math"

// NormalizePeak is the target peak amplitude after normalization.
const NormalizePeak = 0.9

// DownmixMono averages interleaved channels into a mono chunk. Mono input
// is copied through unchanged; trailing samples that do not fill a whole
// frame are ignored.
func DownmixMono(block []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(block))
		copy(out, block)
		return out
	}
	frames := len(block) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += block[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Peak returns the maximum absolute amplitude in audio.
func Peak(audio []float32) float32 {
	var peak float32
	for _, s := range audio {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Resample converts audio to round(len*ratio) samples by linear
// interpolation. A ratio of 1 (or empty input) returns the input as is.
func Resample(audio []float32, ratio float64) []float32 {
	if len(audio) == 0 || ratio == 1 {
		return audio
	}
	outLen := int(math.Round(float64(len(audio)) * ratio))
	if outLen <= 0 {
		return nil
	}
	out := make([]float32, outLen)
	if outLen == 1 {
		out[0] = audio[0]
		return out
	}
	step := float64(len(audio)-1) / float64(outLen-1)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(audio)-1 {
			out[i] = audio[len(audio)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = audio[j] + (audio[j+1]-audio[j])*frac
	}
	return out
}

// Normalize scales audio in place so its peak equals target. All-zero
// input is left untouched.
func Normalize(audio []float32, target float32) {
	peak := Peak(audio)
	if peak == 0 {
		return
	}
	gain := target / peak
	for i := range audio {
		audio[i] *= gain
	}
}
