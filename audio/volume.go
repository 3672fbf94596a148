package audio

import (
	"math"

	"github.com/chewxy/math32"
)

// volumeRange is ln(1000); the volume slider spans a dynamic range of 60 dB.
const volumeRange = 6.907755

// ClampVolume limits v to [0...1]. NaN is treated as muted.
func ClampVolume(v float32) float32 {
	switch {
	case math32.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ScaleFactor returns the factor by which the samples are multiplied for
// the given linear volume. The curve is exponential: 0 maps to 0.001
// (-60 dB) and 1 maps to 1 (0 dB).
func ScaleFactor(volume float32) float32 {
	return math32.Exp(volumeRange*ClampVolume(volume)) * 0.001
}

// applyVolume scales all samples in buf in place. At full volume the
// samples are left untouched.
func applyVolume(buf []Sample, volume float32) {
	v := ClampVolume(volume)
	if v == 1 {
		return
	}

	scale := ScaleFactor(v)
	for i := range buf {
		buf[i][0] = scaleSample(buf[i][0], scale)
		buf[i][1] = scaleSample(buf[i][1], scale)
	}
}

// scaleSample saturates at the int16 limits; the fractional part is
// truncated toward zero.
func scaleSample(s int16, scale float32) int16 {
	f := float32(s) * scale
	if f >= math.MaxInt16 {
		return math.MaxInt16
	}
	if f <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(f)
}
