package audio

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestClampVolume(t *testing.T) {
	tests := []struct {
		in, out float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
		{math32.NaN(), 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, ClampVolume(tc.in), "volume %v", tc.in)
	}
}

func TestScaleFactorRange(t *testing.T) {
	assert.InDelta(t, 0.001, ScaleFactor(0), 1e-6)
	assert.InDelta(t, 1.0, ScaleFactor(1), 1e-5)
	// -20 dB at the lower third of the slider
	assert.InDelta(t, 0.01, ScaleFactor(1.0/3), 1e-4)
}

func TestScaleFactorMonotonic(t *testing.T) {
	prev := ScaleFactor(0)
	for i := 1; i <= 100; i++ {
		cur := ScaleFactor(float32(i) / 100)
		assert.Greater(t, cur, prev, "volume %d%%", i)
		prev = cur
	}
}

func TestApplyVolumeIdentity(t *testing.T) {
	in := []Sample{{math.MaxInt16, math.MinInt16}, {1, -1}, {12345, -23456}, {0, 0}}
	buf := append([]Sample(nil), in...)

	applyVolume(buf, 1)
	assert.Equal(t, in, buf)

	// clamped to 1
	applyVolume(buf, 3.5)
	assert.Equal(t, in, buf)
}

func TestApplyVolumeScales(t *testing.T) {
	buf := []Sample{{10000, -10000}, {1000, -1000}}
	applyVolume(buf, 0)
	assert.Equal(t, []Sample{{10, -10}, {1, -1}}, buf)

	buf = []Sample{{20000, -20000}}
	applyVolume(buf, 0.5)
	scale := ScaleFactor(0.5)
	assert.Equal(t, int16(float32(20000)*scale), buf[0][0])
	assert.Equal(t, int16(float32(-20000)*scale), buf[0][1])
}

func TestScaleSample(t *testing.T) {
	tests := []struct {
		name  string
		in    int16
		scale float32
		out   int16
	}{
		{"truncates positive", 3, 0.5, 1},
		{"truncates negative", -3, 0.5, -1},
		{"saturates positive", math.MaxInt16, 1.5, math.MaxInt16},
		{"saturates negative", math.MinInt16, 1.5, math.MinInt16},
		{"zero", 0, 0.3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, scaleSample(tc.in, tc.scale))
		})
	}
}
