package config

import (
	"math"
	"sync/atomic"

	"github.com/dh1tw/dspout/audio"
)

// Volume is the globally adjustable output volume. It can be updated from
// any goroutine while the audio callback reads it.
type Volume struct {
	bits atomic.Uint32
}

// NewVolume returns a Volume initialized to v.
func NewVolume(v float32) *Volume {
	vol := &Volume{}
	vol.Set(v)
	return vol
}

// Set sets the linear volume. Values outside of [0...1] are clamped.
func (v *Volume) Set(vol float32) {
	v.bits.Store(math.Float32bits(audio.ClampVolume(vol)))
}

// Volume returns the current linear volume in [0...1].
func (v *Volume) Volume() float32 {
	return math.Float32frombits(v.bits.Load())
}
