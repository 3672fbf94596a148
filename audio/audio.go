package audio

// FrameSamples is the number of stereo sample pairs the emulated DSP
// produces per audio frame.
const FrameSamples = 160

// NativeSamplerate is the sampling rate (Hz) at which the emulated DSP
// produces audio frames.
const NativeSamplerate = 32728

// DefaultQueueCapacity is the default size of the FrameQueue in stereo
// sample pairs.
const DefaultQueueCapacity = 0x2000

// Sample is one interleaved stereo sample pair (left, right).
type Sample [2]int16

// StereoFrame is a sequence of stereo sample pairs as produced by the
// emulated hardware. Frames handed to OutputFrame must not be modified
// afterwards by the producer.
type StereoFrame []Sample

// Callback is executed by a Sink whenever the host audio device needs more
// data. The Callback must write every element of buf before it returns.
type Callback func(buf []Sample)

// Sink is the interface which is implemented by a host audio output
// backend. The host backend pulls audio through the registered Callback
// on its own clock.
type Sink interface {
	// SetCallback registers the pull callback. It is called exactly once
	// per Sink, before Start.
	SetCallback(Callback)
	// OnSamplesSubmitted informs the Sink that n sample pairs have been
	// queued for playback. It is used for bookkeeping only.
	OnSamplesSubmitted(n int)
	Start() error
	Close() error
}

// VolumeProvider returns the current linear output volume. Values outside
// of [0...1] are clamped by the consumer.
type VolumeProvider interface {
	Volume() float32
}

// FixedVolume is a VolumeProvider which always returns the same volume.
type FixedVolume float32

// Volume returns v.
func (v FixedVolume) Volume() float32 {
	return float32(v)
}
