package wavReader

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing a wav Reader.
type Options struct {
	Samplerate   float64
	FrameSamples int
	Loop         bool
}

// Samplerate is a functional option which sets the rate (in sample pairs
// per second) at which the emulated hardware produces audio.
func Samplerate(s float64) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}

// FrameSamples is a functional option which sets the amount of stereo
// sample pairs per emulated audio frame.
func FrameSamples(s int) Option {
	return func(args *Options) {
		args.FrameSamples = s
	}
}

// Loop is a functional option which restarts the playback at the end of
// the file.
func Loop(l bool) Option {
	return func(args *Options) {
		args.Loop = l
	}
}
