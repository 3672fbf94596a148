package nullWriter

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing a NullWriter.
type Options struct {
	Samplerate      float64
	FramesPerBuffer int
	Manual          bool
}

// Samplerate is a functional option to set the sampling rate of the
// virtual audio device.
func Samplerate(s float64) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}

// FramesPerBuffer is a functional option which sets the amount of stereo
// sample pairs requested per callback.
func FramesPerBuffer(s int) Option {
	return func(args *Options) {
		args.FramesPerBuffer = s
	}
}

// Manual is a functional option which disables the internal clock. The
// audio then has to be requested explicitly with Pull.
func Manual() Option {
	return func(args *Options) {
		args.Manual = true
	}
}
