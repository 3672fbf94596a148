package otoWriter

import "time"

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing an oto writer.
type Options struct {
	Samplerate int
	BufferSize time.Duration
}

// Samplerate is a functional option to set the sampling rate. Since oto
// only supports one context per process, all OtoWriters must use the same
// sampling rate.
func Samplerate(s int) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}

// BufferSize is a functional option to set the size of the buffer of the
// underlying audio driver.
func BufferSize(d time.Duration) Option {
	return func(args *Options) {
		args.BufferSize = d
	}
}
