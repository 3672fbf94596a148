package audio

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing an OutputStage.
type Options struct {
	QueueCapacity int
}

// QueueCapacity is a functional option to set the amount of stereo sample
// pairs which can be buffered between the producer and the audio device.
// Larger queues absorb more jitter at the price of additional latency.
func QueueCapacity(size int) Option {
	return func(args *Options) {
		args.QueueCapacity = size
	}
}
