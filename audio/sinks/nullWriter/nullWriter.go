package nullWriter

import (
	"sync"
	"sync/atomic"

	"github.com/dh1tw/dspout/audio"
	"github.com/dh1tw/dspout/audio/sinks/pacer"
)

// NullWriter implements the audio.Sink interface without any audio
// hardware. It pulls the audio at the pace of a virtual audio device and
// discards it. It is used on headless machines and for testing.
type NullWriter struct {
	sync.Mutex
	options   Options
	cb        audio.Callback
	buf       []audio.Sample
	pacer     *pacer.Pacer
	submitted atomic.Int64
	pulled    atomic.Int64
}

// NewNullWriter returns a new NullWriter.
func NewNullWriter(opts ...Option) *NullWriter {

	w := &NullWriter{
		options: Options{
			Samplerate:      audio.NativeSamplerate,
			FramesPerBuffer: 512,
		},
	}

	for _, option := range opts {
		option(&w.options)
	}

	if !w.options.Manual {
		w.pacer = pacer.New(w.options.Samplerate, w.options.FramesPerBuffer,
			func(n int) { w.Pull(n) })
	}

	return w
}

// Pull requests n sample pairs from the callback. The returned slice is
// only valid until the next call of Pull.
func (w *NullWriter) Pull(n int) []audio.Sample {
	w.Lock()
	defer w.Unlock()

	if cap(w.buf) < n {
		w.buf = make([]audio.Sample, n)
	}
	buf := w.buf[:n]

	if w.cb == nil {
		clear(buf)
		return buf
	}
	w.cb(buf)
	w.pulled.Add(int64(n))
	return buf
}

// SetCallback registers the callback which provides the audio data.
func (w *NullWriter) SetCallback(cb audio.Callback) {
	w.Lock()
	defer w.Unlock()
	w.cb = cb
}

// OnSamplesSubmitted keeps track of the amount of queued audio.
func (w *NullWriter) OnSamplesSubmitted(n int) {
	w.submitted.Add(int64(n))
}

// Submitted returns the total amount of sample pairs queued for playback.
func (w *NullWriter) Submitted() int64 {
	return w.submitted.Load()
}

// Pulled returns the total amount of sample pairs pulled from the callback.
func (w *NullWriter) Pulled() int64 {
	return w.pulled.Load()
}

// Start starts pulling audio, unless the NullWriter is in manual mode.
func (w *NullWriter) Start() error {
	if w.pacer != nil {
		w.pacer.Start()
	}
	return nil
}

// Close stops pulling audio.
func (w *NullWriter) Close() error {
	if w.pacer != nil {
		w.pacer.Stop()
	}
	return nil
}
