package wavWriter

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dh1tw/dspout/audio"
	"github.com/dh1tw/dspout/audio/sinks/pacer"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

// WavWriter implements the audio.Sink interface and records the audio,
// exactly as it would have been played on a speaker, into a wav file. The
// audio is pulled at the pace of a virtual audio device.
type WavWriter struct {
	sync.Mutex
	file      *os.File
	encoder   *wav.Encoder
	options   Options
	cb        audio.Callback
	buf       []audio.Sample
	intBuf    ga.IntBuffer
	pacer     *pacer.Pacer
	submitted atomic.Int64
	closed    bool
}

// NewWavWriter returns a WavWriter which records into the file at path.
// An existing file will be overwritten.
func NewWavWriter(path string, opts ...Option) (*WavWriter, error) {

	w := &WavWriter{
		options: Options{
			Samplerate:      audio.NativeSamplerate,
			FramesPerBuffer: 512,
		},
	}

	for _, o := range opts {
		o(&w.options)
	}

	if path == "" || path == "default" {
		return nil, fmt.Errorf("wav writer: no file path provided")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w.file = f
	w.encoder = wav.NewEncoder(f, w.options.Samplerate, 16, 2, 1)
	w.intBuf = ga.IntBuffer{
		Format: &ga.Format{
			SampleRate:  w.options.Samplerate,
			NumChannels: 2,
		},
		SourceBitDepth: 16,
	}

	if !w.options.Manual {
		w.pacer = pacer.New(float64(w.options.Samplerate), w.options.FramesPerBuffer,
			func(n int) {
				if err := w.Pull(n); err != nil {
					log.Println(err)
				}
			})
	}

	return w, nil
}

// Pull requests n sample pairs from the callback and appends them to the
// wav file.
func (w *WavWriter) Pull(n int) error {
	w.Lock()
	defer w.Unlock()

	if w.closed {
		return fmt.Errorf("wav writer closed")
	}

	if cap(w.buf) < n {
		w.buf = make([]audio.Sample, n)
	}
	buf := w.buf[:n]

	if w.cb == nil {
		clear(buf)
	} else {
		w.cb(buf)
	}

	w.intBuf.Data = w.intBuf.Data[:0]
	for _, s := range buf {
		w.intBuf.Data = append(w.intBuf.Data, int(s[0]), int(s[1]))
	}

	return w.encoder.Write(&w.intBuf)
}

// SetCallback registers the callback which provides the audio data.
func (w *WavWriter) SetCallback(cb audio.Callback) {
	w.Lock()
	defer w.Unlock()
	w.cb = cb
}

// OnSamplesSubmitted keeps track of the amount of queued audio.
func (w *WavWriter) OnSamplesSubmitted(n int) {
	w.submitted.Add(int64(n))
}

// Start starts recording.
func (w *WavWriter) Start() error {
	if w.pacer != nil {
		w.pacer.Start()
	}
	return nil
}

// Close stops recording and finalizes the wav file.
func (w *WavWriter) Close() error {
	if w.pacer != nil {
		w.pacer.Stop()
	}

	w.Lock()
	defer w.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.encoder.Close()
	if cErr := w.file.Close(); err == nil {
		err = cErr
	}
	return err
}
