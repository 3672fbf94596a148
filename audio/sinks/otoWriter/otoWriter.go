package otoWriter

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/ebitengine/oto/v3"
)

// oto only allows a single context per process
var (
	ctxMu      sync.Mutex
	ctx        *oto.Context
	ctxOptions oto.NewContextOptions
)

// OtoWriter implements the audio.Sink interface on top of the oto library.
// The oto player reads from the OtoWriter which in turn pulls the audio
// through the registered callback.
type OtoWriter struct {
	sync.Mutex
	options   Options
	player    *oto.Player
	cb        atomic.Pointer[audio.Callback]
	buf       []audio.Sample
	submitted atomic.Int64
	started   bool
}

// NewOtoWriter returns a new OtoWriter playing on the default audio
// device of the operating system.
func NewOtoWriter(opts ...Option) (*OtoWriter, error) {

	w := &OtoWriter{
		options: Options{
			Samplerate: audio.NativeSamplerate,
			BufferSize: time.Millisecond * 50,
		},
	}

	for _, option := range opts {
		option(&w.options)
	}

	c, err := sharedContext(oto.NewContextOptions{
		SampleRate:   w.options.Samplerate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   w.options.BufferSize,
	})
	if err != nil {
		return nil, err
	}

	w.player = c.NewPlayer(w)
	return w, nil
}

func sharedContext(op oto.NewContextOptions) (*oto.Context, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()

	if ctx != nil {
		if ctxOptions.SampleRate != op.SampleRate {
			return nil, fmt.Errorf("oto context already running at %dHz, can not switch to %dHz",
				ctxOptions.SampleRate, op.SampleRate)
		}
		return ctx, nil
	}

	c, ready, err := oto.NewContext(&op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	ctx = c
	ctxOptions = op
	return ctx, nil
}

// Read is called by the oto player whenever it needs more audio data.
func (w *OtoWriter) Read(p []byte) (int, error) {
	frames := len(p) / 4

	if len(w.buf) < frames {
		w.buf = make([]audio.Sample, frames)
	}
	buf := w.buf[:frames]

	cb := w.cb.Load()
	if cb == nil {
		clear(buf)
	} else {
		(*cb)(buf)
	}

	for i, s := range buf {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(s[0]))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(s[1]))
	}

	return frames * 4, nil
}

// SetCallback registers the callback which provides the audio data.
func (w *OtoWriter) SetCallback(cb audio.Callback) {
	w.cb.Store(&cb)
}

// OnSamplesSubmitted keeps track of the amount of queued audio.
func (w *OtoWriter) OnSamplesSubmitted(n int) {
	w.submitted.Add(int64(n))
}

// Submitted returns the total amount of sample pairs which have been
// queued for this device.
func (w *OtoWriter) Submitted() int64 {
	return w.submitted.Load()
}

// Start starts the playback.
func (w *OtoWriter) Start() error {
	w.Lock()
	defer w.Unlock()
	if w.player == nil {
		return fmt.Errorf("oto player closed")
	}
	if !w.started {
		w.player.Play()
		w.started = true
	}
	return nil
}

// Close stops the playback and releases the player. The shared oto
// context stays alive.
func (w *OtoWriter) Close() error {
	w.Lock()
	defer w.Unlock()
	if w.player == nil {
		return nil
	}
	err := w.player.Close()
	w.player = nil
	w.started = false
	return err
}
