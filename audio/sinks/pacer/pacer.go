// Package pacer drives the pull callback of sinks which have no audio
// hardware of their own (file writers, headless output). It emulates the
// clock of an audio device by requesting a fixed amount of sample pairs
// once per buffer period.
package pacer

import (
	"context"
	"sync"
	"time"
)

// Pacer calls a pull function in the rhythm of a virtual audio device.
type Pacer struct {
	sync.Mutex
	frames int
	period time.Duration
	pull   func(frames int)
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Pacer which requests framesPerBuffer sample pairs at the
// pace of the given samplerate.
func New(samplerate float64, framesPerBuffer int, pull func(frames int)) *Pacer {
	return &Pacer{
		frames: framesPerBuffer,
		period: Period(samplerate, framesPerBuffer),
		pull:   pull,
	}
}

// Period returns the duration of one buffer of framesPerBuffer sample
// pairs at the given samplerate.
func Period(samplerate float64, framesPerBuffer int) time.Duration {
	return time.Duration(float64(framesPerBuffer) / samplerate * float64(time.Second))
}

// Start starts pulling. Calling Start on a running Pacer has no effect.
func (p *Pacer) Start() {
	p.Lock()
	defer p.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

func (p *Pacer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pull(p.frames)
		}
	}
}

// Stop stops pulling and waits until a pull in progress has returned.
func (p *Pacer) Stop() {
	p.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
