package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// binding is the currently active Sink together with the identifiers it
// has been created from.
type binding struct {
	sink   Sink
	kind   string
	device string
}

// OutputStage decouples the producer of audio frames (emulated hardware)
// from the host audio device. Frames are queued by OutputFrame and pulled
// by the Sink through its callback, where underruns are padded and the
// volume is applied.
//
// Without a bound Sink, OutputFrame silently discards the frames.
type OutputStage struct {
	sync.Mutex // serializes backend changes
	registry   *Registry
	volume     VolumeProvider
	queue      *FrameQueue
	active     atomic.Pointer[binding]

	cbMu      sync.Mutex // held while filling a device buffer
	lastFrame Sample

	stats stats
}

// NewOutputStage returns an unbound OutputStage. Sinks are created from
// the registry when calling SetOutputBackend. If volume is nil, audio is
// played at full volume.
func NewOutputStage(registry *Registry, volume VolumeProvider, opts ...Option) *OutputStage {

	options := Options{
		QueueCapacity: DefaultQueueCapacity,
	}

	for _, option := range opts {
		option(&options)
	}

	if volume == nil {
		volume = FixedVolume(1)
	}

	if registry == nil {
		registry = NewRegistry()
	}

	return &OutputStage{
		registry: registry,
		volume:   volume,
		queue:    NewFrameQueue(options.QueueCapacity),
	}
}

// SetOutputBackend creates a new Sink of the given kind for the audio
// device and binds it, replacing any previous Sink. If the Sink can not
// be created, the previous Sink remains active.
func (s *OutputStage) SetOutputBackend(kind, deviceID string) error {
	sink, err := s.registry.NewSink(kind, deviceID)
	if err != nil {
		return err
	}
	return s.bind(&binding{sink: sink, kind: kind, device: deviceID})
}

// SetSink binds an already created Sink, replacing any previous Sink.
func (s *OutputStage) SetSink(sink Sink) error {
	return s.bind(&binding{sink: sink})
}

func (s *OutputStage) bind(b *binding) error {
	s.Lock()
	defer s.Unlock()

	b.sink.SetCallback(s.outputCallback(b))

	// from here on, callbacks of the old sink are ignored
	if old := s.active.Swap(b); old != nil {
		if err := old.sink.Close(); err != nil {
			log.Printf("unable to close %s sink: %v\n", old.kind, err)
		}
	}

	if b.kind != "" {
		log.Printf("output backend: %s (%s)\n", b.kind, b.device)
	}

	if err := b.sink.Start(); err != nil {
		return fmt.Errorf("unable to start %s sink: %w", b.kind, err)
	}
	return nil
}

// Sink returns the currently bound Sink. Calling Sink before a Sink has
// been bound is a programming error and panics.
func (s *OutputStage) Sink() Sink {
	b := s.active.Load()
	if b == nil {
		panic("audio: no output sink bound")
	}
	return b.sink
}

// Backend returns the kind and device of the bound Sink. Both are empty
// if no Sink has been bound through SetOutputBackend.
func (s *OutputStage) Backend() (kind, deviceID string) {
	b := s.active.Load()
	if b == nil {
		return "", ""
	}
	return b.kind, b.device
}

// Kinds returns the sink kinds which can be used with SetOutputBackend.
func (s *OutputStage) Kinds() []string {
	return s.registry.Kinds()
}

// OutputFrame enqueues an audio frame for playback. The frame is dropped
// if no Sink has been bound yet. If the queue is full, the samples which
// don't fit anymore are dropped.
func (s *OutputStage) OutputFrame(frame StereoFrame) {
	b := s.active.Load()
	if b == nil {
		return
	}

	n := s.queue.Push(frame)
	s.stats.pushed.Add(uint64(n))
	s.stats.dropped.Add(uint64(len(frame) - n))

	b.sink.OnSamplesSubmitted(len(frame))
}

// Buffered returns the amount of queued sample pairs.
func (s *OutputStage) Buffered() int {
	return s.queue.Len()
}

// Close releases the bound Sink. The OutputStage must not be used
// afterwards.
func (s *OutputStage) Close() error {
	s.Lock()
	defer s.Unlock()

	b := s.active.Load()
	if b == nil {
		return nil
	}
	return b.sink.Close()
}

// outputCallback returns the pull callback for a particular binding. Once
// the binding has been replaced, the callback only produces silence.
func (s *OutputStage) outputCallback(b *binding) Callback {
	return func(buf []Sample) {
		if s.active.Load() != b {
			clear(buf)
			return
		}
		s.fill(buf)
	}
}

// fill must be short and never block since it is executed on the real
// time thread of the host audio device.
func (s *OutputStage) fill(buf []Sample) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	written := s.queue.Pop(buf)

	if written > 0 {
		s.lastFrame = buf[written-1]
	}

	// hold the last emitted sample pair; this prevents clicks
	for i := written; i < len(buf); i++ {
		buf[i] = s.lastFrame
	}

	applyVolume(buf, s.volume.Volume())

	s.stats.callbacks.Add(1)
	if written < len(buf) {
		s.stats.underruns.Add(1)
		s.stats.padded.Add(uint64(len(buf) - written))
	}
}
