package audio

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownSink is returned when a sink kind has not been registered.
var ErrUnknownSink = errors.New("unknown sink")

// SinkFactory creates a new Sink for the given audio device.
type SinkFactory func(deviceID string) (Sink, error)

// Registry maps sink kinds (e.g. "portaudio") to the factories which
// create them.
type Registry struct {
	sync.RWMutex
	factories map[string]SinkFactory
}

// NewRegistry returns an empty sink Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]SinkFactory),
	}
}

// Register adds a sink factory under the given kind. An existing factory
// with the same kind is replaced.
func (r *Registry) Register(kind string, f SinkFactory) {
	r.Lock()
	defer r.Unlock()
	r.factories[kind] = f
}

// NewSink creates a Sink of the given kind for the audio device.
func (r *Registry) NewSink(kind, deviceID string) (Sink, error) {
	r.RLock()
	f, ok := r.factories[kind]
	r.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownSink, kind)
	}

	s, err := f(deviceID)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s sink: %w", kind, err)
	}
	return s, nil
}

// Kinds returns the registered sink kinds in alphabetical order.
func (r *Registry) Kinds() []string {
	r.RLock()
	defer r.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// FirstOf returns a factory which tries the given kinds in order and
// returns the first Sink which could be created.
func (r *Registry) FirstOf(kinds ...string) SinkFactory {
	return func(deviceID string) (Sink, error) {
		var errs []error
		for _, kind := range kinds {
			s, err := r.NewSink(kind, deviceID)
			if err == nil {
				return s, nil
			}
			errs = append(errs, err)
		}
		return nil, fmt.Errorf("no usable sink: %w", errors.Join(errs...))
	}
}
