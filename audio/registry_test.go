package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNewSink(t *testing.T) {
	r := NewRegistry()
	var gotDevice string
	r.Register("test", func(device string) (Sink, error) {
		gotDevice = device
		return &testSink{}, nil
	})

	s, err := r.NewSink("test", "hw:0")
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, "hw:0", gotDevice)

	_, err = r.NewSink("alsa", "hw:0")
	assert.ErrorIs(t, err, ErrUnknownSink)
	assert.EqualError(t, err, "unknown sink alsa")
}

func TestRegistryKinds(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Kinds())

	f := func(string) (Sink, error) { return &testSink{}, nil }
	r.Register("oto", f)
	r.Register("null", f)
	r.Register("portaudio", f)
	r.Register("null", f)

	assert.Equal(t, []string{"null", "oto", "portaudio"}, r.Kinds())
}

func TestRegistryFirstOf(t *testing.T) {
	r := NewRegistry()
	fallback := &testSink{}
	r.Register("portaudio", func(string) (Sink, error) {
		return nil, errors.New("no host api")
	})
	r.Register("null", func(string) (Sink, error) {
		return fallback, nil
	})
	r.Register("auto", r.FirstOf("portaudio", "oto", "null"))

	s, err := r.NewSink("auto", "default")
	require.NoError(t, err)
	assert.Same(t, fallback, s)

	r.Register("none", r.FirstOf("portaudio", "oto"))
	_, err = r.NewSink("none", "default")
	assert.ErrorContains(t, err, "no host api")
	assert.ErrorIs(t, err, ErrUnknownSink)
}
