package config

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeClamps(t *testing.T) {
	v := NewVolume(0.5)
	assert.Equal(t, float32(0.5), v.Volume())

	v.Set(2)
	assert.Equal(t, float32(1), v.Volume())

	v.Set(-0.1)
	assert.Equal(t, float32(0), v.Volume())
}

func TestVolumeConcurrentAccess(t *testing.T) {
	v := NewVolume(1)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v.Set(float32(i%2) * 0.25)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			vol := v.Volume()
			if vol != 0 && vol != 0.25 && vol != 1 {
				t.Errorf("torn volume %v", vol)
				return
			}
		}
	}()
	wg.Wait()
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "auto", s.Sink)
	assert.Equal(t, "default", s.Device)
	assert.Equal(t, float64(audio.NativeSamplerate), s.Samplerate)
	assert.Equal(t, audio.DefaultQueueCapacity, s.QueueCapacity)
	assert.Equal(t, float32(1), s.Volume)
	assert.Equal(t, 50*time.Millisecond, s.Latency)
	assert.Equal(t, "dspout", s.NatsSubject)
}

func TestLoadFromConfigFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[audio]
sink = "wav"
device = "/tmp/out.wav"
volume = 0.3
frames-per-buffer = 256
latency = "20ms"
`)))

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "wav", s.Sink)
	assert.Equal(t, "/tmp/out.wav", s.Device)
	assert.InDelta(t, 0.3, s.Volume, 1e-6)
	assert.Equal(t, 256, s.FramesPerBuffer)
	assert.Equal(t, 20*time.Millisecond, s.Latency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{"audio.sink", ""},
		{"audio.samplerate", 100},
		{"audio.frames-per-buffer", 1},
		{"audio.queue-capacity", 10},
		{"audio.volume", 1.5},
		{"audio.volume", -1},
	}
	for _, tc := range tests {
		v := viper.New()
		SetDefaults(v)
		v.Set(tc.key, tc.value)
		_, err := Load(v)
		assert.ErrorContains(t, err, tc.key, "%s=%v", tc.key, tc.value)
	}

	v := viper.New()
	SetDefaults(v)
	v.Set("nats.url", "nats://localhost:4222")
	v.Set("nats.subject", "")
	_, err := Load(v)
	assert.ErrorContains(t, err, "nats.subject")
}

type fakeBackend struct {
	kind, device string
	calls        int
	err          error
}

func (b *fakeBackend) SetOutputBackend(kind, device string) error {
	b.calls++
	if b.err != nil {
		return b.err
	}
	b.kind, b.device = kind, device
	return nil
}

func TestApply(t *testing.T) {
	prev := Settings{Sink: "null", Device: "default", Volume: 1}
	vol := NewVolume(1)
	b := &fakeBackend{}

	// nothing changed
	require.NoError(t, Apply(prev, prev, b, vol))
	assert.Equal(t, 0, b.calls)

	next := prev
	next.Volume = 0.4
	require.NoError(t, Apply(prev, next, b, vol))
	assert.Equal(t, float32(0.4), vol.Volume())
	assert.Equal(t, 0, b.calls)

	next.Sink, next.Device = "wav", "/tmp/x.wav"
	require.NoError(t, Apply(prev, next, b, vol))
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, "wav", b.kind)
	assert.Equal(t, "/tmp/x.wav", b.device)

	b.err = errors.New("busy")
	next.Device = "/tmp/y.wav"
	assert.EqualError(t, Apply(prev, next, b, vol), "busy")
}
