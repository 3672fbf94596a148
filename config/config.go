package config

import (
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings contains all values which can be configured through the config
// file, command line flags or environment variables.
type Settings struct {
	Sink              string
	Device            string
	HostAPI           string
	Samplerate        float64
	FramesPerBuffer   int
	Latency           time.Duration
	QueueCapacity     int
	Volume            float32
	HTTPAddress       string
	NatsURL           string
	NatsSubject       string
	NatsStateInterval time.Duration
}

// SetDefaults registers the default values of all settings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("audio.sink", "auto")
	v.SetDefault("audio.device", "default")
	v.SetDefault("audio.hostapi", "default")
	v.SetDefault("audio.samplerate", audio.NativeSamplerate)
	v.SetDefault("audio.frames-per-buffer", 512)
	v.SetDefault("audio.latency", time.Millisecond*50)
	v.SetDefault("audio.queue-capacity", audio.DefaultQueueCapacity)
	v.SetDefault("audio.volume", 1.0)
	v.SetDefault("http.address", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "dspout")
	v.SetDefault("nats.state-interval", time.Second*5)
}

// Load reads the settings from viper and checks them for validity.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Sink:              v.GetString("audio.sink"),
		Device:            v.GetString("audio.device"),
		HostAPI:           v.GetString("audio.hostapi"),
		Samplerate:        v.GetFloat64("audio.samplerate"),
		FramesPerBuffer:   v.GetInt("audio.frames-per-buffer"),
		Latency:           v.GetDuration("audio.latency"),
		QueueCapacity:     v.GetInt("audio.queue-capacity"),
		Volume:            float32(v.GetFloat64("audio.volume")),
		HTTPAddress:       v.GetString("http.address"),
		NatsURL:           v.GetString("nats.url"),
		NatsSubject:       v.GetString("nats.subject"),
		NatsStateInterval: v.GetDuration("nats.state-interval"),
	}

	if err := s.check(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) check() error {

	if s.Sink == "" {
		return &parmError{parm: "audio.sink", msg: "must not be empty"}
	}

	if s.Samplerate < 8000 || s.Samplerate > 192000 {
		return &parmError{
			parm: "audio.samplerate",
			msg:  "allowed values are [8000...192000]",
		}
	}

	if s.FramesPerBuffer < 16 || s.FramesPerBuffer > 16384 {
		return &parmError{
			parm: "audio.frames-per-buffer",
			msg:  "allowed values are [16...16384]",
		}
	}

	if s.QueueCapacity < audio.FrameSamples {
		return &parmError{
			parm: "audio.queue-capacity",
			msg:  fmt.Sprintf("must hold at least one frame (%d sample pairs)", audio.FrameSamples),
		}
	}

	if s.Volume < 0 || s.Volume > 1 {
		return &parmError{
			parm: "audio.volume",
			msg:  "allowed values are [0...1]",
		}
	}

	if s.NatsURL != "" && s.NatsSubject == "" {
		return &parmError{parm: "nats.subject", msg: "must not be empty"}
	}

	return nil
}

type parmError struct {
	parm string
	msg  string
}

func (e *parmError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.parm, e.msg)
}

// Backend is implemented by the component which owns the audio sink.
type Backend interface {
	SetOutputBackend(kind, deviceID string) error
}

// Apply applies the differences between prev and next which can be
// changed at runtime (volume and output backend). Changes of other
// settings require a restart.
func Apply(prev, next Settings, backend Backend, vol *Volume) error {
	if prev.Volume != next.Volume {
		vol.Set(next.Volume)
		log.Printf("volume: %.2f\n", next.Volume)
	}

	if prev.Sink != next.Sink || prev.Device != next.Device {
		if err := backend.SetOutputBackend(next.Sink, next.Device); err != nil {
			return err
		}
	}

	prev.Volume, prev.Sink, prev.Device = next.Volume, next.Sink, next.Device
	if !reflect.DeepEqual(prev, next) {
		log.Println("some settings changed which only take effect after a restart")
	}
	return nil
}

// Watch watches the config file and applies the runtime changeable
// settings whenever the file is modified.
func Watch(v *viper.Viper, current Settings, backend Backend, vol *Volume) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := Load(v)
		if err != nil {
			log.Printf("ignoring config change in %s: %v\n", e.Name, err)
			return
		}
		if err := Apply(current, next, backend, vol); err != nil {
			log.Println(err)
			return
		}
		current = next
	})
	v.WatchConfig()
}
