package scWriter

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dh1tw/dspout/audio"
	pa "github.com/gordonklaus/portaudio"
)

// ScWriter implements the audio.Sink interface and plays audio on a local
// audio output device (e.g. speakers). The portaudio stream pulls the
// audio through the registered callback.
type ScWriter struct {
	sync.Mutex
	options    Options
	deviceInfo *pa.DeviceInfo
	stream     *pa.Stream
	cb         audio.Callback
	buf        []audio.Sample
	submitted  atomic.Int64
	played     atomic.Int64
	underflows atomic.Int64
	started    bool
}

// NewScWriter returns a new soundcard writer for a specific audio output
// device. portaudio must have been initialized before.
func NewScWriter(opts ...Option) (*ScWriter, error) {

	w := &ScWriter{
		options: Options{
			DeviceName:      "default",
			HostAPI:         "default",
			Samplerate:      audio.NativeSamplerate,
			FramesPerBuffer: 512,
			Latency:         time.Millisecond * 50,
		},
	}

	for _, option := range opts {
		option(&w.options)
	}

	hostAPI, err := lookupHostAPI(w.options.HostAPI)
	if err != nil {
		return nil, err
	}

	if w.options.DeviceName == "default" || w.options.DeviceName == "" {
		w.deviceInfo = hostAPI.DefaultOutputDevice
		if w.deviceInfo == nil {
			return nil, fmt.Errorf("host api %s has no default output device", hostAPI.Name)
		}
	} else {
		dev, err := getPaDevice(w.options.DeviceName, hostAPI)
		if err != nil {
			return nil, err
		}
		w.deviceInfo = dev
	}

	streamParm := pa.StreamParameters{
		FramesPerBuffer: w.options.FramesPerBuffer,
		Output: pa.StreamDeviceParameters{
			Device:   w.deviceInfo,
			Channels: 2,
			Latency:  w.options.Latency,
		},
		SampleRate: w.options.Samplerate,
	}

	w.buf = make([]audio.Sample, w.options.FramesPerBuffer)

	stream, err := pa.OpenStream(streamParm, w.playCb)
	if err != nil {
		return nil,
			fmt.Errorf("unable to open playback audio stream on device %s: %s",
				w.options.DeviceName, err)
	}

	w.stream = stream
	log.Printf("output sound device: %s, HostAPI: %s\n", w.deviceInfo.Name, w.deviceInfo.HostApi.Name)

	return w, nil
}

// portaudio callback which will be called continuously when the stream is
// started; this function should be short and never block
func (p *ScWriter) playCb(out []int16,
	iTime pa.StreamCallbackTimeInfo,
	iFlags pa.StreamCallbackFlags) {

	if iFlags&pa.OutputUnderflow != 0 {
		p.underflows.Add(1)
	}

	frames := len(out) / 2
	if len(p.buf) < frames {
		p.buf = make([]audio.Sample, frames)
	}
	buf := p.buf[:frames]

	if p.cb == nil {
		clear(out)
		return
	}
	p.cb(buf)

	for i, s := range buf {
		out[2*i] = s[0]
		out[2*i+1] = s[1]
	}
	p.played.Add(int64(frames))
}

// SetCallback registers the callback which provides the audio data. It
// must be called before Start.
func (p *ScWriter) SetCallback(cb audio.Callback) {
	p.Lock()
	defer p.Unlock()
	p.cb = cb
}

// OnSamplesSubmitted keeps track of the amount of audio which has been
// queued for this device.
func (p *ScWriter) OnSamplesSubmitted(n int) {
	p.submitted.Add(int64(n))
}

// Latency returns the approximate delay between the submission of a
// sample and its playback on the device.
func (p *ScWriter) Latency() time.Duration {
	pending := p.submitted.Load() - p.played.Load()
	if pending < 0 {
		pending = 0
	}
	return time.Duration(float64(pending)/p.options.Samplerate*float64(time.Second)) +
		p.options.Latency
}

// Underflows returns how often the device reported an output underflow.
func (p *ScWriter) Underflows() int64 {
	return p.underflows.Load()
}

// Start starts streaming audio to the soundcard output device.
func (p *ScWriter) Start() error {
	p.Lock()
	defer p.Unlock()
	if p.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	if p.started {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return err
	}
	p.started = true
	return nil
}

// Close stops the stream and releases the soundcard audio device.
func (p *ScWriter) Close() error {
	p.Lock()
	defer p.Unlock()
	if p.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	if p.started {
		if err := p.stream.Stop(); err != nil {
			log.Println(err)
		}
		p.started = false
	}
	err := p.stream.Close()
	p.stream = nil
	return err
}

var hostAPIs = map[string]pa.HostApiType{
	"indevelopment":   pa.InDevelopment,
	"directsound":     pa.DirectSound,
	"mme":             pa.MME,
	"asio":            pa.ASIO,
	"soundmanager":    pa.SoundManager,
	"coreaudio":       pa.CoreAudio,
	"oss":             pa.OSS,
	"alsa":            pa.ALSA,
	"al":              pa.AL,
	"beos":            pa.BeOS,
	"wdmks":           pa.WDMkS,
	"jack":            pa.JACK,
	"wasapi":          pa.WASAPI,
	"audiosciencehpi": pa.AudioScienceHPI,
}

// lookupHostAPI returns the portaudio host api with the given name. For
// "default" WASAPI is preferred on windows since it provides lower latency
// than the other windows audio apis.
func lookupHostAPI(name string) (*pa.HostApiInfo, error) {

	if name == "default" || name == "" {
		if runtime.GOOS == "windows" {
			if ha, err := pa.HostApi(pa.WASAPI); err == nil {
				return ha, nil
			}
		}
		ha, err := pa.DefaultHostApi()
		if err != nil {
			return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
		}
		return ha, nil
	}

	apiType, ok := hostAPIs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown host api type: %s", name)
	}

	ha, err := pa.HostApi(apiType)
	if err != nil {
		return nil, fmt.Errorf("unable to load host api %s: %s", name, err.Error())
	}
	return ha, nil
}

// getPaDevice checks if the Audio Devices actually exist and
// then returns it
func getPaDevice(name string, hostAPI *pa.HostApiInfo) (*pa.DeviceInfo, error) {
	for _, device := range hostAPI.Devices {
		if device.MaxOutputChannels < 2 {
			continue
		}
		if strings.EqualFold(device.Name, name) {
			return device, nil
		}
	}
	return nil, fmt.Errorf("unknown audio device '%s'", name)
}

// OutputDevices returns the names of all stereo capable output devices
// of the given host api.
func OutputDevices(hostAPI string) ([]string, error) {
	ha, err := lookupHostAPI(hostAPI)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, device := range ha.Devices {
		if device.MaxOutputChannels >= 2 {
			names = append(names, device.Name)
		}
	}
	return names, nil
}
