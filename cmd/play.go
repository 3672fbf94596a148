// Copyright © 2016 Tobias Wellnitz, DH1TW <Tobias.Wellnitz@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/dh1tw/dspout/audio/sinks/nullWriter"
	"github.com/dh1tw/dspout/audio/sinks/otoWriter"
	"github.com/dh1tw/dspout/audio/sinks/scWriter"
	"github.com/dh1tw/dspout/audio/sinks/wavWriter"
	"github.com/dh1tw/dspout/audio/sources/wavReader"
	"github.com/dh1tw/dspout/config"
	"github.com/dh1tw/dspout/remote"
	"github.com/dh1tw/dspout/webserver"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a wav file through the emulated audio output",
	Long: `Play a 16 bit wav file through the emulated audio output.

The file is cut into frames of 160 sample pairs which are submitted at the
pace of the emulated hardware (32728 Hz by default) to the selected output
backend. Available backends are:

  auto       first working of portaudio, oto and null
  portaudio  sound card through portaudio (--device selects the device)
  oto        default sound device of the operating system
  wav        write into a wav file (--device is the file path)
  null       discard the audio, driven by a virtual clock

In order to find the supported audio devices and audio host APIs
for your platform run:

$ dspout(.exe) enumerate
`,
	Run: play,
}

func init() {
	RootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("file", "f", "", "wav file to play")
	playCmd.Flags().BoolP("loop", "l", false, "play the file in an endless loop")

	playCmd.Flags().StringP("sink", "s", "auto", "output backend (auto, portaudio, oto, wav, null)")
	playCmd.Flags().StringP("device", "d", "default", "output device (or file path for the wav backend)")
	playCmd.Flags().String("hostapi", "default", "portaudio host API")
	playCmd.Flags().Float64("samplerate", audio.NativeSamplerate, "sample rate of the emulated hardware")
	playCmd.Flags().IntP("frames-per-buffer", "b", 512, "sample pairs requested per device callback")
	playCmd.Flags().Duration("latency", time.Millisecond*50, "output latency")
	playCmd.Flags().Int("queue-capacity", audio.DefaultQueueCapacity, "capacity of the frame queue in sample pairs")
	playCmd.Flags().Float64P("volume", "v", 1, "output volume [0...1]")

	playCmd.Flags().String("http-address", "", "address of the REST API (e.g. localhost:8080); disabled if empty")
	playCmd.Flags().String("nats-url", "", "NATS broker (e.g. nats://localhost:4222); disabled if empty")
	playCmd.Flags().String("nats-subject", "dspout", "subject prefix for NATS control messages")

	viper.BindPFlag("audio.sink", playCmd.Flags().Lookup("sink"))
	viper.BindPFlag("audio.device", playCmd.Flags().Lookup("device"))
	viper.BindPFlag("audio.hostapi", playCmd.Flags().Lookup("hostapi"))
	viper.BindPFlag("audio.samplerate", playCmd.Flags().Lookup("samplerate"))
	viper.BindPFlag("audio.frames-per-buffer", playCmd.Flags().Lookup("frames-per-buffer"))
	viper.BindPFlag("audio.latency", playCmd.Flags().Lookup("latency"))
	viper.BindPFlag("audio.queue-capacity", playCmd.Flags().Lookup("queue-capacity"))
	viper.BindPFlag("audio.volume", playCmd.Flags().Lookup("volume"))
	viper.BindPFlag("http.address", playCmd.Flags().Lookup("http-address"))
	viper.BindPFlag("nats.url", playCmd.Flags().Lookup("nats-url"))
	viper.BindPFlag("nats.subject", playCmd.Flags().Lookup("nats-subject"))
}

func play(cmd *cobra.Command, args []string) {

	readConfig()

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		exit(err)
	}

	file, _ := cmd.Flags().GetString("file")
	loop, _ := cmd.Flags().GetBool("loop")
	if file == "" {
		exit(errors.New("no input file provided (--file)"))
	}

	src, err := wavReader.NewWavReader(file,
		wavReader.Samplerate(settings.Samplerate),
		wavReader.Loop(loop),
	)
	if err != nil {
		exit(fmt.Errorf("unable to open %s: %w", file, err))
	}

	portaudio.Initialize()
	defer portaudio.Terminate()

	vol := config.NewVolume(settings.Volume)

	out := audio.NewOutputStage(newRegistry(settings), vol,
		audio.QueueCapacity(settings.QueueCapacity))
	defer out.Close()

	if err := out.SetOutputBackend(settings.Sink, settings.Device); err != nil {
		exit(err)
	}

	if w, ok := out.Sink().(*scWriter.ScWriter); ok {
		log.Printf("output latency: %v\n", w.Latency())
		defer func() {
			log.Printf("output underflows: %d\n", w.Underflows())
		}()
	}

	if viper.ConfigFileUsed() != "" {
		config.Watch(viper.GetViper(), settings, out, vol)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if settings.HTTPAddress != "" {
		web := webserver.NewWebServer(settings.HTTPAddress, out, vol)
		go func() {
			if err := web.Start(ctx); err != nil {
				log.Println("webserver:", err)
				cancel()
			}
		}()
	}

	if settings.NatsURL != "" {
		r := remote.NewRemote(out, vol,
			remote.URL(settings.NatsURL),
			remote.Subject(settings.NatsSubject),
			remote.StateInterval(settings.NatsStateInterval),
		)
		go func() {
			if err := r.Run(ctx); err != nil {
				log.Println(err)
				cancel()
			}
		}()
	}

	log.Printf("playing %s (%d frames)\n", file, src.Frames())

	if err := src.Play(ctx, out); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Println(err)
		}
		return
	}

	drain(ctx, out)
}

// drain waits until the output backend consumed all buffered audio.
func drain(ctx context.Context, out *audio.OutputStage) {
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()

	for out.Buffered() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// newRegistry returns a registry containing all output backends built
// into dspout.
func newRegistry(s config.Settings) *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("portaudio", func(device string) (audio.Sink, error) {
		w, err := scWriter.NewScWriter(
			scWriter.HostAPI(s.HostAPI),
			scWriter.DeviceName(device),
			scWriter.Samplerate(s.Samplerate),
			scWriter.FramesPerBuffer(s.FramesPerBuffer),
			scWriter.Latency(s.Latency),
		)
		if err != nil {
			return nil, err
		}
		return w, nil
	})

	reg.Register("oto", func(device string) (audio.Sink, error) {
		w, err := otoWriter.NewOtoWriter(
			otoWriter.Samplerate(int(s.Samplerate)),
			otoWriter.BufferSize(s.Latency),
		)
		if err != nil {
			return nil, err
		}
		return w, nil
	})

	reg.Register("wav", func(path string) (audio.Sink, error) {
		w, err := wavWriter.NewWavWriter(path,
			wavWriter.Samplerate(int(s.Samplerate)),
			wavWriter.FramesPerBuffer(s.FramesPerBuffer),
		)
		if err != nil {
			return nil, err
		}
		return w, nil
	})

	reg.Register("null", func(device string) (audio.Sink, error) {
		return nullWriter.NewNullWriter(
			nullWriter.Samplerate(s.Samplerate),
			nullWriter.FramesPerBuffer(s.FramesPerBuffer),
		), nil
	})

	reg.Register("auto", reg.FirstOf("portaudio", "oto", "null"))

	return reg
}
