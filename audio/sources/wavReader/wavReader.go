package wavReader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dh1tw/dspout/audio"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

// FrameWriter is implemented by everything which accepts emulated audio
// frames, typically an audio.OutputStage.
type FrameWriter interface {
	OutputFrame(audio.StereoFrame)
}

// WavReader replays 16 bit PCM audio from a wav file frame by frame, at
// the pace in which the emulated hardware would produce them.
type WavReader struct {
	options Options
	frames  []audio.StereoFrame
}

// NewWavReader reads a wav file from disk into memory. Only 16 bit mono
// or stereo files are supported; the audio is not resampled.
func NewWavReader(file string, opts ...Option) (*WavReader, error) {

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)

	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, expected 16", dec.BitDepth)
	}

	chs := int(dec.NumChans)
	if chs != 1 && chs != 2 {
		return nil, fmt.Errorf("unsupported amount of channels: %d", chs)
	}

	w := &WavReader{
		options: Options{
			Samplerate:   audio.NativeSamplerate,
			FrameSamples: audio.FrameSamples,
		},
	}

	for _, o := range opts {
		o(&w.options)
	}

	buf := &ga.IntBuffer{
		Data:   make([]int, w.options.FrameSamples*chs),
		Format: dec.Format(),
	}

	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		w.frames = append(w.frames, toStereoFrame(buf.Data[:n], chs, w.options.FrameSamples))
	}

	if len(w.frames) == 0 {
		return nil, errors.New("WAV file contains no audio")
	}

	return w, nil
}

// toStereoFrame converts interleaved PCM data into a frame of the fixed
// emulated frame size. A short last frame is padded with silence; mono
// audio is copied onto both channels.
func toStereoFrame(data []int, chs, size int) audio.StereoFrame {
	frame := make(audio.StereoFrame, size)
	for i := 0; i < size && i*chs < len(data); i++ {
		if chs == 1 {
			frame[i] = audio.Sample{int16(data[i]), int16(data[i])}
			continue
		}
		if 2*i+1 >= len(data) {
			break
		}
		frame[i] = audio.Sample{int16(data[2*i]), int16(data[2*i+1])}
	}
	return frame
}

// Frames returns the amount of frames read from the file.
func (w *WavReader) Frames() int {
	return len(w.frames)
}

// FramePeriod returns the time between two frames.
func (w *WavReader) FramePeriod() time.Duration {
	return time.Duration(float64(w.options.FrameSamples) / w.options.Samplerate * float64(time.Second))
}

// Play writes the frames to fw in the emulated frame rhythm until all
// frames have been written (or forever in loop mode) or ctx is canceled.
func (w *WavReader) Play(ctx context.Context, fw FrameWriter) error {

	ticker := time.NewTicker(w.FramePeriod())
	defer ticker.Stop()

	for i := 0; ; i++ {
		if i == len(w.frames) {
			if !w.options.Loop {
				return nil
			}
			i = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fw.OutputFrame(w.frames[i])
		}
	}
}
