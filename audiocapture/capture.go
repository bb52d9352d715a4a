package audiocapture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// maxStreamChannels caps how many channels a stream opens. Loopback
// devices advertise up to 8; two are enough to downmix from.
const maxStreamChannels = 2

// Stream reads fixed-size blocks of interleaved float32 samples from a
// capture device.
type Stream struct {
	stream   *portaudio.Stream
	buffer   []float32
	channels int
}

// Open starts a blocking-read capture stream on dev delivering frames
// samples per channel per ReadBlock.
func Open(dev Device, frames int) (*Stream, error) {
	info, err := deviceInfo(dev.Index)
	if err != nil {
		return nil, err
	}

	channels := info.MaxInputChannels
	if channels > maxStreamChannels {
		channels = maxStreamChannels
	}
	buffer := make([]float32, frames*channels)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighInputLatency,
		},
		SampleRate:      float64(dev.SampleRate),
		FramesPerBuffer: frames,
	}
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("open capture stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start capture stream on %q: %w", dev.Name, err)
	}
	return &Stream{stream: stream, buffer: buffer, channels: channels}, nil
}

// ReadBlock blocks until the device fills one block of
// frames*Channels() interleaved samples. The returned slice is reused
// by the next call.
func (s *Stream) ReadBlock() ([]float32, error) {
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("read capture block: %w", err)
	}
	return s.buffer, nil
}

// Channels returns how many interleaved channels ReadBlock delivers.
func (s *Stream) Channels() int {
	return s.channels
}

// Close stops and closes the device stream.
func (s *Stream) Close() error {
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}

// CallbackStream pushes small low-latency frames to a handler as the
// device produces them.
type CallbackStream struct {
	stream   *portaudio.Stream
	channels int
}

// OpenCallback starts a low-latency callback stream on dev. The handler
// receives frames*channels interleaved samples and must not retain the
// slice.
func OpenCallback(dev Device, frames int, handler func([]float32)) (*CallbackStream, error) {
	info, err := deviceInfo(dev.Index)
	if err != nil {
		return nil, err
	}

	channels := info.MaxInputChannels
	if channels > maxStreamChannels {
		channels = maxStreamChannels
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(dev.SampleRate),
		FramesPerBuffer: frames,
	}
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		handler(in)
	})
	if err != nil {
		return nil, fmt.Errorf("open callback stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start callback stream on %q: %w", dev.Name, err)
	}
	return &CallbackStream{stream: stream, channels: channels}, nil
}

// Channels returns how many interleaved channels the handler receives.
func (s *CallbackStream) Channels() int {
	return s.channels
}

// Close stops and closes the device stream.
func (s *CallbackStream) Close() error {
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}

func deviceInfo(index int) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range", index)
	}
	return infos[index], nil
}
