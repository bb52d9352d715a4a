// Package audiocapture resolves loopback input devices and reads fixed
// blocks of interleaved samples from them through PortAudio.
package audiocapture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// ErrNoDevice is returned when no input device fits the request.
var ErrNoDevice = errors.New("no suitable audio input device found")

// Device describes one input-capable device.
type Device struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	HostAPI    string `json:"hostApi"`
	Channels   int    `json:"channels"`   // Max input channels
	SampleRate int    `json:"sampleRate"` // Device default rate
	IsDefault  bool   `json:"isDefault"`
	IsLoopback bool   `json:"isLoopback"` // Captures system audio
	IsVirtual  bool   `json:"isVirtual"`  // Virtual cable
}

// Label returns the display name with a role suffix, for listings.
func (d Device) Label() string {
	switch {
	case d.IsLoopback:
		return d.Name + " (System Audio)"
	case d.IsVirtual:
		return d.Name + " (Virtual Cable)"
	}
	return d.Name
}

// Device-name families the resolver recognizes, all matched
// case-insensitively as substrings.
var (
	stereoMixNames    = []string{"stereo mix", "what u hear", "loopback"}
	virtualCableNames = []string{"cable output", "vb-audio", "vb-cable", "blackhole", "soundflower", "virtual"}
	monitorNames      = []string{"monitor", "wasapi loopback"}
)

func nameHasAny(name string, keys []string) bool {
	name = strings.ToLower(name)
	for _, k := range keys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Initialize readies PortAudio. Pair with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// Devices returns the input-capable devices. PortAudio must be
// initialized.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var devices []Device
	for i, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		var hostAPI string
		if info.HostApi != nil {
			hostAPI = info.HostApi.Name
		}
		devices = append(devices, Device{
			Index:      i,
			Name:       info.Name,
			HostAPI:    hostAPI,
			Channels:   info.MaxInputChannels,
			SampleRate: int(info.DefaultSampleRate),
			IsDefault:  info.Name == defaultName,
			IsLoopback: nameHasAny(info.Name, stereoMixNames) || nameHasAny(info.Name, monitorNames),
			IsVirtual:  nameHasAny(info.Name, virtualCableNames),
		})
	}
	return devices, nil
}

// Resolve picks the capture device for spec: "auto" (or empty) runs
// loopback auto-detection, a number selects by device index, anything
// else matches the device name case-insensitively as a substring.
func Resolve(spec string) (Device, error) {
	devices, err := Devices()
	if err != nil {
		return Device{}, err
	}
	return resolve(spec, devices)
}

func resolve(spec string, devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoDevice
	}

	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "auto") {
		if d, ok := autodetect(devices); ok {
			return d, nil
		}
		return Device{}, ErrNoDevice
	}

	if idx, err := strconv.Atoi(spec); err == nil {
		for _, d := range devices {
			if d.Index == idx {
				return d, nil
			}
		}
		return Device{}, fmt.Errorf("no input device at index %d", idx)
	}

	needle := strings.ToLower(spec)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("no input device matching %q", spec)
}

// autodetect walks the loopback priority chain: an ideal stereo-mix
// style device with 2+ channels, then virtual cables, then any
// stereo-mix device, then monitor-style taps, then any multichannel
// input, and finally the default input device. WASAPI devices win ties,
// they loop back cleanly during calls.
func autodetect(devices []Device) (Device, bool) {
	tiers := []func(Device) bool{
		func(d Device) bool { return nameHasAny(d.Name, stereoMixNames) && d.Channels >= 2 },
		func(d Device) bool { return d.IsVirtual },
		func(d Device) bool { return nameHasAny(d.Name, stereoMixNames) },
		func(d Device) bool { return nameHasAny(d.Name, monitorNames) },
		func(d Device) bool { return d.Channels >= 2 },
	}
	for _, match := range tiers {
		if d, ok := firstPreferWASAPI(devices, match); ok {
			return d, true
		}
	}
	for _, d := range devices {
		if d.IsDefault {
			return d, true
		}
	}
	return Device{}, false
}

func firstPreferWASAPI(devices []Device, match func(Device) bool) (Device, bool) {
	found := -1
	for i, d := range devices {
		if !match(d) {
			continue
		}
		if strings.Contains(strings.ToLower(d.HostAPI), "wasapi") {
			return d, true
		}
		if found < 0 {
			found = i
		}
	}
	if found >= 0 {
		return devices[found], true
	}
	return Device{}, false
}
