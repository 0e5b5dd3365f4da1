// Package audio owns capture devices: enumeration and ranking, the
// microphone session with its calibration state, and blocking phrase
// capture. Platform backends live behind the Context interface.
package audio

import (
	"math"
	"sort"
	"strings"
)

// DefaultSampleRate is used when a session negotiates the "auto" rate.
// Both backends interpret a zero requested rate as this value so the
// encoded output has a deterministic header.
const DefaultSampleRate = 44100

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32 // 0 selects DefaultSampleRate
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}

// Onboard analog inputs transcribe better than whatever ALSA happens to
// list first, so rank them ahead of the rest.
var preferredKeywords = []string{"analog", "alc294"}

func isPreferred(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range preferredKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// HDMI capture endpoints are loopbacks of display audio, never microphones.
func isHDMIOnly(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "hdmi") && !strings.Contains(lower, "analog")
}

// Rank orders capture devices for selection: HDMI-only endpoints are
// excluded, preferred analog hardware sorts first. The sort is stable, so
// ties keep enumeration order. If filtering removes every device, the
// unfiltered list is returned instead.
func Rank(devices []DeviceInfo) []DeviceInfo {
	kept := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		if isHDMIOnly(d.Name) {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		kept = append(kept, devices...)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return isPreferred(kept[i].Name) && !isPreferred(kept[j].Name)
	})
	return kept
}

// RMS returns the root-mean-square energy of 16-bit samples, normalized
// to 0..1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		n := float64(s) / 32768.0
		sumSquares += n * n
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// MeterLevel maps a normalized RMS value onto the 0..20 scale the UI
// level bar renders.
func MeterLevel(rms float64) int {
	level := int(rms * 60)
	if level > 20 {
		level = 20
	}
	return level
}
