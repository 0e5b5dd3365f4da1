package audio

import (
	"fmt"
	"sync"
	"time"
)

// FakeContext is a scripted capture backend for tests. Every capture it
// opens replays LeadSilence worth of silence, then the Phrase samples,
// then silence until stopped.
type FakeContext struct {
	DeviceList []DeviceInfo
	EnumErr    error
	FailRates  map[uint32]bool // requested rates whose open fails
	OpenErr    error           // fails every open when set

	LeadSilence time.Duration
	Phrase      []int16
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	if f.EnumErr != nil {
		return nil, f.EnumErr
	}
	return f.DeviceList, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if f.FailRates[config.SampleRate] {
		return nil, fmt.Errorf("sample rate %d rejected", config.SampleRate)
	}
	return &FakeCapture{lead: f.LeadSilence, phrase: f.Phrase}, nil
}

func (f *FakeContext) Close() {}

// LoudSamples builds n samples well above any calibrated threshold.
func LoudSamples(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 8000
		} else {
			out[i] = -8000
		}
	}
	return out
}

const fakeChunk = 256

type FakeCapture struct {
	lead   time.Duration
	phrase []int16

	mu     sync.Mutex
	cb     DataCallback
	stopCh chan struct{}
	done   chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)
		feed := func(samples []int16) bool {
			data := encodePCM16(samples)
			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()
			if cb != nil {
				cb(data, uint32(len(samples)))
			}
			select {
			case <-f.stopCh:
				return false
			case <-time.After(time.Millisecond):
				return true
			}
		}

		silence := make([]int16, fakeChunk)
		deadline := time.Now().Add(f.lead)
		for time.Now().Before(deadline) {
			if !feed(silence) {
				return
			}
		}
		for pos := 0; pos < len(f.phrase); pos += fakeChunk {
			end := pos + fakeChunk
			if end > len(f.phrase) {
				end = len(f.phrase)
			}
			if !feed(f.phrase[pos:end]) {
				return
			}
		}
		for {
			if !feed(silence) {
				return
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.done
}

func (f *FakeCapture) Close() {
	f.Stop()
}

func encodePCM16(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}
