package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrTimeout reports that the onset window elapsed with no speech.
	ErrTimeout = errors.New("no speech before timeout")
	// ErrNoDevices reports an empty capture device list.
	ErrNoDevices = errors.New("no capture devices found")
)

// Sample-rate candidates tried in order during initialization. 0 is the
// backend default.
var rateCandidates = []uint32{44100, 48000, 16000, 0}

const (
	defaultProbe = 500 * time.Millisecond
	// Floor for the speech threshold; roughly the classic energy
	// threshold of 300 on the int16 scale.
	minThreshold    = 0.01
	thresholdFactor = 1.75
)

// ListenOpts are the timing knobs of one blocking capture.
type ListenOpts struct {
	Onset     time.Duration // max wait for speech to begin
	MaxPhrase time.Duration // hard cap on phrase length
	Pause     time.Duration // trailing quiet that ends a phrase
	Tick      time.Duration // metering/detection interval
}

var DefaultListenOpts = ListenOpts{
	Onset:     10 * time.Second,
	MaxPhrase: 60 * time.Second,
	Pause:     800 * time.Millisecond,
	Tick:      100 * time.Millisecond,
}

// Session is one initialized microphone: a device, a negotiated sample
// rate, and the ambient-noise calibration taken against it. Sessions are
// immutable once initialized; re-initialization replaces the whole value.
type Session struct {
	ctx        Context
	device     *DeviceInfo
	sampleRate uint32 // 0 = backend default
	ambient    float64
	threshold  float64
}

func (s *Session) Device() *DeviceInfo { return s.device }

func (s *Session) DeviceName() string {
	if s.device == nil {
		return "system default"
	}
	return s.device.Name
}

// SampleRate is the negotiated rate; 0 means the backend default.
func (s *Session) SampleRate() uint32 { return s.sampleRate }

// EffectiveRate is the rate the captured PCM is actually encoded at.
func (s *Session) EffectiveRate() uint32 {
	if s.sampleRate == 0 {
		return DefaultSampleRate
	}
	return s.sampleRate
}

func (s *Session) config() CaptureConfig {
	return CaptureConfig{SampleRate: s.sampleRate, Channels: 1}
}

// Initialize negotiates a working capture configuration for device,
// trying each sample-rate candidate until a short calibration probe
// succeeds. It returns an error only when every candidate fails.
func Initialize(ctx Context, device *DeviceInfo, probe time.Duration) (*Session, error) {
	if probe <= 0 {
		probe = defaultProbe
	}
	var lastErr error
	for _, rate := range rateCandidates {
		s := &Session{ctx: ctx, device: device, sampleRate: rate}
		if err := s.Recalibrate(probe); err != nil {
			lastErr = err
			continue
		}
		return s, nil
	}
	return nil, fmt.Errorf("initializing microphone %q: %w", deviceLabel(device), lastErr)
}

func deviceLabel(device *DeviceInfo) string {
	if device == nil {
		return "system default"
	}
	return device.Name
}

// Recalibrate measures ambient noise for dur and refreshes the speech
// threshold. Also used as the open-device probe during initialization.
func (s *Session) Recalibrate(dur time.Duration) error {
	dev, err := s.ctx.NewCapture(s.device, s.config())
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	defer dev.Close()

	var mu sync.Mutex
	var samples []int16
	dev.SetCallback(func(data []byte, _ uint32) {
		decoded := decodePCM16(data)
		mu.Lock()
		samples = append(samples, decoded...)
		mu.Unlock()
	})
	defer dev.ClearCallback()

	if err := dev.Start(); err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	time.Sleep(dur)
	dev.Stop()

	mu.Lock()
	ambient := RMS(samples)
	mu.Unlock()

	s.ambient = ambient
	s.threshold = ambient * thresholdFactor
	if s.threshold < minThreshold {
		s.threshold = minThreshold
	}
	return nil
}

// Listen blocks until a phrase is captured or the onset window times
// out. onLevel, if non-nil, receives a 0..20 meter value once per tick
// for the duration of the capture. The returned samples start at speech
// onset and include the trailing pause.
func (s *Session) Listen(opts ListenOpts, onLevel func(int)) ([]int16, error) {
	if opts.Tick <= 0 {
		opts = DefaultListenOpts
	}

	dev, err := s.ctx.NewCapture(s.device, s.config())
	if err != nil {
		return nil, fmt.Errorf("opening capture: %w", err)
	}
	defer dev.Close()

	var mu sync.Mutex
	var buf []int16
	dev.SetCallback(func(data []byte, _ uint32) {
		decoded := decodePCM16(data)
		mu.Lock()
		buf = append(buf, decoded...)
		mu.Unlock()
	})
	defer dev.ClearCallback()

	if err := dev.Start(); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	defer dev.Stop()

	det := newPhraseDetector(
		s.threshold,
		int(opts.Onset/opts.Tick),
		int(opts.Pause/opts.Tick),
		int(opts.MaxPhrase/opts.Tick),
	)

	ticker := time.NewTicker(opts.Tick)
	defer ticker.Stop()

	windowStart := 0 // index into buf where the current tick window begins
	phraseStart := 0
	for range ticker.C {
		mu.Lock()
		window := buf[windowStart:]
		prevStart := windowStart
		windowStart = len(buf)
		mu.Unlock()

		level := RMS(window)
		if onLevel != nil {
			onLevel(MeterLevel(level))
		}

		switch det.Tick(level) {
		case PhraseStart:
			// Keep the window that tripped the detector; it holds the
			// first syllable.
			phraseStart = prevStart
		case PhraseEnd, PhraseMax:
			mu.Lock()
			out := make([]int16, len(buf)-phraseStart)
			copy(out, buf[phraseStart:])
			mu.Unlock()
			return out, nil
		case PhraseTimeout:
			return nil, ErrTimeout
		}
	}
	return nil, nil // unreachable; ticker never closes
}

func decodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	return samples
}

// Manager owns the active session and the exclusive capture lock. The
// session pointer is replaced atomically on initialize/cycle; the lock
// serializes capture cycles and device changes without ever queuing.
type Manager struct {
	ctx   Context
	probe time.Duration

	captureMu sync.Mutex // exclusive capture lock; TryLock only
	cur       atomic.Pointer[Session]

	mu      sync.Mutex
	devices []DeviceInfo // ranked
	pos     int
}

func NewManager(ctx Context, probe time.Duration) *Manager {
	if probe <= 0 {
		probe = defaultProbe
	}
	return &Manager{ctx: ctx, probe: probe}
}

// Refresh re-enumerates and re-ranks the capture devices.
func (m *Manager) Refresh() error {
	if m.ctx == nil {
		return errors.New("audio subsystem unavailable")
	}
	devices, err := m.ctx.Devices()
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}
	m.mu.Lock()
	m.devices = Rank(devices)
	m.mu.Unlock()
	return nil
}

func (m *Manager) Devices() []DeviceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeviceInfo, len(m.devices))
	copy(out, m.devices)
	return out
}

// Use initializes a session against the named device, or the top-ranked
// device when name is empty. The previous session, if any, is replaced.
func (m *Manager) Use(name string) error {
	m.mu.Lock()
	if len(m.devices) == 0 {
		m.mu.Unlock()
		return ErrNoDevices
	}
	pos := 0
	if name != "" {
		for i := range m.devices {
			if m.devices[i].Name == name {
				pos = i
				break
			}
		}
	}
	device := m.devices[pos]
	m.mu.Unlock()

	sess, err := Initialize(m.ctx, &device, m.probe)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
	m.cur.Store(sess)
	return nil
}

// Cycle advances to the next ranked device, wrapping, and re-initializes.
// Callers must hold the capture lock.
func (m *Manager) Cycle() (*Session, error) {
	m.mu.Lock()
	if len(m.devices) == 0 {
		m.mu.Unlock()
		return nil, ErrNoDevices
	}
	pos := (m.pos + 1) % len(m.devices)
	device := m.devices[pos]
	m.mu.Unlock()

	sess, err := Initialize(m.ctx, &device, m.probe)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
	m.cur.Store(sess)
	return sess, nil
}

// Session returns the active session, or nil before initialization.
func (m *Manager) Session() *Session { return m.cur.Load() }

// TryLock acquires the exclusive capture lock without blocking. A false
// return means another cycle is in flight; callers report busy instead
// of waiting.
func (m *Manager) TryLock() bool { return m.captureMu.TryLock() }

func (m *Manager) Unlock() { m.captureMu.Unlock() }
