package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"dengar/audio"
	"dengar/bridge"
	"dengar/chat"
	"dengar/encoder"
	"dengar/log"
	"dengar/transcriber"
)

type ListeningState int32

const (
	StateIdle ListeningState = iota
	StateListening
	StateRecognizing
	StateThinking
)

type OutcomeKind int

const (
	OutcomeRecognized OutcomeKind = iota
	OutcomeNotUnderstood
	OutcomeTimeout
	OutcomeServiceError
	OutcomeDeviceError
	OutcomeBusy
)

// ListenOutcome is the result of one capture cycle.
type ListenOutcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

const (
	recalibrateDur = 300 * time.Millisecond
	cyclePause     = 300 * time.Millisecond
)

// Controller drives capture cycles against the microphone, pushes the
// results through transcription and optional chat, and reports
// everything to the UI over the event bridge.
type Controller struct {
	mics    *audio.Manager
	trans   transcriber.Transcriber
	chatMgr *chat.Manager
	events  *bridge.Bridge

	listen      audio.ListenOpts
	artifactDir string

	state      atomic.Int32
	continuous atomic.Bool
	debugMode  atomic.Bool
	chatOn     atomic.Bool
	language   atomic.Value // string, BCP 47

	loopStop chan struct{}
	loopDone chan struct{}
}

func newController(mics *audio.Manager, trans transcriber.Transcriber, chatMgr *chat.Manager, events *bridge.Bridge, language string) *Controller {
	c := &Controller{
		mics:        mics,
		trans:       trans,
		chatMgr:     chatMgr,
		events:      events,
		listen:      audio.DefaultListenOpts,
		artifactDir: log.Dir(),
	}
	c.language.Store(language)
	c.chatOn.Store(chatMgr != nil)
	return c
}

func (c *Controller) State() ListeningState {
	return ListeningState(c.state.Load())
}

func (c *Controller) setState(s ListeningState) {
	c.state.Store(int32(s))
}

func (c *Controller) Language() string {
	return c.language.Load().(string)
}

func (c *Controller) Continuous() bool { return c.continuous.Load() }
func (c *Controller) DebugMode() bool  { return c.debugMode.Load() }
func (c *Controller) ChatEnabled() bool {
	return c.chatOn.Load() && c.chatMgr != nil
}

func (c *Controller) micReady() bool {
	return c.mics != nil && c.mics.Session() != nil
}

// ListenOnce runs a single capture cycle in the background.
func (c *Controller) ListenOnce() {
	if !c.micReady() {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "No microphone available", IsError: true})
		return
	}
	go c.runCycle(context.Background())
}

// ToggleContinuous starts or stops the continuous listening loop. A stop
// is cooperative: the in-flight cycle finishes first. Each start gets its
// own stop channel, so a stopped loop can never resume after a restart;
// a restarted loop waits for its predecessor to drain before its first
// cycle.
func (c *Controller) ToggleContinuous() {
	if c.continuous.Load() {
		c.continuous.Store(false)
		close(c.loopStop)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Stopping after current phrase"})
		return
	}
	if !c.micReady() {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "No microphone available", IsError: true})
		return
	}
	c.continuous.Store(true)
	prev := c.loopDone
	c.loopStop = make(chan struct{})
	c.loopDone = make(chan struct{})
	go c.continuousLoop(c.loopStop, c.loopDone, prev)
}

func (c *Controller) continuousLoop(stop, done chan struct{}, prev <-chan struct{}) {
	defer close(done)
	if prev != nil {
		select {
		case <-prev:
		case <-stop:
			return
		}
	}
	for {
		select {
		case <-stop:
			return
		default:
		}
		outcome := c.runCycle(context.Background())
		if outcome.Kind == OutcomeDeviceError {
			c.continuous.Store(false)
			c.events.Publish(bridge.Status{Message: "Microphone error - continuous listening stopped", Severity: bridge.StatusError})
			return
		}
		select {
		case <-stop:
			return
		case <-time.After(cyclePause):
		}
	}
}

// runCycle performs one listen-transcribe-respond pass. Exactly one
// cycle may run at a time; concurrent callers are turned away busy.
func (c *Controller) runCycle(ctx context.Context) ListenOutcome {
	if !c.mics.TryLock() {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "Microphone busy", IsError: true})
		return ListenOutcome{Kind: OutcomeBusy}
	}
	defer func() {
		c.setState(StateIdle)
		c.events.Publish(bridge.Level{Value: 0})
		c.events.Publish(bridge.Status{Message: "Ready", Severity: bridge.StatusReady})
		c.mics.Unlock()
	}()

	sess := c.mics.Session()
	if sess == nil {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "No microphone available", IsError: true})
		return ListenOutcome{Kind: OutcomeDeviceError, Err: audio.ErrNoDevices}
	}

	c.setState(StateListening)
	c.events.Publish(bridge.Status{Message: "Listening...", Severity: bridge.StatusListening})

	if err := sess.Recalibrate(recalibrateDur); err != nil {
		log.Errorf("calibration failed: %v", err)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Microphone error: " + err.Error(), IsError: true})
		return ListenOutcome{Kind: OutcomeDeviceError, Err: err}
	}

	samples, err := sess.Listen(c.listen, func(level int) {
		c.events.Publish(bridge.Level{Value: level})
	})
	if err != nil {
		if errors.Is(err, audio.ErrTimeout) {
			c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "Timeout - no speech detected", IsError: true})
			return ListenOutcome{Kind: OutcomeTimeout, Err: err}
		}
		log.Errorf("capture failed: %v", err)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Microphone error: " + err.Error(), IsError: true})
		return ListenOutcome{Kind: OutcomeDeviceError, Err: err}
	}

	c.setState(StateRecognizing)
	c.events.Publish(bridge.Status{Message: "Recognizing...", Severity: bridge.StatusListening})

	flacData, err := encoder.EncodeAll(samples, sess.EffectiveRate())
	if err != nil {
		log.Errorf("flac encode failed: %v", err)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "Encoding error: " + err.Error(), IsError: true})
		return ListenOutcome{Kind: OutcomeServiceError, Err: err}
	}

	if c.trans == nil {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "Transcription service not configured", IsError: true})
		return ListenOutcome{Kind: OutcomeServiceError}
	}

	text, err := c.trans.Transcribe(ctx, flacData, c.Language())
	if err != nil {
		if errors.Is(err, transcriber.ErrNoSpeech) {
			c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "Could not understand audio", IsError: true})
			if c.debugMode.Load() {
				c.writeDebugArtifact(flacData)
			}
			return ListenOutcome{Kind: OutcomeNotUnderstood, Err: err}
		}
		log.Errorf("transcription failed: %v", err)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: "API error: " + err.Error(), IsError: true})
		return ListenOutcome{Kind: OutcomeServiceError, Err: err}
	}

	log.Transcript(text)
	c.events.Publish(bridge.Log{Channel: bridge.ChannelTranscript, Text: text})

	if c.ChatEnabled() {
		c.setState(StateThinking)
		c.events.Publish(bridge.Status{Message: "Thinking...", Severity: bridge.StatusListening})
		reply, err := c.chatMgr.Respond(ctx, text)
		if err != nil {
			log.Errorf("chat failed: %v", err)
			c.events.Publish(bridge.Log{Channel: bridge.ChannelChat, Text: "Chat error: " + err.Error(), IsError: true})
		} else {
			log.Reply(reply)
			c.events.Publish(bridge.Log{Channel: bridge.ChannelChat, Text: reply})
		}
	}

	return ListenOutcome{Kind: OutcomeRecognized, Text: text}
}

// writeDebugArtifact saves the rejected audio for offline inspection.
// Failures are reported but never affect the cycle.
func (c *Controller) writeDebugArtifact(flacData []byte) {
	name := fmt.Sprintf("unrecognized_audio_%s.flac", time.Now().Format("20060102_150405"))
	path := filepath.Join(c.artifactDir, name)
	if err := os.WriteFile(path, flacData, 0644); err != nil {
		log.Errorf("saving debug audio: %v", err)
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Could not save debug audio: " + err.Error(), IsError: true})
		return
	}
	log.Infof("saved debug audio: %s", path)
	c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Saved debug audio: " + name})
}

// CycleDevice switches to the next ranked microphone in the background.
func (c *Controller) CycleDevice() {
	go func() {
		if !c.mics.TryLock() {
			c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Microphone busy", IsError: true})
			return
		}
		defer c.mics.Unlock()

		sess, err := c.mics.Cycle()
		if err != nil {
			log.Errorf("device cycle failed: %v", err)
			c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Device switch failed: " + err.Error(), IsError: true})
			return
		}
		log.Infof("switched device: %s", sess.DeviceName())
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Now using: " + sess.DeviceName()})
	}()
}

// ToggleLanguage flips between Indonesian and English.
func (c *Controller) ToggleLanguage() string {
	lang := "id-ID"
	if c.Language() == "id-ID" {
		lang = "en-US"
	}
	c.language.Store(lang)
	c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Language: " + lang})
	return lang
}

func (c *Controller) ToggleDebug() bool {
	on := !c.debugMode.Load()
	c.debugMode.Store(on)
	return on
}

func (c *Controller) ToggleChat() bool {
	if c.chatMgr == nil {
		c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Chat backend not configured", IsError: true})
		return false
	}
	on := !c.chatOn.Load()
	c.chatOn.Store(on)
	return on
}

// ClearHistory empties the conversation, keeping the system prompt.
func (c *Controller) ClearHistory() {
	if c.chatMgr != nil {
		c.chatMgr.Clear()
	}
	c.events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Conversation cleared"})
}
