// Package bridge carries events from background workers to the single
// UI consumer. Publishing is safe from any goroutine; draining belongs
// to the UI loop alone.
package bridge

import "sync"

// Channel identifies which UI pane a Log event targets.
type Channel int

const (
	ChannelTranscript Channel = iota
	ChannelChat
	ChannelInfo
)

// Severity classifies a status message for display.
type Severity int

const (
	StatusReady Severity = iota
	StatusListening
	StatusError
)

// Event is one of Log, Status, or Level.
type Event interface{ event() }

// Log is a line for one of the UI log panes.
type Log struct {
	Channel Channel
	Text    string
	IsError bool
}

// Status replaces the status line.
type Status struct {
	Message  string
	Severity Severity
}

// Level is an audio meter update, 0..20. Cosmetic; safe to drop.
type Level struct {
	Value int
}

func (Log) event()    {}
func (Status) event() {}
func (Level) event()  {}

// maxPending bounds memory if the consumer stalls. Event volume is
// human-speech-rate, so this is never reached in normal operation.
const maxPending = 1024

type Bridge struct {
	mu      sync.Mutex
	pending []Event
}

func New() *Bridge {
	return &Bridge{}
}

// Publish appends an event. It never blocks.
func (b *Bridge) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) >= maxPending {
		b.compact()
	}
	b.pending = append(b.pending, e)
}

// compact sheds Level events first, then the oldest half of whatever
// remains. Called with the lock held.
func (b *Bridge) compact() {
	kept := b.pending[:0]
	for _, e := range b.pending {
		if _, ok := e.(Level); ok {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) >= maxPending {
		kept = kept[len(kept)-maxPending/2:]
	}
	b.pending = kept
}

// Drain returns all events published since the last drain, in publish
// order, and empties the queue. Only the UI loop may call it.
func (b *Bridge) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}
