package bridge

import (
	"fmt"
	"sync"
	"testing"
)

func TestDrainFIFO(t *testing.T) {
	b := New()
	b.Publish(Status{Message: "Listening...", Severity: StatusListening})
	b.Publish(Level{Value: 7})
	b.Publish(Log{Channel: ChannelTranscript, Text: "hello"})

	got := b.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain returned %d events, want 3", len(got))
	}
	if _, ok := got[0].(Status); !ok {
		t.Errorf("event 0 = %T, want Status", got[0])
	}
	if lv, ok := got[1].(Level); !ok || lv.Value != 7 {
		t.Errorf("event 1 = %#v, want Level{7}", got[1])
	}
	if lg, ok := got[2].(Log); !ok || lg.Text != "hello" {
		t.Errorf("event 2 = %#v, want Log{hello}", got[2])
	}
}

func TestDrainEmptiesQueue(t *testing.T) {
	b := New()
	b.Publish(Level{Value: 1})
	if got := b.Drain(); len(got) != 1 {
		t.Fatalf("first drain returned %d events, want 1", len(got))
	}
	if got := b.Drain(); got != nil {
		t.Errorf("second drain returned %d events, want none", len(got))
	}
}

func TestPublishOrderPerProducer(t *testing.T) {
	b := New()
	const n = 100
	for i := 0; i < n; i++ {
		b.Publish(Log{Channel: ChannelTranscript, Text: fmt.Sprintf("line %d", i)})
	}
	got := b.Drain()
	if len(got) != n {
		t.Fatalf("got %d events, want %d", len(got), n)
	}
	for i, e := range got {
		lg := e.(Log)
		if want := fmt.Sprintf("line %d", i); lg.Text != want {
			t.Fatalf("event %d = %q, want %q", i, lg.Text, want)
		}
	}
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	const workers, per = 8, 50
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				b.Publish(Level{Value: i % 21})
			}
		}()
	}
	wg.Wait()
	if got := len(b.Drain()); got != workers*per {
		t.Errorf("got %d events, want %d", got, workers*per)
	}
}

func TestCompactDropsLevelsFirst(t *testing.T) {
	b := New()
	for i := 0; i < maxPending-1; i++ {
		b.Publish(Level{Value: i % 21})
	}
	b.Publish(Log{Channel: ChannelInfo, Text: "keep me"})
	// Next publish exceeds the cap and triggers compaction.
	b.Publish(Status{Message: "Ready", Severity: StatusReady})

	got := b.Drain()
	var logs, statuses, levels int
	for _, e := range got {
		switch e.(type) {
		case Log:
			logs++
		case Status:
			statuses++
		case Level:
			levels++
		}
	}
	if levels != 0 {
		t.Errorf("compaction kept %d Level events, want 0", levels)
	}
	if logs != 1 || statuses != 1 {
		t.Errorf("compaction dropped non-level events: %d logs, %d statuses", logs, statuses)
	}
}
