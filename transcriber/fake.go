package transcriber

import (
	"context"
	"sync/atomic"
	"time"
)

// Fake is a scripted transcriber for tests.
type Fake struct {
	Text  string
	Err   error
	Delay time.Duration

	calls atomic.Int32
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Transcribe(ctx context.Context, _ []byte, _ string) (string, error) {
	f.calls.Add(1)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *Fake) Calls() int {
	return int(f.calls.Load())
}
