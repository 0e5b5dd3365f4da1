package chat

import "context"

// FakeCompleter records each request and replies from a script.
type FakeCompleter struct {
	Reply string
	Err   error

	LastModel string
	LastTurns []Turn
	LastOpts  Options
	Calls     int
}

func (f *FakeCompleter) Complete(_ context.Context, model string, turns []Turn, opts Options) (string, error) {
	f.Calls++
	f.LastModel = model
	f.LastTurns = turns
	f.LastOpts = opts
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}
