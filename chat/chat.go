// Package chat keeps a bounded conversation history and runs each user
// turn through a language model.
package chat

import (
	"context"
	"fmt"
	"sync"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

// Options are per-request sampling knobs. Nil fields are omitted from
// the request so the model's defaults apply.
type Options struct {
	Temperature *float64
	MaxTokens   *int
}

type Completer interface {
	Complete(ctx context.Context, model string, turns []Turn, opts Options) (string, error)
}

// DefaultHistoryLimit caps how many turns are kept. The system turn, if
// seeded, does not count against it.
const DefaultHistoryLimit = 10

// Manager owns the conversation history. All methods are safe for
// concurrent use.
type Manager struct {
	completer Completer
	model     string
	opts      Options

	mu     sync.Mutex
	turns  []Turn
	limit  int
	seeded bool // turns[0] is a pinned system turn
}

func NewManager(completer Completer, model string, opts Options) *Manager {
	return &Manager{
		completer: completer,
		model:     model,
		opts:      opts,
		limit:     DefaultHistoryLimit,
	}
}

// Seed pins a system prompt at the head of the history. An empty prompt
// is a no-op.
func (m *Manager) Seed(systemPrompt string) {
	if systemPrompt == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeded {
		m.turns[0].Content = systemPrompt
		return
	}
	m.turns = append([]Turn{{Role: RoleSystem, Content: systemPrompt}}, m.turns...)
	m.seeded = true
}

// Clear drops the history, keeping the pinned system turn.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeded {
		m.turns = m.turns[:1]
		return
	}
	m.turns = nil
}

// Turns returns a copy of the current history.
func (m *Manager) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Respond appends userText as a user turn, runs the model over the
// history, and appends the reply. On failure the user turn stays in the
// history so a retry carries the full context.
func (m *Manager) Respond(ctx context.Context, userText string) (string, error) {
	m.mu.Lock()
	m.turns = append(m.turns, Turn{Role: RoleUser, Content: userText})
	m.evict()
	snapshot := make([]Turn, len(m.turns))
	copy(snapshot, m.turns)
	m.mu.Unlock()

	reply, err := m.completer.Complete(ctx, m.model, snapshot, m.opts)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	m.mu.Lock()
	m.turns = append(m.turns, Turn{Role: RoleAssistant, Content: reply})
	m.evict()
	m.mu.Unlock()
	return reply, nil
}

// evict drops the oldest non-system turns once the history exceeds the
// limit. Caller holds mu.
func (m *Manager) evict() {
	head := 0
	if m.seeded {
		head = 1
	}
	for len(m.turns)-head > m.limit {
		copy(m.turns[head:], m.turns[head+1:])
		m.turns = m.turns[:len(m.turns)-1]
	}
}
