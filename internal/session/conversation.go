// Package session holds the conversation state shared by the router, the
// workflows, and the fallback conversationalist.
//
// A Conversation is an append-only, bounded transcript of turns. The system
// turn that defines the assistant persona is fixed at construction and is
// never evicted; older user/assistant turns are dropped once the configured
// cap is exceeded so the working set stays well inside the LLM context
// window without a tokenizer dependency.
//
// All methods are safe for concurrent use, though the turn loop mutates a
// Conversation from a single goroutine by design.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

// Roles for conversation turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// defaultMaxTurns caps the non-system turns kept in the transcript.
// 10 turns = 5 user/assistant exchanges, matching the token-overflow guard
// the assistant has always used.
const defaultMaxTurns = 10

// Turn is one role-tagged message in the transcript. Immutable once appended;
// insertion order is the only meaningful order.
type Turn struct {
	// Role is RoleSystem, RoleUser, or RoleAssistant.
	Role string

	// Text is the spoken or generated content.
	Text string

	// At is the time the turn was appended.
	At time.Time
}

// Conversation is an ordered, bounded sequence of turns.
type Conversation struct {
	mu       sync.Mutex
	system   string // persona system prompt; "" = no system turn
	maxTurns int
	turns    []Turn
	now      func() time.Time
}

// Option is a functional option for New.
type Option func(*Conversation)

// WithMaxTurns overrides the cap on non-system turns. Values below 1 keep the
// default.
func WithMaxTurns(n int) Option {
	return func(c *Conversation) {
		if n >= 1 {
			c.maxTurns = n
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) { c.now = now }
}

// New creates a Conversation whose first (and protected) turn is the given
// persona system prompt. An empty systemPrompt creates a conversation with no
// system turn.
func New(systemPrompt string, opts ...Option) *Conversation {
	c := &Conversation{
		system:   systemPrompt,
		maxTurns: defaultMaxTurns,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Append adds a turn with the given role and text, evicting the oldest
// non-system turns if the cap is exceeded. The system turn is never evicted.
func (c *Conversation) Append(role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{Role: role, Text: text, At: c.now()})
	if over := len(c.turns) - c.maxTurns; over > 0 {
		c.turns = append(c.turns[:0:0], c.turns[over:]...)
	}
}

// Len returns the number of non-system turns currently retained.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Turns returns a copy of the retained non-system turns in order.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// SystemPrompt returns the persona system prompt ("" if none).
func (c *Conversation) SystemPrompt() string {
	return c.system
}

// Messages renders the full transcript — system turn first, then retained
// turns — as a slice ready to pass to llm.CompletionRequest.Messages.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]llm.Message, 0, len(c.turns)+1)
	if c.system != "" {
		out = append(out, llm.Message{Role: RoleSystem, Content: c.system})
	}
	for _, t := range c.turns {
		out = append(out, llm.Message{Role: t.Role, Content: t.Text})
	}
	return out
}

// Tail renders the last k non-system turns as role-tagged lines, one per
// turn, e.g.:
//
//	user: what's the weather like?
//	assistant: It is twenty degrees and sunny.
//
// Used by the router to give the classifier follow-up context. Returns ""
// when the transcript is empty.
func (c *Conversation) Tail(k int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k <= 0 || len(c.turns) == 0 {
		return ""
	}
	start := len(c.turns) - k
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for i, t := range c.turns[start:] {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", t.Role, t.Text)
	}
	return b.String()
}

// Reset drops all non-system turns. The system prompt is retained.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = c.turns[:0]
}
