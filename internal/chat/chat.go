// Package chat is the conversational fallback: every utterance the router
// cannot map to a workflow is answered here as general conversation.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
	"github.com/hemanthsagarb9/LemmeTalk/internal/speech"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

// SystemPrompt is the speech-optimized assistant persona. Replies go straight
// to a speech synthesizer, so the model is told to avoid lists, formatting
// symbols, and anything else that reads badly aloud.
const SystemPrompt = "You are a friendly, conversational voice assistant optimized for text-to-speech. " +
	"CRITICAL: Write exactly as you would speak to someone in person. " +
	"NEVER use numbered lists, bullet points, or formatting symbols. " +
	"Instead, use natural speech patterns like 'first', 'second', 'third', 'next', 'finally', 'also', 'additionally'. " +
	"Convert all technical content into conversational speech. " +
	"For example, instead of '1. Insert: O(log n)', say 'First, let's talk about insertion. This typically takes logarithmic time on average.' " +
	"Avoid reading out any symbols, numbers, or formatting - just speak the content naturally and conversationally."

// Option is a functional option for New.
type Option func(*Chat)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chat) {
		if logger != nil {
			c.log = logger
		}
	}
}

// Chat answers general conversation using the full bounded transcript.
// Unlike workflows it offers the model no tools; it is a single completion
// per turn.
type Chat struct {
	provider llm.Provider
	conv     *session.Conversation
	log      *slog.Logger
}

// New creates a Chat over the given conversation. The conversation is
// expected to carry SystemPrompt as its persona; Chat reads the transcript
// but never appends to it.
func New(provider llm.Provider, conv *session.Conversation, opts ...Option) *Chat {
	c := &Chat{
		provider: provider,
		conv:     conv,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Reply produces a spoken-ready answer to utterance. The transcript already
// contains the user's turn (the turn loop appends it before routing), so the
// request is the rendered transcript as-is. The reply is normalized for
// speech before being returned.
func (c *Chat) Reply(ctx context.Context, utterance string) (string, error) {
	msgs := c.conv.Messages()
	if len(msgs) == 0 || !endsWithUser(msgs, utterance) {
		msgs = append(msgs, llm.Message{Role: session.RoleUser, Content: utterance})
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("chat: empty completion")
	}
	return speech.Normalize(resp.Content), nil
}

// endsWithUser reports whether the last message is the user's utterance,
// guarding against the turn being appended twice.
func endsWithUser(msgs []llm.Message, utterance string) bool {
	last := msgs[len(msgs)-1]
	return last.Role == session.RoleUser && last.Content == utterance
}
