package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hemanthsagarb9/LemmeTalk/internal/chat"
	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	llmmock "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/mock"
)

func TestReplySendsTranscript(t *testing.T) {
	t.Parallel()

	conv := session.New(chat.SystemPrompt)
	conv.Append(session.RoleUser, "hi there")
	conv.Append(session.RoleAssistant, "Hello! How can I help?")
	conv.Append(session.RoleUser, "tell me a joke")

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "Why did the gopher cross the road?"}},
	}
	c := chat.New(provider, conv)

	out, err := c.Reply(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if out != "Why did the gopher cross the road?" {
		t.Errorf("out = %q", out)
	}

	msgs := provider.CompleteCalls[0].Req.Messages
	if len(msgs) != 4 {
		t.Fatalf("sent %d messages, want 4 (system + 3 turns)", len(msgs))
	}
	if msgs[0].Role != session.RoleSystem || !strings.Contains(msgs[0].Content, "voice assistant") {
		t.Errorf("msgs[0] = %+v, want the persona system turn", msgs[0])
	}
	last := msgs[len(msgs)-1]
	if last.Role != session.RoleUser || last.Content != "tell me a joke" {
		t.Errorf("last message = %+v, want the utterance, not a duplicate", last)
	}
}

func TestReplyAppendsUtteranceWhenMissing(t *testing.T) {
	t.Parallel()

	conv := session.New(chat.SystemPrompt)
	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "Hello!"}},
	}
	c := chat.New(provider, conv)

	if _, err := c.Reply(context.Background(), "hello"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	msgs := provider.CompleteCalls[0].Req.Messages
	last := msgs[len(msgs)-1]
	if last.Role != session.RoleUser || last.Content != "hello" {
		t.Errorf("last message = %+v, want injected user turn", last)
	}
}

func TestReplyNormalizesForSpeech(t *testing.T) {
	t.Parallel()

	conv := session.New(chat.SystemPrompt)
	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{
			{Content: "1. Insert: **O(log n)**\n2. Delete: *fast*"},
		},
	}
	c := chat.New(provider, conv)

	out, err := c.Reply(context.Background(), "explain b-trees")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if strings.Contains(out, "**") || strings.Contains(out, "1.") || strings.Contains(out, "O(") {
		t.Errorf("out = %q, want markdown and big-O notation stripped", out)
	}
	if !strings.Contains(out, "big O of log n") {
		t.Errorf("out = %q, want spoken big-O form", out)
	}
}

func TestReplyErrors(t *testing.T) {
	t.Parallel()

	conv := session.New(chat.SystemPrompt)

	down := chat.New(&llmmock.Provider{CompleteErr: errors.New("backend down")}, conv)
	if _, err := down.Reply(context.Background(), "hi"); err == nil {
		t.Error("expected provider error to propagate")
	}

	empty := chat.New(&llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "   "}},
	}, conv)
	if _, err := empty.Reply(context.Background(), "hi"); err == nil {
		t.Error("expected error for a blank completion")
	}
}
