package session

import (
	"strings"
	"testing"
	"time"
)

func TestConversation_AppendAndOrder(t *testing.T) {
	t.Parallel()

	c := New("persona")
	c.Append(RoleUser, "one")
	c.Append(RoleAssistant, "two")
	c.Append(RoleUser, "three")

	turns := c.Turns()
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	for i, want := range []string{"one", "two", "three"} {
		if turns[i].Text != want {
			t.Errorf("turns[%d].Text = %q, want %q", i, turns[i].Text, want)
		}
	}
}

func TestConversation_CapEvictsOldest(t *testing.T) {
	t.Parallel()

	c := New("persona", WithMaxTurns(4))
	for _, text := range []string{"a", "b", "c", "d", "e", "f"} {
		c.Append(RoleUser, text)
	}

	turns := c.Turns()
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4 (cap)", len(turns))
	}
	if turns[0].Text != "c" || turns[3].Text != "f" {
		t.Errorf("retained %q..%q, want c..f", turns[0].Text, turns[3].Text)
	}
}

func TestConversation_SystemTurnSurvivesEviction(t *testing.T) {
	t.Parallel()

	c := New("you are a voice assistant", WithMaxTurns(2))
	for i := 0; i < 50; i++ {
		c.Append(RoleUser, "filler")
		c.Append(RoleAssistant, "reply")
	}

	msgs := c.Messages()
	if msgs[0].Role != RoleSystem {
		t.Fatalf("first message role = %q, want system", msgs[0].Role)
	}
	if msgs[0].Content != "you are a voice assistant" {
		t.Errorf("system content = %q", msgs[0].Content)
	}
	// system + 2 retained turns
	if len(msgs) != 3 {
		t.Errorf("got %d messages, want 3", len(msgs))
	}
}

func TestConversation_NoSystemPrompt(t *testing.T) {
	t.Parallel()

	c := New("")
	c.Append(RoleUser, "hi")

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != RoleUser {
		t.Errorf("role = %q, want user", msgs[0].Role)
	}
}

func TestConversation_Tail(t *testing.T) {
	t.Parallel()

	c := New("persona")
	c.Append(RoleUser, "what's the weather like?")
	c.Append(RoleAssistant, "It is sunny.")
	c.Append(RoleUser, "use celsius")

	tail := c.Tail(2)
	lines := strings.Split(tail, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), tail)
	}
	if lines[0] != "assistant: It is sunny." {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if lines[1] != "user: use celsius" {
		t.Errorf("lines[1] = %q", lines[1])
	}

	if got := c.Tail(100); !strings.HasPrefix(got, "user: what's") {
		t.Errorf("Tail(100) should start at the first turn, got %q", got)
	}
	if got := New("p").Tail(4); got != "" {
		t.Errorf("Tail on empty conversation = %q, want empty", got)
	}
}

func TestConversation_Reset(t *testing.T) {
	t.Parallel()

	c := New("persona")
	c.Append(RoleUser, "hi")
	c.Reset()

	if c.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", c.Len())
	}
	if msgs := c.Messages(); len(msgs) != 1 || msgs[0].Role != RoleSystem {
		t.Errorf("system turn should survive Reset, got %+v", msgs)
	}
}

func TestConversation_ClockInjection(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New("p", WithClock(func() time.Time { return fixed }))
	c.Append(RoleUser, "hi")

	if got := c.Turns()[0].At; !got.Equal(fixed) {
		t.Errorf("At = %v, want %v", got, fixed)
	}
}
