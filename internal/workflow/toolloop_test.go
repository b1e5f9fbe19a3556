package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	llmmock "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/mock"
)

func TestRunToolLoopPlainReply(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "Your list is empty."}},
	}

	out, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "what's on my list?"}},
		workflow.ToolSet{})
	if err != nil {
		t.Fatalf("RunToolLoop: %v", err)
	}
	if out != "Your list is empty." {
		t.Errorf("out = %q", out)
	}
}

func TestRunToolLoopDispatchesTools(t *testing.T) {
	t.Parallel()

	var gotArgs string
	tools := workflow.ToolSet{
		Definitions: []llm.ToolDefinition{{Name: "add_item", Description: "add an item"}},
		Funcs: map[string]workflow.ToolFunc{
			"add_item": func(ctx context.Context, args string) (string, error) {
				gotArgs = args
				return "added", nil
			},
		},
	}

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{
			{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "add_item", Arguments: `{"item":"milk"}`}}},
			{Content: "Added milk."},
		},
	}

	out, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "add milk"}}, tools)
	if err != nil {
		t.Fatalf("RunToolLoop: %v", err)
	}
	if out != "Added milk." {
		t.Errorf("out = %q", out)
	}
	if gotArgs != `{"item":"milk"}` {
		t.Errorf("tool args = %q", gotArgs)
	}

	// The second request must carry the assistant tool-call turn and the
	// tool result turn.
	if len(provider.CompleteCalls) != 2 {
		t.Fatalf("Complete called %d times, want 2", len(provider.CompleteCalls))
	}
	msgs := provider.CompleteCalls[1].Req.Messages
	if len(msgs) != 3 {
		t.Fatalf("second request has %d messages, want 3", len(msgs))
	}
	if msgs[1].Role != "assistant" || len(msgs[1].ToolCalls) != 1 {
		t.Errorf("msgs[1] = %+v, want assistant turn with tool call", msgs[1])
	}
	if msgs[2].Role != "tool" || msgs[2].Content != "added" || msgs[2].ToolCallID != "c1" {
		t.Errorf("msgs[2] = %+v, want tool result for c1", msgs[2])
	}
}

func TestRunToolLoopReportsToolErrorToModel(t *testing.T) {
	t.Parallel()

	tools := workflow.ToolSet{
		Definitions: []llm.ToolDefinition{{Name: "boom"}},
		Funcs: map[string]workflow.ToolFunc{
			"boom": func(ctx context.Context, args string) (string, error) {
				return "", errors.New("disk full")
			},
		},
	}

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{
			{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "boom"}}},
			{Content: "Sorry, that failed."},
		},
	}

	out, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "go"}}, tools)
	if err != nil {
		t.Fatalf("RunToolLoop: %v", err)
	}
	if out != "Sorry, that failed." {
		t.Errorf("out = %q", out)
	}
	toolMsg := provider.CompleteCalls[1].Req.Messages[2]
	if !strings.Contains(toolMsg.Content, "disk full") {
		t.Errorf("tool result = %q, want the error surfaced to the model", toolMsg.Content)
	}
}

func TestRunToolLoopUnknownTool(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{
			{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "ghost"}}},
			{Content: "ok"},
		},
	}

	_, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "go"}}, workflow.ToolSet{})
	if err != nil {
		t.Fatalf("RunToolLoop: %v", err)
	}
	toolMsg := provider.CompleteCalls[1].Req.Messages[2]
	if !strings.Contains(toolMsg.Content, "unknown tool") {
		t.Errorf("tool result = %q, want unknown-tool error", toolMsg.Content)
	}
}

func TestRunToolLoopBoundedDepth(t *testing.T) {
	t.Parallel()

	// A model that never stops calling tools must be cut off.
	provider := &llmmock.Provider{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{
				ToolCalls: []llm.ToolCall{{ID: "x", Name: "loop"}},
			}, nil
		},
	}
	tools := workflow.ToolSet{
		Funcs: map[string]workflow.ToolFunc{
			"loop": func(ctx context.Context, args string) (string, error) { return "again", nil },
		},
	}

	_, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "go"}}, tools)
	if err == nil {
		t.Fatal("expected round-limit error")
	}
	if !strings.Contains(err.Error(), "rounds") {
		t.Errorf("err = %v, want round-limit message", err)
	}
}

func TestRunToolLoopProviderError(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{CompleteErr: errors.New("backend down")}
	_, err := workflow.RunToolLoop(context.Background(), provider, "sys",
		[]llm.Message{{Role: "user", Content: "go"}}, workflow.ToolSet{})
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
}
