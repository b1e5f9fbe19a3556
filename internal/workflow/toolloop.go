package workflow

import (
	"context"
	"fmt"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

// defaultMaxToolRounds bounds the think-call-observe loop. Each round is one
// completion; a model stuck re-calling tools is cut off rather than looped
// forever.
const defaultMaxToolRounds = 5

// ToolFunc executes one tool call. args is the raw JSON arguments string from
// the model; the returned string is fed back as the tool-role message.
type ToolFunc func(ctx context.Context, args string) (string, error)

// ToolSet pairs the tool definitions offered to the model with the local
// functions that implement them.
type ToolSet struct {
	// Definitions are advertised to the model in every request.
	Definitions []llm.ToolDefinition

	// Funcs maps tool name to implementation. Every definition name must
	// have an entry.
	Funcs map[string]ToolFunc
}

// RunToolLoop drives an LLM tool-calling conversation to completion.
//
// It sends messages with the tool set attached, executes every tool call the
// model requests, appends the tool results, and repeats until the model
// replies with plain text or the round limit is hit. Tool execution errors
// are reported back to the model as the tool result so it can recover or
// apologize; they do not abort the loop.
func RunToolLoop(ctx context.Context, provider llm.Provider, systemPrompt string, messages []llm.Message, tools ToolSet) (string, error) {
	msgs := make([]llm.Message, len(messages))
	copy(msgs, messages)

	for round := 0; round < defaultMaxToolRounds; round++ {
		resp, err := provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages:     msgs,
			Tools:        tools.Definitions,
		})
		if err != nil {
			return "", fmt.Errorf("workflow: tool loop round %d: %w", round, err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		msgs = append(msgs, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			output := dispatch(ctx, tools, call)
			msgs = append(msgs, llm.Message{
				Role:       "tool",
				Content:    output,
				Name:       call.Name,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("workflow: tool loop exceeded %d rounds without a final answer", defaultMaxToolRounds)
}

// dispatch runs one tool call, mapping unknown tools and execution failures
// to error strings the model can read.
func dispatch(ctx context.Context, tools ToolSet, call llm.ToolCall) string {
	fn, ok := tools.Funcs[call.Name]
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}
	out, err := fn(ctx, call.Arguments)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
