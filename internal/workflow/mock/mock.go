// Package mock provides a configurable workflow Handler for tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
)

// Handler is a mock workflow.Handler. Configure the exported fields, then
// inspect the recorded calls.
type Handler struct {
	mu sync.Mutex

	// Desc is returned by Describe.
	Desc workflow.Descriptor

	// RunResult and RunErr are returned by Run unless RunFunc is set.
	RunResult workflow.Result
	RunErr    error

	// RunFunc, when non-nil, overrides RunResult/RunErr.
	RunFunc func(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error)

	// RunPanic, when non-empty, makes Run panic with this value.
	RunPanic string

	// RunCalls records every Run input.
	RunCalls []string
}

var _ workflow.Handler = (*Handler)(nil)

// New returns a mock handler with the given name whose triggers default to
// the name itself.
func New(name string) *Handler {
	return &Handler{
		Desc: workflow.Descriptor{
			Name:        name,
			Description: "mock workflow " + name,
			Triggers:    []string{name},
		},
	}
}

// Describe implements workflow.Handler.
func (h *Handler) Describe() workflow.Descriptor { return h.Desc }

// CanHandle reports whether text contains any trigger, case-insensitively.
func (h *Handler) CanHandle(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range h.Desc.Triggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// Run implements workflow.Handler.
func (h *Handler) Run(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error) {
	h.mu.Lock()
	h.RunCalls = append(h.RunCalls, input)
	h.mu.Unlock()

	if h.RunPanic != "" {
		panic(h.RunPanic)
	}
	if h.RunFunc != nil {
		return h.RunFunc(ctx, input, deps)
	}
	if h.RunErr != nil {
		return workflow.Result{}, h.RunErr
	}
	res := h.RunResult
	if res.Workflow == "" {
		res.Workflow = h.Desc.Name
	}
	return res, h.RunErr
}

// CallCount returns the number of Run invocations.
func (h *Handler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.RunCalls)
}
