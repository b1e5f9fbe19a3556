// Package workflow is the routing and execution core of the assistant.
//
// A Handler is a task-specific capability (shopping list, reminders, ...)
// identified by a Descriptor. Handlers register with a Registry at startup;
// the Router classifies each transcribed utterance against the registered
// descriptors and the Executor runs the chosen handler with timeout and
// panic isolation so a misbehaving workflow degrades to an apologetic
// spoken reply instead of taking the assistant down.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
)

// Sentinel errors returned by the registry.
var (
	// ErrDuplicateWorkflow is returned by Register when a handler's name is
	// already taken. Workflow names are canonical routing keys and must be
	// unique.
	ErrDuplicateWorkflow = errors.New("workflow: duplicate workflow name")

	// ErrWorkflowNotFound is returned by Get for names never registered.
	ErrWorkflowNotFound = errors.New("workflow: workflow not found")
)

// Descriptor is a handler's self-description. Name is the canonical routing
// key; Description and Triggers feed the router's classification prompt and
// its deterministic keyword fallback.
type Descriptor struct {
	// Name uniquely identifies the workflow (e.g. "shopping"). Lowercase,
	// stable across releases.
	Name string

	// Description is a one-sentence summary of what the workflow does,
	// written for the classification prompt.
	Description string

	// Triggers are keywords and short phrases whose presence in an utterance
	// suggests this workflow ("shopping list", "remind", ...).
	Triggers []string
}

// Deps carries the per-call collaborators a handler may use.
type Deps struct {
	// UserID identifies the (single) user of this assistant instance.
	UserID string

	// Conversation is the shared bounded transcript. Handlers may read it for
	// context (e.g. a unit preference stated two turns ago) but must not
	// append to it; the turn loop owns the transcript.
	Conversation *session.Conversation

	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
}

// Now returns the current time from the configured clock.
func (d Deps) Now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// Result is the outcome of one workflow execution. A failed execution still
// yields a speakable Response; callers never need to inspect an error to
// produce output.
type Result struct {
	// Response is the text to speak back to the user.
	Response string

	// Succeeded reports whether the workflow completed normally.
	Succeeded bool

	// Workflow is the name of the handler that produced this result.
	Workflow string
}

// Handler is a task-specific workflow.
//
// Implementations must be safe for concurrent use; the executor may run
// them from any goroutine.
type Handler interface {
	// Describe returns the handler's static descriptor. Must be constant for
	// the handler's lifetime.
	Describe() Descriptor

	// CanHandle reports whether the utterance matches this handler's
	// triggers. Used by the router's deterministic fallback; the primary
	// routing path is LLM classification over descriptors.
	CanHandle(text string) bool

	// Run executes the workflow for the given utterance. Returning an error
	// or panicking is safe: the executor converts both into a failed Result
	// with an apologetic response.
	Run(ctx context.Context, input string, deps Deps) (Result, error)
}
