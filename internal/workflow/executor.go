package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultExecuteTimeout = 60 * time.Second

// ExecutorOption is a functional option for NewExecutor.
type ExecutorOption func(*Executor)

// WithExecuteTimeout bounds each workflow run. Default: 60s.
func WithExecuteTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithExecutorLogger sets the logger. Default: slog.Default().
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.log = logger
		}
	}
}

// Executor runs workflow handlers with timeout and panic isolation.
//
// Execute never returns an error: every failure mode — unknown name, handler
// error, panic, timeout — is converted into a failed Result carrying an
// apologetic speakable response, so the turn loop always has something to
// say.
type Executor struct {
	registry *Registry
	deps     Deps
	timeout  time.Duration
	log      *slog.Logger
}

// NewExecutor creates an Executor over the given registry. deps is passed to
// every handler invocation.
func NewExecutor(registry *Registry, deps Deps, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		deps:     deps,
		timeout:  defaultExecuteTimeout,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute looks up name and runs its handler for the utterance.
func (e *Executor) Execute(ctx context.Context, name, utterance string) Result {
	h, err := e.registry.Get(name)
	if err != nil {
		// The router only emits registered names, so this indicates a wiring
		// bug. Degrade to a failed result rather than crash mid-turn.
		e.log.Error("executor received unregistered workflow", "name", name)
		return failed(name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	result, err := e.run(ctx, h, utterance)
	elapsed := time.Since(start)

	if err != nil {
		e.log.Warn("workflow failed", "workflow", name, "duration", elapsed, "error", err)
		return failed(name, err)
	}

	e.log.Debug("workflow completed", "workflow", name, "duration", elapsed, "succeeded", result.Succeeded)
	result.Workflow = name
	return result
}

// run invokes the handler, converting a panic into an error so a buggy
// workflow cannot take down the turn loop.
func (e *Executor) run(ctx context.Context, h Handler, utterance string) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("workflow: handler panic: %v", rec)
		}
	}()
	return h.Run(ctx, utterance, e.deps)
}

// failed builds the apologetic Result for a workflow that could not complete.
func failed(name string, err error) Result {
	cause := "something went wrong"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		cause = "the task took too long"
	case err != nil:
		cause = err.Error()
	}
	return Result{
		Response:  fmt.Sprintf("Sorry, I encountered an error: %s", cause),
		Succeeded: false,
		Workflow:  name,
	}
}
