package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	wfmock "github.com/hemanthsagarb9/LemmeTalk/internal/workflow/mock"
)

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	r := workflow.NewRegistry()
	h := wfmock.New("shopping")
	h.RunResult = workflow.Result{Response: "Added milk to your shopping list.", Succeeded: true}
	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	exec := workflow.NewExecutor(r, workflow.Deps{UserID: "default"})
	res := exec.Execute(context.Background(), "shopping", "add milk")

	if !res.Succeeded {
		t.Error("Succeeded = false, want true")
	}
	if res.Workflow != "shopping" {
		t.Errorf("Workflow = %q, want shopping", res.Workflow)
	}
	if res.Response != "Added milk to your shopping list." {
		t.Errorf("Response = %q", res.Response)
	}
	if h.CallCount() != 1 {
		t.Errorf("handler called %d times, want 1", h.CallCount())
	}
}

func TestExecuteHandlerError(t *testing.T) {
	t.Parallel()

	r := workflow.NewRegistry()
	h := wfmock.New("reminders")
	h.RunErr = errors.New("storage unavailable")
	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	exec := workflow.NewExecutor(r, workflow.Deps{})
	res := exec.Execute(context.Background(), "reminders", "remind me")

	if res.Succeeded {
		t.Error("Succeeded = true for a failed handler")
	}
	if !strings.HasPrefix(res.Response, "Sorry, I encountered an error") {
		t.Errorf("Response = %q, want apologetic prefix", res.Response)
	}
	if !strings.Contains(res.Response, "storage unavailable") {
		t.Errorf("Response = %q, want cause included", res.Response)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	t.Parallel()

	r := workflow.NewRegistry()
	h := wfmock.New("shopping")
	h.RunPanic = "nil map write"
	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	exec := workflow.NewExecutor(r, workflow.Deps{})
	res := exec.Execute(context.Background(), "shopping", "add milk")

	if res.Succeeded {
		t.Error("Succeeded = true after a panic")
	}
	if !strings.HasPrefix(res.Response, "Sorry, I encountered an error") {
		t.Errorf("Response = %q, want apologetic prefix", res.Response)
	}
}

func TestExecuteUnknownWorkflow(t *testing.T) {
	t.Parallel()

	exec := workflow.NewExecutor(workflow.NewRegistry(), workflow.Deps{})
	res := exec.Execute(context.Background(), "ghost", "anything")

	if res.Succeeded {
		t.Error("Succeeded = true for an unregistered workflow")
	}
	if res.Workflow != "ghost" {
		t.Errorf("Workflow = %q, want ghost", res.Workflow)
	}
}

func TestExecuteTimeout(t *testing.T) {
	t.Parallel()

	r := workflow.NewRegistry()
	h := wfmock.New("slow")
	h.RunFunc = func(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error) {
		<-ctx.Done()
		return workflow.Result{}, ctx.Err()
	}
	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	exec := workflow.NewExecutor(r, workflow.Deps{}, workflow.WithExecuteTimeout(20*time.Millisecond))
	res := exec.Execute(context.Background(), "slow", "take forever")

	if res.Succeeded {
		t.Error("Succeeded = true for a timed-out handler")
	}
	if !strings.Contains(res.Response, "took too long") {
		t.Errorf("Response = %q, want timeout phrasing", res.Response)
	}
}

func TestDepsClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	d := workflow.Deps{Clock: func() time.Time { return fixed }}
	if !d.Now().Equal(fixed) {
		t.Errorf("Now() = %v, want %v", d.Now(), fixed)
	}

	var zero workflow.Deps
	if zero.Now().IsZero() {
		t.Error("zero Deps.Now() should fall back to wall clock")
	}
}
