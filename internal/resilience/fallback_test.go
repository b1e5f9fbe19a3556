package resilience

import (
	"context"
	"errors"
	"testing"

	ttsmock "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts/mock"
)

func TestFallbackGroupPrimaryFirst(t *testing.T) {
	t.Parallel()

	var order []string
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("secondary", "secondary")

	err := fg.Execute(func(name string) error {
		order = append(order, name)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(order) != 1 || order[0] != "primary" {
		t.Errorf("order = %v, want primary only", order)
	}
}

func TestFallbackGroupFailover(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("secondary", "secondary")

	var used string
	err := fg.Execute(func(name string) error {
		if name == "primary" {
			return errBoom
		}
		used = name
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if used != "secondary" {
		t.Errorf("used = %q, want secondary", used)
	}
}

func TestFallbackGroupAllFail(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	err := fg.Execute(func(string) error { return errBoom })
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroupSkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fg.AddFallback("secondary", "secondary")

	// Trip the primary's breaker.
	fg.Execute(func(name string) error {
		if name == "primary" {
			return errBoom
		}
		return nil
	})

	var calls []string
	fg.Execute(func(name string) error {
		calls = append(calls, name)
		return nil
	})
	if len(calls) != 1 || calls[0] != "secondary" {
		t.Errorf("calls = %v, want secondary only while primary breaker is open", calls)
	}
}

func TestExecuteWithResult(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup(1, "one", FallbackConfig{})
	fg.AddFallback("two", 2)

	got, err := ExecuteWithResult(fg, func(n int) (string, error) {
		if n == 1 {
			return "", errBoom
		}
		return "from two", nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult: %v", err)
	}
	if got != "from two" {
		t.Errorf("got = %q", got)
	}
}

func TestSpeakerFallback(t *testing.T) {
	t.Parallel()

	primary := &ttsmock.Speaker{Err: errBoom}
	backup := &ttsmock.Speaker{}

	f := NewSpeakerFallback(primary, "coqui", FallbackConfig{})
	f.AddFallback("sysvoice", backup)

	if err := f.Speak(context.Background(), "hello there"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if len(backup.Spoken) != 1 || backup.Spoken[0] != "hello there" {
		t.Errorf("backup.Spoken = %v, want the utterance", backup.Spoken)
	}
}
