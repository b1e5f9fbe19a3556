package config

import (
	"errors"
	"testing"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	llmmock "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/mock"
)

func TestRegistryCreateLLM(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterLLM("mock", func(entry ProviderEntry) (llm.Provider, error) {
		return &llmmock.Provider{}, nil
	})

	p, err := r.CreateLLM(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if p == nil {
		t.Fatal("CreateLLM returned nil provider")
	}
}

func TestRegistryUnregisteredProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.CreateLLM(ProviderEntry{Name: "ghost"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = r.CreateSTT(ProviderEntry{Name: "ghost"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = r.CreateTTS(ProviderEntry{Name: "ghost"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryFactoryOverwrite(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := &llmmock.Provider{}
	second := &llmmock.Provider{}
	r.RegisterLLM("mock", func(ProviderEntry) (llm.Provider, error) { return first, nil })
	r.RegisterLLM("mock", func(ProviderEntry) (llm.Provider, error) { return second, nil })

	p, err := r.CreateLLM(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if p != second {
		t.Error("later registration should win")
	}
}
