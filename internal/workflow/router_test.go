package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	wfmock "github.com/hemanthsagarb9/LemmeTalk/internal/workflow/mock"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	llmmock "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/mock"
)

func newTestRegistry(t *testing.T) *workflow.Registry {
	t.Helper()
	r := workflow.NewRegistry()
	shopping := wfmock.New("shopping")
	shopping.Desc.Triggers = []string{"shopping list", "grocery"}
	reminders := wfmock.New("reminders")
	reminders.Desc.Triggers = []string{"remind", "reminder"}
	for _, h := range []workflow.Handler{shopping, reminders} {
		if err := r.Register(h); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return r
}

func TestRouteByClassification(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "shopping"}},
	}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	d, err := router.Route(context.Background(), "add milk and eggs to my shopping list")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if d.Workflow != "shopping" {
		t.Errorf("Workflow = %q, want %q", d.Workflow, "shopping")
	}
	if d.Fallback() {
		t.Error("Fallback() = true for a routed decision")
	}

	// Classification must run at temperature 0 with a bounded reply.
	if len(provider.CompleteCalls) != 1 {
		t.Fatalf("Complete called %d times, want 1", len(provider.CompleteCalls))
	}
	req := provider.CompleteCalls[0].Req
	if req.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", req.Temperature)
	}
	if req.MaxTokens == 0 {
		t.Error("MaxTokens = 0, want a small bound")
	}
	if !strings.Contains(req.SystemPrompt, "shopping") || !strings.Contains(req.SystemPrompt, "reminders") {
		t.Error("classification prompt should list every registered workflow")
	}
}

func TestRouteClassifierReplyNormalization(t *testing.T) {
	t.Parallel()

	// Models decorate single-word answers; the router must still parse them.
	for _, reply := range []string{"Shopping", " shopping \n", `"shopping"`, "shopping."} {
		provider := &llmmock.Provider{
			CompleteResponses: []*llm.CompletionResponse{{Content: reply}},
		}
		router := workflow.NewRouter(newTestRegistry(t), provider, nil)
		d, err := router.Route(context.Background(), "groceries please")
		if err != nil {
			t.Fatalf("Route(%q): %v", reply, err)
		}
		if d.Workflow != "shopping" {
			t.Errorf("reply %q routed to %q, want shopping", reply, d.Workflow)
		}
	}
}

func TestRouteFallbackToken(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "none"}},
	}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	d, err := router.Route(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !d.Fallback() {
		t.Errorf("Workflow = %q, want fallback decision", d.Workflow)
	}
}

func TestRouteUnknownClassifierReply(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "calendar"}},
	}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	d, err := router.Route(context.Background(), "what is on my calendar")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !d.Fallback() {
		t.Errorf("unknown classifier reply routed to %q, want fallback", d.Workflow)
	}
}

func TestRouteKeywordFallbackOnClassifierError(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{CompleteErr: errors.New("backend down")}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	d, err := router.Route(context.Background(), "please REMIND me to water the plants")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if d.Workflow != "reminders" {
		t.Errorf("Workflow = %q, want reminders via keyword fallback", d.Workflow)
	}
	if d.Method != "keyword" {
		t.Errorf("Method = %q, want keyword", d.Method)
	}
}

func TestRoutePhoneticFallback(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{CompleteErr: errors.New("backend down")}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	// "remined" is a common transcription of "remind"; no exact trigger
	// substring is present.
	d, err := router.Route(context.Background(), "remined me to call mom")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if d.Workflow != "reminders" {
		t.Errorf("Workflow = %q, want reminders via phonetic fallback", d.Workflow)
	}
	if d.Method != "phonetic" {
		t.Errorf("Method = %q, want phonetic", d.Method)
	}
}

func TestRouteNoMatchFallsBack(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{CompleteErr: errors.New("backend down")}
	router := workflow.NewRouter(newTestRegistry(t), provider, nil)

	d, err := router.Route(context.Background(), "what is the capital of France")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !d.Fallback() {
		t.Errorf("Workflow = %q, want fallback", d.Workflow)
	}
}

func TestRouteEmptyUtteranceAndEmptyRegistry(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "shopping"}},
	}

	router := workflow.NewRouter(newTestRegistry(t), provider, nil)
	if d, _ := router.Route(context.Background(), "   "); !d.Fallback() {
		t.Error("blank utterance should fall back without a provider call")
	}

	empty := workflow.NewRouter(workflow.NewRegistry(), provider, nil)
	if d, _ := empty.Route(context.Background(), "add milk"); !d.Fallback() {
		t.Error("empty registry should always fall back")
	}
	if len(provider.CompleteCalls) != 0 {
		t.Errorf("Complete called %d times, want 0", len(provider.CompleteCalls))
	}
}

func TestRouteIncludesConversationContext(t *testing.T) {
	t.Parallel()

	conv := session.New("")
	conv.Append(session.RoleUser, "add milk to my shopping list")
	conv.Append(session.RoleAssistant, "Added milk to your shopping list.")

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "shopping"}},
	}
	router := workflow.NewRouter(newTestRegistry(t), provider, conv)

	if _, err := router.Route(context.Background(), "and eggs too"); err != nil {
		t.Fatalf("Route: %v", err)
	}

	req := provider.CompleteCalls[0].Req
	if len(req.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(req.Messages))
	}
	input := req.Messages[0].Content
	if !strings.Contains(input, "add milk to my shopping list") {
		t.Errorf("classification input missing prior turn context:\n%s", input)
	}
	if !strings.Contains(input, "and eggs too") {
		t.Errorf("classification input missing the utterance:\n%s", input)
	}
}

func TestRouteContextExcludesCurrentUtterance(t *testing.T) {
	t.Parallel()

	// Mirror the turn loop: the user's turn is already in the transcript
	// when Route runs. The context block must not repeat it.
	conv := session.New("")
	conv.Append(session.RoleUser, "add milk to my shopping list")
	conv.Append(session.RoleAssistant, "Added milk to your shopping list.")
	conv.Append(session.RoleUser, "and eggs too")

	provider := &llmmock.Provider{
		CompleteResponses: []*llm.CompletionResponse{{Content: "shopping"}},
	}
	router := workflow.NewRouter(newTestRegistry(t), provider, conv)

	if _, err := router.Route(context.Background(), "and eggs too"); err != nil {
		t.Fatalf("Route: %v", err)
	}

	input := provider.CompleteCalls[0].Req.Messages[0].Content
	if n := strings.Count(input, "and eggs too"); n != 1 {
		t.Errorf("utterance appears %d times in classification input, want 1:\n%s", n, input)
	}
	if !strings.Contains(input, "add milk to my shopping list") {
		t.Errorf("classification input missing prior turn context:\n%s", input)
	}
}
