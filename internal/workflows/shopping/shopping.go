// Package shopping manages the user's shopping list by voice.
package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hemanthsagarb9/LemmeTalk/internal/speech"
	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

const systemPrompt = "You are a shopping list assistant. Help users add items to their shopping list, " +
	"view their current list, and mark items as completed. " +
	"Extract the items they want to add from natural language requests. " +
	"For example, 'add eggs and bread and chicken' should extract ['eggs', 'bread', 'chicken']. " +
	"Keep responses conversational and suitable for voice output."

var descriptor = workflow.Descriptor{
	Name:        "shopping",
	Description: "Add items to the shopping list, read it back, and mark items as done",
	Triggers: []string{
		"shopping", "shopping list", "add to list", "buy", "purchase",
		"grocery", "shopping cart",
	},
}

// Handler is the shopping list workflow.
type Handler struct {
	provider llm.Provider
	store    storage.ListStore
}

var _ workflow.Handler = (*Handler)(nil)

// New creates the shopping workflow over the given list store.
func New(provider llm.Provider, store storage.ListStore) *Handler {
	return &Handler{provider: provider, store: store}
}

// Describe implements workflow.Handler.
func (h *Handler) Describe() workflow.Descriptor { return descriptor }

// CanHandle implements workflow.Handler.
func (h *Handler) CanHandle(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range descriptor.Triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Run implements workflow.Handler. The model drives the list through tools;
// the final reply is normalized for speech.
func (h *Handler) Run(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error) {
	reply, err := workflow.RunToolLoop(ctx, h.provider, systemPrompt,
		[]llm.Message{{Role: "user", Content: input}}, h.tools())
	if err != nil {
		return workflow.Result{}, fmt.Errorf("shopping: %w", err)
	}
	return workflow.Result{
		Response:  speech.Normalize(reply),
		Succeeded: true,
		Workflow:  descriptor.Name,
	}, nil
}

func (h *Handler) tools() workflow.ToolSet {
	return workflow.ToolSet{
		Definitions: []llm.ToolDefinition{
			{
				Name:        "add_to_shopping_list",
				Description: "Add one or more items to the shopping list.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"items": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Item names to add",
						},
					},
					"required": []string{"items"},
				},
			},
			{
				Name:        "get_shopping_list",
				Description: "Get the current shopping list.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
			{
				Name:        "mark_item_completed",
				Description: "Mark a shopping list item as completed.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item_name": map[string]any{"type": "string", "description": "Name of the item to mark"},
					},
					"required": []string{"item_name"},
				},
			},
			{
				Name:        "clear_completed_items",
				Description: "Remove completed items from the list.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
		},
		Funcs: map[string]workflow.ToolFunc{
			"add_to_shopping_list":  h.addItems,
			"get_shopping_list":     h.getList,
			"mark_item_completed":   h.markCompleted,
			"clear_completed_items": h.clearCompleted,
		},
	}
}

func (h *Handler) addItems(ctx context.Context, args string) (string, error) {
	var in struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if len(in.Items) == 0 {
		return "No items given.", nil
	}
	items := make([]storage.Item, 0, len(in.Items))
	for _, name := range in.Items {
		items = append(items, storage.Item{Name: name})
	}
	if err := h.store.Add(ctx, items...); err != nil {
		return "", err
	}
	return "Added to shopping list: " + strings.Join(in.Items, ", "), nil
}

func (h *Handler) getList(ctx context.Context, args string) (string, error) {
	items, err := h.store.Items(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "Your shopping list is empty.", nil
	}
	var open []string
	for _, it := range items {
		if !it.Completed {
			open = append(open, it.Name)
		}
	}
	if len(open) == 0 {
		return "All items on your shopping list have been completed!", nil
	}
	return "Your shopping list has: " + strings.Join(open, ", "), nil
}

func (h *Handler) markCompleted(ctx context.Context, args string) (string, error) {
	var in struct {
		ItemName string `json:"item_name"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if err := h.store.MarkCompleted(ctx, in.ItemName); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked '%s' as completed.", in.ItemName), nil
}

func (h *Handler) clearCompleted(ctx context.Context, args string) (string, error) {
	if _, err := h.store.ClearCompleted(ctx); err != nil {
		return "", err
	}
	return "Cleared all completed items from your shopping list.", nil
}
