// Package reminders manages the user's reminders and tasks by voice.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/speech"
	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

const systemPrompt = "You are a reminder assistant. Help users add reminders and tasks, " +
	"view their current reminders, and mark them as completed. " +
	"Extract the task and any timing information from their request. " +
	"Respond in a natural, conversational way suitable for voice output."

// dueLayout is the due-date format the model is asked to produce.
const dueLayout = "2006-01-02 15:04"

var descriptor = workflow.Descriptor{
	Name:        "reminders",
	Description: "Add and manage reminders and tasks",
	Triggers: []string{
		"reminder", "remind me", "add reminder", "set reminder",
		"remind", "todo", "task",
	},
}

// Handler is the reminders workflow.
type Handler struct {
	provider llm.Provider
	store    storage.ListStore
}

var _ workflow.Handler = (*Handler)(nil)

// New creates the reminders workflow over the given list store.
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

// Run implements workflow.Handler.
func (h *Handler) Run(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error) {
	// The model needs today's date to resolve "tomorrow at six".
	prompt := fmt.Sprintf("%s\nThe current date and time is %s.",
		systemPrompt, deps.Now().Format("Monday, January 2, 2006 at 3:04 PM"))

	reply, err := workflow.RunToolLoop(ctx, h.provider, prompt,
		[]llm.Message{{Role: "user", Content: input}}, h.tools())
	if err != nil {
		return workflow.Result{}, fmt.Errorf("reminders: %w", err)
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
				Name:        "add_reminder",
				Description: "Add a reminder to the user's list, with an optional due date.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task": map[string]any{"type": "string", "description": "What to remind the user about"},
						"due_date": map[string]any{
							"type":        "string",
							"description": "Optional due date in YYYY-MM-DD HH:MM format",
						},
					},
					"required": []string{"task"},
				},
			},
			{
				Name:        "get_reminders",
				Description: "Get the current reminders.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
			{
				Name:        "mark_reminder_completed",
				Description: "Mark a reminder as completed.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_name": map[string]any{"type": "string", "description": "The reminder to mark"},
					},
					"required": []string{"task_name"},
				},
			},
			{
				Name:        "clear_completed_reminders",
				Description: "Remove completed reminders.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
		},
		Funcs: map[string]workflow.ToolFunc{
			"add_reminder":              h.addReminder,
			"get_reminders":             h.getReminders,
			"mark_reminder_completed":   h.markCompleted,
			"clear_completed_reminders": h.clearCompleted,
		},
	}
}

func (h *Handler) addReminder(ctx context.Context, args string) (string, error) {
	var in struct {
		Task    string `json:"task"`
		DueDate string `json:"due_date"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if strings.TrimSpace(in.Task) == "" {
		return "No task given.", nil
	}

	item := storage.Item{Name: in.Task}
	if in.DueDate != "" {
		// A due date the model could not format is kept as part of the
		// confirmation but not stored.
		if due, err := time.ParseInLocation(dueLayout, in.DueDate, time.Local); err == nil {
			item.Due = &due
		}
	}
	if err := h.store.Add(ctx, item); err != nil {
		return "", err
	}

	text := "Reminder: " + in.Task
	if in.DueDate != "" {
		text += fmt.Sprintf(" (due: %s)", in.DueDate)
	}
	return "Added reminder: " + text, nil
}

func (h *Handler) getReminders(ctx context.Context, args string) (string, error) {
	items, err := h.store.Items(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "You have no reminders set.", nil
	}
	var open []string
	for _, it := range items {
		if it.Completed {
			continue
		}
		text := it.Name
		if it.Due != nil {
			text += fmt.Sprintf(" (due: %s)", it.Due.Format(dueLayout))
		}
		open = append(open, text)
	}
	if len(open) == 0 {
		return "All your reminders have been completed!", nil
	}
	return "Your active reminders: " + strings.Join(open, ", "), nil
}

func (h *Handler) markCompleted(ctx context.Context, args string) (string, error) {
	var in struct {
		TaskName string `json:"task_name"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if err := h.store.MarkCompleted(ctx, in.TaskName); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked reminder '%s' as completed.", in.TaskName), nil
}

func (h *Handler) clearCompleted(ctx context.Context, args string) (string, error) {
	if _, err := h.store.ClearCompleted(ctx); err != nil {
		return "", err
	}
	return "Cleared all completed reminders.", nil
}
