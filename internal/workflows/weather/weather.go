// Package weather answers weather questions conversationally.
//
// There is no live weather API behind it; the get_weather tool serves fixed
// conditions, which keeps the workflow demonstrable offline. The tool does
// honor a temperature unit preference stated anywhere in the conversation
// ("use Celsius from now on"), so unit context carries across turns.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hemanthsagarb9/LemmeTalk/internal/speech"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

const systemPrompt = "You are a weather assistant. When asked about weather, " +
	"provide helpful information in a natural, conversational way. " +
	"If you don't have real weather data, give a friendly response " +
	"suggesting they check a weather app. Keep responses concise " +
	"and suitable for voice output. " +
	"IMPORTANT: Use the conversation history to understand context. " +
	"If someone asks about temperature units (Celsius/Fahrenheit), " +
	"remember their preference and use it in future responses."

var descriptor = workflow.Descriptor{
	Name:        "weather",
	Description: "Get current weather information",
	Triggers: []string{
		"weather", "temperature", "forecast", "how's the weather",
		"what's the weather like", "weather today",
	},
}

// Handler is the weather workflow.
type Handler struct {
	provider llm.Provider
}

var _ workflow.Handler = (*Handler)(nil)

// New creates the weather workflow.
func New(provider llm.Provider) *Handler {
	return &Handler{provider: provider}
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
	reply, err := workflow.RunToolLoop(ctx, h.provider, systemPrompt,
		[]llm.Message{{Role: "user", Content: input}}, h.tools(deps))
	if err != nil {
		return workflow.Result{}, fmt.Errorf("weather: %w", err)
	}
	return workflow.Result{
		Response:  speech.Normalize(reply),
		Succeeded: true,
		Workflow:  descriptor.Name,
	}, nil
}

func (h *Handler) tools(deps workflow.Deps) workflow.ToolSet {
	return workflow.ToolSet{
		Definitions: []llm.ToolDefinition{
			{
				Name:        "get_weather",
				Description: "Get weather information for a location.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"location": map[string]any{
							"type":        "string",
							"description": "Location to check, or 'current' for the user's area",
						},
					},
				},
			},
		},
		Funcs: map[string]workflow.ToolFunc{
			"get_weather": func(ctx context.Context, args string) (string, error) {
				return h.getWeather(deps, args)
			},
		},
	}
}

func (h *Handler) getWeather(deps workflow.Deps, args string) (string, error) {
	var in struct {
		Location string `json:"location"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &in); err != nil {
			return "", fmt.Errorf("bad arguments: %w", err)
		}
	}
	location := in.Location
	if location == "" || location == "current" {
		location = "your area"
	}

	const tempF = 72
	tempC := (tempF - 32) * 5 / 9

	temperature := fmt.Sprintf("%d degrees Fahrenheit", tempF)
	if prefersCelsius(deps) {
		temperature = fmt.Sprintf("%d degrees Celsius", tempC)
	}
	return fmt.Sprintf("Weather for %s: %s, partly cloudy.", location, temperature), nil
}

// prefersCelsius scans the conversation for a stated Celsius preference.
func prefersCelsius(deps workflow.Deps) bool {
	if deps.Conversation == nil {
		return false
	}
	for _, turn := range deps.Conversation.Turns() {
		if strings.Contains(strings.ToLower(turn.Text), "celsius") {
			return true
		}
	}
	return false
}
