// Package agent answers natural-language questions about bills by letting
// a chat-completions model call the assistant tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mmynk/billminder/internal/assistant"
)

// ErrTooManySteps is returned when the model keeps calling tools past the
// configured limit.
var ErrTooManySteps = errors.New("agent: too many tool calls without an answer")

const systemPrompt = `You are a helpful assistant that keeps track of the user's recurring bills.
Use the tools to look up bills, check what is due or overdue, add new bills and mark bills paid.
Dates are YYYY-MM-DD. Today is %s.
When a tool reports several matching bills, ask the user which one they mean.
Keep answers short and mention amounts and due dates.`

// Config describes the model endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxSteps    int
	// Today returns the current date shown to the model. Defaults to the
	// local date.
	Today func() string
}

// Agent runs the tool-calling loop.
type Agent struct {
	client openai.Client
	cfg    Config
	tools  map[string]assistant.Tool
	params []openai.ChatCompletionToolParam
}

// New returns an Agent that can call tools.
func New(cfg Config, tools []assistant.Tool, opts ...option.RequestOption) (*Agent, error) {
	if cfg.Model == "" {
		return nil, errors.New("agent: model is required")
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 6
	}
	if cfg.Today == nil {
		cfg.Today = func() string { return time.Now().Format("2006-01-02") }
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	a := &Agent{
		client: openai.NewClient(clientOpts...),
		cfg:    cfg,
		tools:  make(map[string]assistant.Tool, len(tools)),
	}
	for _, t := range tools {
		params, err := schemaParams(t)
		if err != nil {
			return nil, err
		}
		a.tools[t.Name] = t
		a.params = append(a.params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  params,
			},
		})
	}
	return a, nil
}

// Run answers message, calling tools until the model replies with text.
func (a *Agent) Run(ctx context.Context, message string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(fmt.Sprintf(systemPrompt, a.cfg.Today())),
		openai.UserMessage(message),
	}

	for step := 0; step < a.cfg.MaxSteps; step++ {
		completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(a.cfg.Model),
			Messages:    messages,
			Tools:       a.params,
			Temperature: openai.Float(a.cfg.Temperature),
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}

		reply := completion.Choices[0].Message
		if len(reply.ToolCalls) == 0 {
			return strings.TrimSpace(reply.Content), nil
		}

		messages = append(messages, reply.ToParam())
		for _, call := range reply.ToolCalls {
			result := a.callTool(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ToolMessage(result, call.ID))
		}
	}
	return "", ErrTooManySteps
}

// callTool runs one tool call. Failures are reported back to the model as
// text so it can explain them or retry.
func (a *Agent) callTool(ctx context.Context, name, args string) string {
	tool, ok := a.tools[name]
	if !ok {
		slog.Warn("Model called unknown tool", "tool", name)
		return fmt.Sprintf("Error: there is no tool named %q.", name)
	}

	start := time.Now()
	result, err := tool.Call(ctx, json.RawMessage(args))
	if err != nil {
		slog.Info("Tool call failed", "tool", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return "Error: " + err.Error()
	}
	slog.Info("Tool call ok", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result
}

func schemaParams(t assistant.Tool) (openai.FunctionParameters, error) {
	if t.Parameters == nil {
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}, nil
	}
	data, err := json.Marshal(t.Parameters)
	if err != nil {
		return nil, fmt.Errorf("encode schema for %s: %w", t.Name, err)
	}
	var params openai.FunctionParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("decode schema for %s: %w", t.Name, err)
	}
	return params, nil
}
