package snipgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	bedrockpkg "github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"

	// Temperature is fixed low so repeated tasks give similar snippets.
	Temperature = 0.3

	maxTokens = 4096
)

// Generator asks Claude for a code snippet for a task description.
type Generator struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewGenerator creates a snippet generator.
// When bedrock is true, the client uses AWS credentials via the default config chain
// instead of ANTHROPIC_API_KEY. The SDK's automatic retries are disabled; opts are
// applied last and may override anything.
func NewGenerator(ctx context.Context, modelID string, bedrock bool, logger *zap.Logger, opts ...option.RequestOption) *Generator {
	if modelID == "" {
		modelID = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if bedrock {
		clientOpts = append(clientOpts, bedrockpkg.WithLoadDefaultConfig(ctx))
	}
	clientOpts = append(clientOpts, opts...)

	client := anthropic.NewClient(clientOpts...)
	return &Generator{
		client: &client,
		model:  modelID,
		logger: logger,
	}
}

// Model returns the model id requests are sent to.
func (g *Generator) Model() string {
	return g.model
}

// Generate returns a snippet for task using the persona selected by mode.
// Service failures are returned as-is, wrapped; nothing is retried.
func (g *Generator) Generate(ctx context.Context, task string, mode Mode) (string, error) {
	g.logger.Debug("requesting snippet",
		zap.String("model", g.model),
		zap.String("mode", string(mode)),
		zap.Int("task_len", len(task)))

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(Temperature),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt(mode)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildUserPrompt(task))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from model")
	}

	g.logger.Debug("received snippet",
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))

	return StripFences(text), nil
}
