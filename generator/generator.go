package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/llm"
	"github.com/isdmx/nexus/models"
	"github.com/isdmx/nexus/prompts"
)

// Generator produces candidate code from a task and the failures so far
type Generator struct {
	logger      *zap.Logger
	client      llm.Client
	prompts     *prompts.Prompts
	temperature float32
	timeoutSec  int
}

// New creates a Generator
func New(logger *zap.Logger, cfg *config.Config, client llm.Client, p *prompts.Prompts) *Generator {
	return &Generator{
		logger:      logger.Named("generator"),
		client:      client,
		prompts:     p,
		temperature: cfg.LLM.CoderTemperature,
		timeoutSec:  cfg.Sandbox.TimeoutSec,
	}
}

// Generate asks the model for code. LLM errors are returned as-is for the caller to treat as fatal.
func (g *Generator) Generate(ctx context.Context, task string, history []models.Attempt) (string, error) {
	messages := g.Conversation(task, history)

	g.logger.Debug("requesting code",
		zap.Int("history_len", len(history)),
		zap.Int("turns", len(messages)))

	raw, err := g.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}

	return ExtractCode(raw), nil
}

// Conversation builds the turns sent to the model: instructions, task, then
// for every prior attempt in order the old code and a correction request.
func (g *Generator) Conversation(task string, history []models.Attempt) []llm.Message {
	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: g.prompts.Coder(g.timeoutSec)},
		llm.Message{Role: llm.RoleUser, Content: "Task: " + task},
	)

	for _, attempt := range history {
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: attempt.Code},
			llm.Message{Role: llm.RoleUser, Content: g.correction(attempt)},
		)
	}

	return messages
}

func (g *Generator) correction(attempt models.Attempt) string {
	switch attempt.Outcome {
	case models.OutcomeSecurityRejected:
		return fmt.Sprintf(g.prompts.SecurityCorrection, attempt.Feedback)
	default:
		return fmt.Sprintf(g.prompts.RuntimeCorrection, attempt.Feedback)
	}
}
