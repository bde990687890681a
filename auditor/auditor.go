package auditor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/llm"
	"github.com/isdmx/nexus/models"
	"github.com/isdmx/nexus/prompts"
)

// Auditor reviews candidate code for security flaws before it is executed
type Auditor struct {
	logger      *zap.Logger
	client      llm.Client
	prompts     *prompts.Prompts
	temperature float32
}

// New creates an Auditor
func New(logger *zap.Logger, cfg *config.Config, client llm.Client, p *prompts.Prompts) *Auditor {
	return &Auditor{
		logger:      logger.Named("auditor"),
		client:      client,
		prompts:     p,
		temperature: cfg.LLM.AuditorTemperature,
	}
}

// Audit returns the verdict for code. It never approves a response it could not obtain or parse.
func (a *Auditor) Audit(ctx context.Context, code string) models.Verdict {
	raw, err := a.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: a.prompts.AuditorSystem},
			{Role: llm.RoleUser, Content: code},
		},
		Temperature: a.temperature,
		JSONMode:    true,
	})
	if err != nil {
		a.logger.Warn("audit request failed, rejecting", zap.Error(err))
		return models.Rejected(fmt.Sprintf("Security audit could not be completed (transport failure: %v). The code was not approved.", err))
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		a.logger.Warn("audit response unparseable, rejecting",
			zap.Error(err),
			zap.String("response", raw))
		return models.Rejected(fmt.Sprintf("JSON parsing error in security auditor: %v. The code was not approved.", err))
	}

	a.logger.Debug("audit verdict", zap.String("status", string(verdict.Status)))
	return verdict
}
