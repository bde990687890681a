package llm

import (
	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
)

// New creates the language model client for the configuration
func New(logger *zap.Logger, cfg *config.Config) (Client, error) {
	logger.Info("language model configured",
		zap.String("llm.base_url", cfg.LLM.BaseURL),
		zap.String("llm.model", cfg.LLM.Model),
		zap.Duration("llm.request_timeout", cfg.GetLLMTimeout()))

	return NewOpenAIClient(logger.Named("llm"), cfg), nil
}
