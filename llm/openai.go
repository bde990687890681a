package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
)

// ChatCompleter is the subset of the go-openai client used here
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint (OpenAI, Ollama, vLLM)
type OpenAIClient struct {
	logger  *zap.Logger
	client  ChatCompleter
	model   string
	timeout time.Duration
}

// OpenAIClientOption defines a functional option for OpenAIClient
type OpenAIClientOption func(*OpenAIClient)

// WithChatCompleter replaces the underlying go-openai client
func WithChatCompleter(c ChatCompleter) OpenAIClientOption {
	return func(o *OpenAIClient) {
		o.client = c
	}
}

// NewOpenAIClient creates a client for the configured endpoint and model
func NewOpenAIClient(logger *zap.Logger, cfg *config.Config, opts ...OpenAIClientOption) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.LLM.APIKey)
	clientConfig.BaseURL = cfg.LLM.BaseURL

	o := &OpenAIClient{
		logger:  logger,
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.LLM.Model,
		timeout: cfg.GetLLMTimeout(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Complete submits the conversation and returns the first choice's content
func (o *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		o.logger.Error("chat completion failed",
			zap.String("model", o.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		o.logger.Warn("chat completion returned no choices", zap.String("model", o.model))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ErrEmptyResponse)
	}

	o.logger.Debug("chat completion received",
		zap.String("model", o.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}
