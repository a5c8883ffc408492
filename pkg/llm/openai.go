package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/logging"
	"github.com/sqlsentinel/sentinel-engine/pkg/prompts"
)

// OpenAIGenerator generates SQL through any OpenAI-compatible chat
// completion endpoint (OpenAI, Azure OpenAI, vLLM, Ollama).
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	Endpoint    string // base URL, e.g. "https://api.openai.com/v1"
	Model       string
	APIKey      string
	Temperature float64
}

// NewOpenAIGenerator builds a generator against an OpenAI-compatible
// endpoint.
func NewOpenAIGenerator(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.Named("llm-openai"),
	}, nil
}

// GenerateSQL implements TextGenerator.
func (g *OpenAIGenerator) GenerateSQL(ctx context.Context, request string, schemaContext string) (string, error) {
	system := prompts.SQLGenerationSystem(schemaContext)

	g.logger.Debug("Generation request",
		zap.String("model", g.model),
		zap.Int("request_len", len(request)))

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: request},
		},
		Temperature: float32(g.temperature),
	})
	if err != nil {
		g.logger.Error("Generation call failed",
			zap.String("model", g.model),
			zap.String("error", logging.SanitizeError(err)))
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyGeneration
	}
	sql := ExtractSQL(resp.Choices[0].Message.Content)
	if sql == "" {
		return "", apperrors.ErrEmptyGeneration
	}

	g.logger.Debug("Generation response",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("sql", logging.SanitizeQuery(sql)))
	return sql, nil
}
