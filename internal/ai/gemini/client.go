package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/thomas-vilte/mateticket/internal/ai"
	"github.com/thomas-vilte/mateticket/internal/config"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const providerName = "gemini"

var _ ai.CostAwareAIProvider = (*Client)(nil)

// Client wraps the genai client with the settings of the service.
type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
	temperature    float64
	maxTokens      int
	timeout        time.Duration
	tracer         trace.Tracer
}

// NewClient creates a Gemini client. It returns ErrAINotConfigured when no
// usable API key is set.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.AIEnabled() {
		return nil, domainErrors.ErrAINotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "invalid") ||
			strings.Contains(errMsg, "unauthorized") ||
			strings.Contains(errMsg, "api key") ||
			strings.Contains(errMsg, "authentication") {
			return nil, domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
		}
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	return &Client{
		client:         client,
		model:          cfg.Gemini.Model,
		embeddingModel: cfg.Gemini.EmbeddingModel,
		temperature:    cfg.Gemini.Temperature,
		maxTokens:      cfg.Gemini.MaxTokens,
		timeout:        cfg.GeminiTimeout(),
		tracer:         otel.Tracer("github.com/thomas-vilte/mateticket/internal/ai/gemini"),
	}, nil
}

// CountTokens implements ai.CostAwareAIProvider
func (c *Client) CountTokens(ctx context.Context, prompt string) (int, error) {
	resp, err := c.client.Models.CountTokens(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

// GetModelName implements ai.CostAwareAIProvider
func (c *Client) GetModelName() string {
	return c.model
}

// GetProviderName implements ai.CostAwareAIProvider
func (c *Client) GetProviderName() string {
	return providerName
}

// EmbeddingModel is the model used by Embed.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

// GenerateJSON asks model for a JSON answer constrained by schema and returns
// the extracted JSON text.
func (c *Client) GenerateJSON(ctx context.Context, model, prompt string, schema *genai.Schema) (string, *models.TokenUsage, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.GenerateContent",
		trace.WithAttributes(attribute.String("gen_ai.request.model", model)))
	defer span.End()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	log := logger.FromContext(ctx)
	genConfig := GetGenerateConfig(model, mimeJSON, schema, c.temperature, c.maxTokens)

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", model)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", nil, classifyError(err)
	}

	text := formatResponse(resp)
	if strings.TrimSpace(text) == "" {
		return "", nil, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "empty response from AI").
			WithContext("model", model)
	}

	usage := extractUsage(resp)
	if usage != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", usage.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", usage.OutputTokens))
	}

	return ExtractJSON(text), usage, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.EmbedContent",
		trace.WithAttributes(attribute.String("gen_ai.request.model", c.embeddingModel)))
	defer span.End()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed content failed")
		return nil, classifyError(err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "empty embedding").
			WithContext("model", c.embeddingModel)
	}

	return resp.Embeddings[0].Values, nil
}

// Ping makes the smallest possible generation request.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cfg := &genai.GenerateContentConfig{MaxOutputTokens: 5}
	if _, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text("Hello"), cfg); err != nil {
		return classifyError(err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
