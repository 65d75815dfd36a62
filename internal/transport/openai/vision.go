// Package openai implements the vision extraction provider over any
// OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/domain"
	"github.com/kailas-cloud/herbadex/internal/metrics"
)

// extractionPrompt asks the model for a bare JSON object so the
// normalizer can parse the response without fence stripping.
const extractionPrompt = `You will extract the text information about the plant scan. Return the information in a JSON format.

The JSON should have the following fields:
- taxonomic_name: The taxonomic name of the plant
- common_name: The common name of the plant
- family: The family of the plant
- genus: The genus of the plant
- species: The species of the plant
- subspecies: The subspecies of the plant
- variety: The variety of the plant
- elevation: The elevation of the plant
- form: The form of the plant
- plant_image_url: The URL of the plant image
- geographic_location: The geographic location of the plant
- collection_date: The date of the plant collection
- collector: The collector of the plant
- herbarium_code: The herbarium code of the plant
- accession_number: The accession number of the plant
- habitat: The habitat of the plant
- description: A description of the plant
- notes: Any additional notes about the plant

The JSON should be formatted as a JSON object, and return the object in {} brackets only.`

// Extractor is a vision provider using the OpenAI-compatible API.
type Extractor struct {
	client    *openai.Client
	model     string
	maxTokens int
	detail    openai.ImageURLDetail
	logger    *zap.Logger
}

// Config holds the vision provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Detail    string
	Logger    *zap.Logger
}

// NewExtractor creates an OpenAI-compatible vision provider.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		detail:    openai.ImageURLDetail(cfg.Detail),
		logger:    cfg.Logger,
	}
}

// Extract implements domain.VisionExtractor. Sends the scan URL to the
// model and returns its raw text output with transport-level metrics.
func (e *Extractor) Extract(ctx context.Context, imageURL string) (domain.ExtractionResult, error) {
	req := openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: e.detail,
						},
					},
				},
			},
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.VisionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.VisionErrorsTotal.WithLabelValues(e.model, "api_error").Inc()
		return domain.ExtractionResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.VisionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.VisionErrorsTotal.WithLabelValues(e.model, "empty_response").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("empty vision response: %w", domain.ErrVisionProviderError)
	}

	metrics.VisionRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.VisionRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.VisionTokensTotal.WithLabelValues(e.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.VisionTokensTotal.WithLabelValues(e.model, "completion").Add(float64(usage.CompletionTokens))
		metrics.VisionTokensTotal.WithLabelValues(e.model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.ExtractionResult{
		Raw:              resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrVisionProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrVisionProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("vision API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("vision API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("vision API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("vision request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
