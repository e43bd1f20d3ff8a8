package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/extract"
	"github.com/docdex-io/docdex/internal/metrics"
)

// Extractor runs schema-constrained document extraction through a chat
// completion endpoint.
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
}

type ExtractorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	return &Extractor{
		client:      newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Extract sends the document text to the model and decodes the structured
// payload. The response format pins the model to the extraction schema.
func (e *Extractor) Extract(ctx context.Context, fileName, text string) (extract.Payload, error) {
	if text == "" {
		return extract.Payload{}, fmt.Errorf("%w: empty document text", domain.ErrValidation)
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extract.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: extract.BuildPrompt(fileName) + "\n\n" + text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   extract.SchemaName,
				Schema: extract.Schema(),
			},
		},
	})
	metrics.ExtractionRequestDuration.WithLabelValues(e.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return extract.Payload{}, wrapAPIError(domain.ErrTransport, "create chat completion", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return extract.Payload{}, fmt.Errorf("%w: no completion choices", domain.ErrTransport)
	}

	var payload extract.Payload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "parse_error").Inc()
		return extract.Payload{}, fmt.Errorf("%w: decode extraction payload: %v", domain.ErrValidation, err)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "success").Inc()
	return payload, nil
}
