// Package openai talks to OpenAI-compatible APIs for embeddings and
// schema-constrained extraction.
package openai

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// wrapAPIError classifies an API failure under the given sentinel, keeping
// the upstream status code and message in the chain.
func wrapAPIError(sentinel error, op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: status %d: %s", sentinel, op, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, op, err)
}
