// Package generation composes prompts, calls the text-generation model, and
// post-processes raw model output into a chat response.
package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/portfolio-ai-assistant/internal/jsonx"
)

// Generation sampling parameters. Held fixed across requests.
const (
	TopP              = 0.9
	RepetitionPenalty = 1.1
	MaxNewTokens      = 150
)

// Client is the text-generation capability: prompt in, raw completion out.
type Client interface {
	// Complete generates a completion for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Model returns the model identifier.
	Model() string
}

// OllamaClient generates completions via Ollama's generate API.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a generation client. Empty arguments fall back to
// the local default endpoint and model.
func NewOllamaClient(baseURL, model string, temperature float64, maxTokens int) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if temperature <= 0 {
		temperature = 0.7
	}
	if maxTokens <= 0 {
		maxTokens = MaxNewTokens
	}
	return &OllamaClient{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Complete generates a completion for the prompt with the fixed sampling
// parameters.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := jsonx.Marshal(ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature":    c.temperature,
			"top_p":          TopP,
			"repeat_penalty": RepetitionPenalty,
			"num_predict":    c.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(msg))
	}

	var result ollamaGenerateResponse
	if err := jsonx.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Response == "" {
		return "", fmt.Errorf("empty completion returned")
	}

	return result.Response, nil
}

// Model returns the model identifier.
func (c *OllamaClient) Model() string {
	return c.model
}
