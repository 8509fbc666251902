package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sightlinehq/sightline/internal/logging"
)

// Provider is an external text-generation collaborator. The generative
// synthesizer treats it as a black box that may fail, time out, or
// return garbage.
type Provider interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Compile-time interface satisfaction check
var _ Provider = (*HTTPProvider)(nil)

// ProviderConfig defines how to communicate with a text-generation API.
type ProviderConfig struct {
	Name         string
	Endpoint     string
	APIKey       string
	Model        string
	AuthHeader   string            // "x-api-key" or "Authorization"
	AuthPrefix   string            // "" or "Bearer "
	ExtraHeaders map[string]string

	// BuildBody shapes the request payload for this API.
	BuildBody func(cfg *ProviderConfig, prompt string) map[string]any

	// ParseResponse extracts the generated text from the raw body.
	ParseResponse func(body []byte) (string, error)
}

// HTTPProvider is a generic HTTP-based text-generation provider.
type HTTPProvider struct {
	config *ProviderConfig
	client *http.Client
}

// NewHTTPProvider creates a provider from config.
func NewHTTPProvider(cfg *ProviderConfig) *HTTPProvider {
	return &HTTPProvider{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HTTPProvider) Name() string {
	return p.config.Name
}

func (p *HTTPProvider) Available() bool {
	return p.config.Endpoint != "" && p.config.APIKey != ""
}

func (p *HTTPProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%s provider not configured", p.config.Name)
	}

	logging.Debug("provider request", "provider", p.config.Name, "model", p.config.Model)

	body := p.config.BuildBody(p.config, prompt)
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.Error("API error", "provider", p.config.Name, "status", resp.StatusCode)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	content, err := p.config.ParseResponse(respBody)
	if err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return content, nil
}

func (p *HTTPProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if p.config.AuthHeader != "" && p.config.APIKey != "" {
		req.Header.Set(p.config.AuthHeader, p.config.AuthPrefix+p.config.APIKey)
	}
	for k, v := range p.config.ExtraHeaders {
		req.Header.Set(k, v)
	}
}

// OpenAICompatible builds a provider config for chat-completions style
// APIs. ParseResponse takes the first choice's message content.
func OpenAICompatible(name, endpoint, apiKey, model string) *ProviderConfig {
	return &ProviderConfig{
		Name:       name,
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Model:      model,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
		BuildBody: func(cfg *ProviderConfig, prompt string) map[string]any {
			return map[string]any{
				"model": cfg.Model,
				"messages": []map[string]string{
					{"role": "user", "content": prompt},
				},
			}
		},
		ParseResponse: func(body []byte) (string, error) {
			var parsed struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			if err := json.Unmarshal(body, &parsed); err != nil {
				return "", err
			}
			if len(parsed.Choices) == 0 {
				return "", fmt.Errorf("no choices in response")
			}
			return parsed.Choices[0].Message.Content, nil
		},
	}
}
