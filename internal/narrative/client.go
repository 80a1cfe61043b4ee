// Package narrative wraps the optional external text-generation service used
// to enrich scenario descriptions. The service is a best-effort collaborator:
// callers must tolerate every failure it can produce.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
)

// Generator is the capability interface for narrative text generation.
// Implementations may fail at any time; the scenario generator degrades to a
// rule-based fallback when they do.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPClient talks to a chat-completions style endpoint.
type HTTPClient struct {
	cfg    config.NarrativeConfig
	logger *slog.Logger
	client *http.Client
}

// NewHTTPClient creates a narrative client from configuration.
func NewHTTPClient(cfg config.NarrativeConfig, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt and returns the raw completion text.
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode narrative request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to build narrative request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.NewUpstreamError("narrative service unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", domain.NewUpstreamError("failed to read narrative response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", domain.NewUpstreamError(
			fmt.Sprintf("narrative service returned status %d", resp.StatusCode), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", domain.NewUpstreamError("unparsable narrative response", err)
	}
	if parsed.Error != nil {
		return "", domain.NewUpstreamError("narrative service error: "+parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", domain.NewUpstreamError("narrative response contained no choices", nil)
	}

	return parsed.Choices[0].Message.Content, nil
}

// Disabled is a Generator that always fails, which forces callers onto their
// deterministic fallback path. Used when enrichment is switched off and in
// tests.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", domain.NewUpstreamError("narrative enrichment disabled", nil)
}

// ExtractJSON pulls the first JSON object out of a completion, tolerating
// markdown code fences and surrounding prose. Models rarely return bare JSON.
func ExtractJSON(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[idx+3:]
		cleaned = strings.TrimPrefix(cleaned, "json")
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	}

	start := strings.Index(cleaned, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := cleaned[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
