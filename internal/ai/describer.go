// Package ai generates marketing copy for products through an external
// text-generation endpoint. Failures are soft: callers show
// FallbackDescription instead of an error.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FallbackDescription is shown when generation fails.
const FallbackDescription = "Failed to generate AI description."

const prompt = "Generate an engaging, SEO-friendly, and high-converting product description " +
	"for an e-commerce item named %q. Use persuasive, value-oriented language, focus on " +
	"reliability and quality, keep it between 150 and 250 characters, and do not use " +
	"hashtags or emojis."

// Describer produces a marketing description for a product name.
type Describer interface {
	Describe(ctx context.Context, productName string) (string, error)
}

// Client talks to a generate-content style REST endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a Client. endpoint is the full generate URL; apiKey is
// sent as a query parameter the way the upstream API expects.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Describe implements Describer.
func (c *Client) Describe(ctx context.Context, productName string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(prompt, productName)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("ai: failed to marshal request: %w", err)
	}

	url := c.endpoint
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("ai: generation request failed")
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %s", resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai: failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("ai: empty response")
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("ai: empty description")
	}
	return text, nil
}
