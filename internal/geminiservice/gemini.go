package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// --- Gemini API Configuration ---
const (
	initialBackoff = 1 * time.Second
	requestTimeout = 30 * time.Second
)

const structuredMimeType = "application/json"

// ErrNoContent is returned when Gemini answers 200 without any candidate text.
var ErrNoContent = errors.New("no content found in Gemini response")

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema  `json:"responseSchema,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint. Retries with backoff and
// request pacing live here, in the provider client, never in the callers.
type Client struct {
	apiKey     string
	endpoint   string
	maxRetries int
	structured bool
	backoff    time.Duration
	limiter    *rate.Limiter
	http       *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBackoff overrides the initial retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient builds a Gemini client from explicit configuration.
func NewClient(cfg config.GeminiConfig, opts ...Option) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		maxRetries: maxRetries,
		structured: cfg.StructuredOutput,
		backoff:    initialBackoff,
		limiter:    rate.NewLimiter(rate.Limit(rps), int(math.Max(1, math.Ceil(rps)))),
		http:       &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends a single prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// GenerateFor is Generate with the reply constrained to the JSON shape of family.
// Free-text families, and clients with structured output disabled, fall back to Generate.
func (c *Client) GenerateFor(ctx context.Context, family assistant.Family, prompt string) (string, error) {
	if !c.structured {
		return c.generate(ctx, prompt, nil)
	}
	return c.generate(ctx, prompt, schemaFor(family))
}

func (c *Client) generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("server is not configured for AI responses")
	}

	payload := GeminiPayload{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
	}
	if schema != nil {
		payload.GenerationConfig = &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   schema,
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	return c.callGemini(ctx, payloadBytes)
}

// callGemini handles the actual HTTP request with exponential backoff.
func (c *Client) callGemini(ctx context.Context, payloadBytes []byte) (string, error) {
	log := zerolog.Ctx(ctx)
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			wait := c.backoff * time.Duration(math.Pow(2, float64(i-1)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		log.Debug().Msgf("Attempt %d: Calling Gemini API...", i+1)

		text, retry, err := c.doRequest(ctx, payloadBytes)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Warn().Err(err).Msgf("Attempt %d failed", i+1)
		if !retry || ctx.Err() != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to call Gemini API after %d attempts: %w", c.maxRetries, lastErr)
}

// doRequest performs one attempt. The bool reports whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, payloadBytes []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, err
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		var sb strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		return sb.String(), false, nil
	}

	return "", false, ErrNoContent
}
