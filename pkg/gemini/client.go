// Package gemini provides a hand-written HTTP client for the Gemini REST API,
// covering the two capabilities the engine consumes: text embeddings and
// text generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Gemini REST endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultEmbedModel produces 768-dimensional vectors.
	DefaultEmbedModel = "text-embedding-004"
	// DefaultChatModel is the generation model.
	DefaultChatModel = "gemini-2.0-flash-exp"
	// EmbedDimensions is the fixed embedding dimension for DefaultEmbedModel.
	EmbedDimensions = 768
)

// Client talks to the Gemini API. All calls go through a client-side
// rate limiter so a burst of requests cannot blow the API quota.
type Client struct {
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	http       *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithModels overrides the embedding and generation model names.
func WithModels(embed, chat string) Option {
	return func(c *Client) {
		if embed != "" {
			c.embedModel = embed
		}
		if chat != "" {
			c.chatModel = chat
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit sets requests-per-second and burst for the client limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New creates a Gemini client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		embedModel: DefaultEmbedModel,
		chatModel:  DefaultChatModel,
		http:       &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type embedRequest struct {
	Model    string  `json:"model"`
	Content  content `json:"content"`
	TaskType string  `json:"taskType,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Embed converts text into a fixed-dimension vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := embedRequest{
		Model:    "models/" + c.embedModel,
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: "RETRIEVAL_QUERY",
	}
	var out embedResponse
	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embedModel)
	if err := c.post(ctx, url, body, &out); err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(out.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty embedding in response")
	}
	return out.Embedding.Values, nil
}

// Generate sends a prompt to the generation model and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	var out generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.chatModel)
	if err := c.post(ctx, url, body, &out); err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: no candidates in response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) post(ctx context.Context, url string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, _ := json.Marshal(in)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
