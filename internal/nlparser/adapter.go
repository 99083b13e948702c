// Package nlparser implements the HTTP seam to the external NL-parser
// collaborator spec.md §1 places out of scope: "chat messages and AI
// parsing of free-form text ... the core consumes a parsed intent
// struct, not raw prose." This package owns only the call and response
// decoding; the parsing itself happens in the external service.
package nlparser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/models"
)

// HTTPPoster posts a body to a URL and returns the response body.
type HTTPPoster interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Client adapts an HTTPPoster to ports.IntentParser.
type Client struct {
	poster  HTTPPoster
	baseURL string
	timeout time.Duration
}

// New builds a Client pointed at the external parser's base URL.
func New(poster HTTPPoster, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{poster: poster, baseURL: baseURL, timeout: timeout}
}

type parseRequest struct {
	Text        string    `json:"text"`
	RequesterID uuid.UUID `json:"requesterId"`
}

// Parse implements ports.IntentParser.
func (c *Client) Parse(ctx context.Context, text string, requesterID uuid.UUID) (models.ParsedIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(parseRequest{Text: text, RequesterID: requesterID})
	if err != nil {
		return models.ParsedIntent{}, fmt.Errorf("nlparser: encode request: %w", err)
	}

	resp, err := c.poster.Post(ctx, c.baseURL+"/parse", body)
	if err != nil {
		return models.ParsedIntent{}, fmt.Errorf("nlparser: call external parser: %w", err)
	}

	var intent models.ParsedIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return models.ParsedIntent{}, fmt.Errorf("nlparser: decode parsed intent: %w", err)
	}
	intent.RequesterID = requesterID
	return intent, nil
}

// DefaultHTTPPoster is the production HTTPPoster, a thin wrapper around
// *http.Client.
type DefaultHTTPPoster struct {
	HTTPClient *http.Client
}

// Post implements HTTPPoster.
func (p *DefaultHTTPPoster) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nlparser: external parser returned status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
