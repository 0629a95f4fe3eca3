package tms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Client submits quotes to the TMS REST API. The access token is
// handed in by the surrounding app; the client does not manage token
// lifecycle.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given API base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewFromEnv reads TMS_BASE_URL and TMS_API_TOKEN. Returns nil when
// no base URL is configured, which disables submission.
func NewFromEnv() *Client {
	baseURL := os.Getenv("TMS_BASE_URL")
	if baseURL == "" {
		return nil
	}
	return New(baseURL, os.Getenv("TMS_API_TOKEN"))
}

// QuoteResult is the TMS response to a created quote.
type QuoteResult struct {
	ID          string `json:"id"`
	QuoteNumber string `json:"quote_number"`
	Status      string `json:"status"`
}

// CreateQuote POSTs the payload to the TMS create-quote endpoint. No
// retry is attempted; a failed submission is reported to the caller
// who re-triggers manually.
func (c *Client) CreateQuote(ctx context.Context, payload QuotePayload) (*QuoteResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode quote payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/quotes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("submit quote: TMS responded %d: %s", resp.StatusCode, snippet)
	}

	var result QuoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode TMS response: %w", err)
	}
	return &result, nil
}
