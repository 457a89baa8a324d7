// Package narrate is the LLM narration collaborator. The core never imports
// it; consumers hand it alert and anomaly data as prompt material and must
// degrade gracefully when it is unavailable.
package narrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrServiceUnavailable is returned when no credential is configured or the
// remote model cannot be reached. It is a typed failure, never a crash.
var ErrServiceUnavailable = errors.New("narration service unavailable")

type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, model string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Model    string `json:"model"`
	Contents string `json:"contents"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Narrate sends the prompt to the remote model and returns the generated
// text. Every failure mode maps to ErrServiceUnavailable.
func (c *Client) Narrate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: no API key configured", ErrServiceUnavailable)
	}

	body, err := json.Marshal(generateRequest{Model: c.model, Contents: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrServiceUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrServiceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: remote returned %s", ErrServiceUnavailable, resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrServiceUnavailable, err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
	}

	return decoded.Text, nil
}
