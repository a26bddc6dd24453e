package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WebhookOptions configures the HTTP webhook messenger
type WebhookOptions struct {
	// BaseURL of the messaging provider, e.g. "https://chat.example.com"
	BaseURL string
	// Token is sent as a bearer token when non-empty
	Token      string
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Webhook sends messages to a chat provider's batched webhook endpoint.
// Retries are limited to transport errors and 5xx/429 responses; a 4xx
// response is a permanent failure for the whole batch.
type Webhook struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewWebhook creates a webhook messenger
func NewWebhook(opts WebhookOptions) *Webhook {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	return &Webhook{
		baseURL:    baseURL,
		token:      opts.Token,
		httpClient: httpClient,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

type sendRequest struct {
	ChatIDs []string `json:"chatIds"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	Failed map[string]string `json:"failed,omitempty"`
}

// Send posts the message to every address in one batched call
func (w *Webhook) Send(ctx context.Context, addresses []string, message string) (Result, error) {
	if w.baseURL == "" {
		return Result{}, fmt.Errorf("webhook base url is not configured")
	}
	if len(addresses) == 0 {
		return Result{}, nil
	}

	body, err := json.Marshal(sendRequest{ChatIDs: addresses, Text: message})
	if err != nil {
		return Result{}, fmt.Errorf("encode send request: %w", err)
	}

	var lastErr error
	delay := w.baseDelay
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > w.maxDelay {
				delay = w.maxDelay
			}
		}

		result, retry, err := w.post(ctx, body, addresses)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return Result{}, lastErr
}

func (w *Webhook) post(ctx context.Context, body []byte, addresses []string) (Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/messages/batch", bytes.NewReader(body))
	if err != nil {
		return Result{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Result{}, true, fmt.Errorf("post message batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return Result{}, true, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, false, fmt.Errorf("provider rejected batch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && err != io.EOF {
		return Result{}, false, fmt.Errorf("decode send response: %w", err)
	}

	result := Result{Failed: parsed.Failed}
	for _, addr := range addresses {
		if _, failed := parsed.Failed[addr]; !failed {
			result.Delivered = append(result.Delivered, addr)
		}
	}
	return result, false, nil
}
