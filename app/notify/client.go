package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client posts webhook payloads. POSTs are paced with a limiter so a large
// cycle does not trip the endpoint's rate limiting; the first call of a
// cycle goes out immediately.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(endpoint, userAgent string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (c *Client) Send(ctx context.Context, content string, embeds []Embed) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	payload := webhookPayload{
		Content: content,
		Embeds:  embeds,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}

	return nil
}
