// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v3"

	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/notifier"
)

// requestTimeout bounds each delivery attempt; a slow endpoint must not
// stall the run.
const (
	requestTimeout  = 10 * time.Second
	deliveryRetries = 2
)

// Webhook posts run reports as JSON to a fixed URL.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a new Webhook notifier
func New(url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("webhook url is required"))
	}
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

func (w *Webhook) Name() string { return "webhook" }

// Notify POSTs the report, retrying briefly on failure. The returned
// error is core.ErrNotify; callers swallow it after logging.
func (w *Webhook) Notify(ctx context.Context, report notifier.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return core.WrapError(core.ErrNotify, fmt.Errorf("marshaling payload: %w", err))
	}

	op := func() error { return w.post(ctx, body) }
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), deliveryRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return core.WrapError(core.ErrNotify, err)
	}
	return nil
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}
