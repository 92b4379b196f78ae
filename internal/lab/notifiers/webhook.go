package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/daniacca/genelab/internal/lab"
)

// WebhookNotifier POSTs events as JSON to an external progress or
// leaderboard service.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	headers map[string]string
	events  map[lab.EventType]bool
}

func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader sets a header sent with every request
func (wn *WebhookNotifier) SetHeader(key, value string) {
	if wn.headers == nil {
		wn.headers = make(map[string]string)
	}
	wn.headers[key] = value
}

// SetEvents restricts delivery to the given event types. With no types
// every event is delivered.
func (wn *WebhookNotifier) SetEvents(types ...lab.EventType) {
	if len(types) == 0 {
		wn.events = nil
		return
	}
	wn.events = make(map[lab.EventType]bool, len(types))
	for _, t := range types {
		wn.events[t] = true
	}
}

func (wn *WebhookNotifier) ID() string { return wn.id }

func (wn *WebhookNotifier) Type() string { return "webhook" }

func (wn *WebhookNotifier) URL() string { return wn.url }

func (wn *WebhookNotifier) Notify(ctx context.Context, event lab.Event) error {
	if wn.events != nil && !wn.events[event.Type] {
		return nil
	}

	jsonData, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (wn *WebhookNotifier) Close() error {
	return nil
}
