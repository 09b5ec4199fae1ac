package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// WebhookSink POSTs events as JSON to a single URL.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a webhook sink. client may be nil to use the
// default client; the dispatcher bounds each delivery with a context.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{url: url, client: client}
}

// Name implements Sink.
func (s *WebhookSink) Name() string { return "webhook" }

// Notify implements Sink.
func (s *WebhookSink) Notify(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransportProtocol, "encoding webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrTransportProtocol, "building webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrConnection, "delivering webhook")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.ErrTransportProtocol,
			fmt.Sprintf("webhook returned status %d", resp.StatusCode))
	}
	return nil
}

// LogSink writes events to the configured logger. Always registered so a
// bare deployment still records outcomes somewhere visible.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.New()
	}
	return &LogSink{logger: log}
}

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }

// Notify implements Sink.
func (s *LogSink) Notify(_ context.Context, event *Event) error {
	if event.Success {
		s.logger.Info("publish succeeded",
			"platform", event.Platform, "title", event.Title,
			"method", event.Method, "url", event.PostURL, "warning", event.Warning)
		return nil
	}
	s.logger.Error("publish failed",
		"platform", event.Platform, "title", event.Title,
		"error", event.Error, "need_login", event.NeedLogin)
	return nil
}
