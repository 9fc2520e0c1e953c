package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crebit/ramp-service/internal/logging"
)

// Slack posts operator alerts to a Slack incoming webhook. Delivery is
// fire-and-forget: failures are logged and swallowed, never propagated to
// the payment path. A client with an empty URL is a no-op.
type Slack struct {
	webhookURL string
	http       *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Post(ctx context.Context, format string, args ...any) {
	if s == nil || s.webhookURL == "" {
		return
	}
	log := logging.FromContext(ctx)

	text := fmt.Sprintf(format, args...)
	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		log.Error("slack: marshal payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Error("slack: build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		log.Warn("slack: post failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		log.Warn("slack: non-200 response", "status", resp.StatusCode, "body", string(respBody))
	}
}
