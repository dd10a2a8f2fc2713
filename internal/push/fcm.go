// Package push sends notifications through the legacy FCM HTTP endpoint.
// Delivery is best effort: one attempt per token, no retries or backoff.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is the notification block of an FCM send request.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

// Client posts to the FCM HTTP v0 API. Nil-safe: an unconfigured client
// (empty server key) turns every send into a logged no-op, so push stays
// optional in development.
type Client struct {
	serverKey string
	endpoint  string
	http      *http.Client
}

func NewClient(serverKey, endpoint string) *Client {
	if serverKey == "" {
		return nil
	}
	return &Client{
		serverKey: serverKey,
		endpoint:  endpoint,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	To           string            `json:"to"`
	Notification Message           `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority"`
}

// SendToToken delivers one message to one device token.
func (c *Client) SendToToken(ctx context.Context, token string, msg Message, data map[string]string) error {
	if c == nil {
		log.Debug().Msg("fcm not configured; dropping send")
		return nil
	}

	body, err := json.Marshal(sendRequest{
		To:           token,
		Notification: msg,
		Data:         data,
		Priority:     "high",
	})
	if err != nil {
		return fmt.Errorf("marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "key="+c.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm send: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SendResult tallies one fan-out.
type SendResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SendToTokens fans one message out to many tokens, one attempt each.
func (c *Client) SendToTokens(ctx context.Context, tokens []string, msg Message, data map[string]string) SendResult {
	var result SendResult
	for _, token := range tokens {
		if err := c.SendToToken(ctx, token, msg, data); err != nil {
			log.Warn().Err(err).Msg("fcm token send failed")
			result.Failed++
			continue
		}
		result.Success++
	}
	return result
}
