package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPPushSender posts FCM-style push payloads to a configured endpoint.
type HTTPPushSender struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

func NewHTTPPushSender(endpoint, serverKey string) (*HTTPPushSender, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("PUSH_ENDPOINT not set")
	}
	if serverKey == "" {
		return nil, fmt.Errorf("PUSH_SERVER_KEY not set")
	}

	return &HTTPPushSender{
		endpoint:   endpoint,
		serverKey:  serverKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *HTTPPushSender) SendPush(ctx context.Context, token, title, body string) (SendResult, error) {
	payload := map[string]interface{}{
		"to": token,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(buf))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "key="+p.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return SendResult{}, fmt.Errorf("push error %s: %s", resp.Status, string(respBody))
	}

	return SendResult{
		MessageID: fmt.Sprintf("push-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
