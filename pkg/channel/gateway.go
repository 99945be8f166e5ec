package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatewayClient 通过会话网关的 HTTP 接口转发消息
// 网关持有每个账号的平台长连接，本服务不直接触碰 websocket
type GatewayClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func NewGatewayClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *GatewayClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &GatewayClient{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type gatewayResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c *GatewayClient) IsUsable(ctx context.Context, cookieID string) bool {
	var result struct {
		Online bool `json:"online"`
	}

	if err := c.call(ctx, http.MethodGet, "/v1/sessions/"+cookieID+"/status", nil, &result); err != nil {
		c.logger.Warn("Channel gateway status check failed",
			zap.String("cookie_id", cookieID),
			zap.Error(err),
		)
		return false
	}

	return result.Online
}

func (c *GatewayClient) SendChatMessage(ctx context.Context, cookieID, chatRef, recipientID, text string) (bool, error) {
	payload := map[string]string{
		"chat_ref":     chatRef,
		"recipient_id": recipientID,
		"text":         text,
	}

	var result gatewayResult
	if err := c.call(ctx, http.MethodPost, "/v1/sessions/"+cookieID+"/messages", payload, &result); err != nil {
		return false, err
	}

	if !result.Success {
		return false, fmt.Errorf("gateway rejected chat message: %s", result.Message)
	}
	return true, nil
}

func (c *GatewayClient) PostReview(ctx context.Context, cookieID, orderID, text string) (bool, error) {
	payload := map[string]string{
		"order_id": orderID,
		"text":     text,
	}

	var result gatewayResult
	if err := c.call(ctx, http.MethodPost, "/v1/sessions/"+cookieID+"/reviews", payload, &result); err != nil {
		return false, err
	}

	if !result.Success {
		return false, fmt.Errorf("gateway rejected review post: %s", result.Message)
	}
	return true, nil
}

func (c *GatewayClient) call(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}

	return nil
}
