package aireply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client 调用 OpenAI 兼容接口生成求好评文案
// 生成失败由调用方回落到模板，这里只负责请求本身
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

const systemPrompt = "你是二手交易平台的卖家客服助理。买家刚确认收货，请基于给定的参考文案，" +
	"生成一条简短、友好、不超过 60 字的求好评消息。只输出消息本身，不要解释。"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateReply 实现 followup.ContentProvider
func (c *Client) GenerateReply(ctx context.Context, cookieID, chatRef, buyerID, seed string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "参考文案：" + seed},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai reply service returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("ai reply service error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ai reply service returned no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug("AI 文案生成成功",
		zap.String("cookie_id", cookieID),
		zap.String("chat_ref", chatRef),
		zap.Int("length", len(text)))
	return text, nil
}
