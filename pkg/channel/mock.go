package channel

import (
	"context"
	"errors"
	"sync"
)

type MockChatCall struct {
	CookieID    string
	ChatRef     string
	RecipientID string
	Text        string
}

type MockReviewCall struct {
	CookieID string
	OrderID  string
	Text     string
}

// MockClient 可配置的通道 mock，实现 Client 接口
type MockClient struct {
	mu          sync.Mutex
	ChatCalls   []MockChatCall
	ReviewCalls []MockReviewCall

	// Offline 置为 true 时 IsUsable 返回 false
	Offline bool
	// FailNext 置为 true 时，下一次发送返回 mock 错误并自动复位
	FailNext bool
	// RejectNext 置为 true 时，下一次发送返回 false（平台拒绝）并自动复位
	RejectNext bool
	// OnSend 每次发送前回调，可用于在测试中注入取消等行为
	OnSend func()
}

func NewMockClient() *MockClient {
	return &MockClient{
		ChatCalls:   make([]MockChatCall, 0),
		ReviewCalls: make([]MockReviewCall, 0),
	}
}

func (m *MockClient) IsUsable(ctx context.Context, cookieID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Offline
}

func (m *MockClient) SendChatMessage(ctx context.Context, cookieID, chatRef, recipientID, text string) (bool, error) {
	m.mu.Lock()
	onSend := m.OnSend
	m.ChatCalls = append(m.ChatCalls, MockChatCall{
		CookieID:    cookieID,
		ChatRef:     chatRef,
		RecipientID: recipientID,
		Text:        text,
	})
	failNext, rejectNext := m.FailNext, m.RejectNext
	m.FailNext, m.RejectNext = false, false
	m.mu.Unlock()

	if onSend != nil {
		onSend()
	}

	if failNext {
		return false, errors.New("mock channel send failure")
	}
	if rejectNext {
		return false, nil
	}
	return true, nil
}

func (m *MockClient) PostReview(ctx context.Context, cookieID, orderID, text string) (bool, error) {
	m.mu.Lock()
	onSend := m.OnSend
	m.ReviewCalls = append(m.ReviewCalls, MockReviewCall{
		CookieID: cookieID,
		OrderID:  orderID,
		Text:     text,
	})
	failNext, rejectNext := m.FailNext, m.RejectNext
	m.FailNext, m.RejectNext = false, false
	m.mu.Unlock()

	if onSend != nil {
		onSend()
	}

	if failNext {
		return false, errors.New("mock channel review failure")
	}
	if rejectNext {
		return false, nil
	}
	return true, nil
}

// SentCount 已记录的发送总数（聊天 + 评价）
func (m *MockClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls) + len(m.ReviewCalls)
}
