package model

// 订单生命周期事件，由平台连接层投递到 MQ，引擎消费后建立跟进记录

// OrderShippedMessage 订单发货事件
type OrderShippedMessage struct {
	MessageID string `json:"message_id"`
	OrderID   string `json:"order_id"`
	CookieID  string `json:"cookie_id"`
	BuyerID   string `json:"buyer_id"`
	ItemID    string `json:"item_id,omitempty"`
	ShipAt    string `json:"ship_at"` // RFC3339
}

// OrderCompletedMessage 买家确认收货事件
type OrderCompletedMessage struct {
	MessageID   string `json:"message_id"`
	OrderID     string `json:"order_id"`
	CookieID    string `json:"cookie_id"`
	BuyerID     string `json:"buyer_id"`
	ItemID      string `json:"item_id,omitempty"`
	CompletedAt string `json:"completed_at"` // RFC3339
}

// FlowerReceivedMessage 买家送出小红花事件
type FlowerReceivedMessage struct {
	MessageID string `json:"message_id"`
	OrderID   string `json:"order_id"`
	CookieID  string `json:"cookie_id"`
	BuyerID   string `json:"buyer_id"`
	SendAt    string `json:"send_at"` // RFC3339
}

// FollowUpExecutedMessage 跟进动作执行完成后发布的通知事件
type FollowUpExecutedMessage struct {
	MessageID  string `json:"message_id"`
	RecordID   int64  `json:"record_id"`
	CookieID   string `json:"cookie_id"`
	OrderID    string `json:"order_id"`
	ActionType string `json:"action_type"`
	Attempt    int    `json:"attempt"`
	Status     string `json:"status"`
	ExecutedAt string `json:"executed_at"` // RFC3339
}
