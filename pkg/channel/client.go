package channel

import (
	"context"
)

// Client 发送通道客户端接口
// 通道背后是账号的平台在线实例（会话层），本服务只消费它的能力
type Client interface {
	// IsUsable 账号的在线实例是否可用（会话存在且底层连接未关闭）
	IsUsable(ctx context.Context, cookieID string) bool

	// SendChatMessage 通过账号会话向买家发送聊天消息
	// chatRef: 会话标识（buyer_id 和 item_id 派生）
	// 返回 false 或 error 都视为发送失败
	SendChatMessage(ctx context.Context, cookieID, chatRef, recipientID, text string) (bool, error)

	// PostReview 以卖家身份给订单发布评价，仅自动好评使用
	PostReview(ctx context.Context, cookieID, orderID, text string) (bool, error)
}

// ChatRef 构造会话标识，与平台连接层保持一致
func ChatRef(buyerID, itemID string) string {
	return buyerID + "_" + itemID
}
