package followup

import (
	"context"
	"time"

	"SellerCare/internal/model"
)

// 引擎只依赖这些窄接口，gorm 实现在 internal/repository，测试用内存假实现

// RecordStore 跟进记录与设置的读写
type RecordStore interface {
	// EnabledAccounts 启用了指定动作类型的账号列表
	EnabledAccounts(ctx context.Context, actionType model.ActionType) ([]string, error)

	// Settings 账号在指定动作类型下的设置，不存在时返回 nil
	Settings(ctx context.Context, cookieID string, actionType model.ActionType) (*model.FollowUpSettings, error)

	// CreateRecord 幂等创建，(order_id, action_type) 已存在时返回 false
	CreateRecord(ctx context.Context, rec *model.FollowUpRecord) (bool, error)

	// DueRecords 到期且仍为 pending 的记录，按到期时间先进先出
	DueRecords(ctx context.Context, cookieID string, actionType model.ActionType, now time.Time) ([]*model.FollowUpRecord, error)

	// UpdateRecord 写回执行结果，终态记录不会被覆盖
	UpdateRecord(ctx context.Context, recordID int64, status model.FollowUpStatus, attemptCount int, nextDueAt *time.Time, note string) error

	// CompleteForOrder 把订单在给定动作类型下仍 pending 的记录置为 completed
	CompleteForOrder(ctx context.Context, orderID string, types []model.ActionType, note string) error

	// AppendAudit 追加一条执行审计
	AppendAudit(ctx context.Context, audit *model.FollowUpAudit) error
}

// OrderStore 订单及买家侧数据查询
type OrderStore interface {
	Order(ctx context.Context, orderID string) (*model.Order, error)
	ShippedOrders(ctx context.Context, cookieID string) ([]*model.Order, error)
	IsBlacklisted(ctx context.Context, cookieID, buyerID string) (bool, error)
	IsCompetitor(ctx context.Context, cookieID, buyerID string) (bool, error)
	HasDispute(ctx context.Context, orderID string) (bool, error)
	// BuyerReview 买家评价，未评价时返回 nil
	BuyerReview(ctx context.Context, orderID string) (*model.BuyerReview, error)
}

// TemplateStore 消息模板查询
type TemplateStore interface {
	// Templates 按 sort_order 升序返回账号在指定动作类型下的模板
	Templates(ctx context.Context, cookieID string, actionType model.ActionType) ([]*model.MessageTemplate, error)
}

// ContentProvider 可选的消息内容提供方（AI 回复引擎）
// 生成失败时调用方回落到模板内容
type ContentProvider interface {
	GenerateReply(ctx context.Context, cookieID, chatRef, buyerID, seed string) (string, error)
}

// EventPublisher 可选的执行结果事件发布方
type EventPublisher interface {
	PublishFollowUpExecuted(msg model.FollowUpExecutedMessage) error
}

// TaskLease 跨进程的调度租约，防止两个引擎实例给同一账号跑重复循环
type TaskLease interface {
	Acquire(ctx context.Context, cookieID string, actionType model.ActionType) (bool, error)
	// KeepAlive 阻塞刷新租约直到 ctx 取消，取消后释放
	KeepAlive(ctx context.Context, cookieID string, actionType model.ActionType)
}
