package model

import "time"

// ActionType 跟进动作类型枚举
type ActionType string

const (
	ActionReminder      ActionType = "reminder"       // 提醒确认收货
	ActionReviewRequest ActionType = "review_request" // 求好评
	ActionFlowerRequest ActionType = "flower_request" // 求小红花
	ActionFlowerCollect ActionType = "flower_collect" // 收小红花
	ActionAutoReview    ActionType = "auto_review"    // 自动好评
)

// AllActionTypes 返回全部动作类型，顺序固定
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionReminder,
		ActionReviewRequest,
		ActionFlowerRequest,
		ActionFlowerCollect,
		ActionAutoReview,
	}
}

func (t ActionType) Valid() bool {
	switch t {
	case ActionReminder, ActionReviewRequest, ActionFlowerRequest, ActionFlowerCollect, ActionAutoReview:
		return true
	}
	return false
}

// FollowUpStatus 跟进记录状态枚举
type FollowUpStatus string

const (
	FollowUpStatusPending   FollowUpStatus = "pending"   // 待执行，唯一会被重新评估的状态
	FollowUpStatusCompleted FollowUpStatus = "completed" // 已完成（终态）
	FollowUpStatusCancelled FollowUpStatus = "cancelled" // 前置条件/排除规则不满足（终态）
	FollowUpStatusFailed    FollowUpStatus = "failed"    // 重试耗尽或被管理操作关闭（终态）
)

// Terminal 终态不允许回退
func (s FollowUpStatus) Terminal() bool {
	return s == FollowUpStatusCompleted || s == FollowUpStatusCancelled || s == FollowUpStatusFailed
}

// FollowUpRecord 跟进记录模型，一个订单在一种动作类型下最多一条
type FollowUpRecord struct {
	BaseModel
	CookieID     string         `gorm:"type:varchar(64);not null;index:idx_follow_up_records_due" json:"cookie_id"`
	ActionType   ActionType     `gorm:"type:varchar(32);not null;uniqueIndex:uidx_follow_up_records_order_type;index:idx_follow_up_records_due" json:"action_type"`
	OrderID      string         `gorm:"type:varchar(64);not null;uniqueIndex:uidx_follow_up_records_order_type" json:"order_id"`
	BuyerID      string         `gorm:"type:varchar(64);not null" json:"buyer_id"`
	ItemID       string         `gorm:"type:varchar(64)" json:"item_id,omitempty"`
	TriggerAt    time.Time      `gorm:"type:timestamptz;not null" json:"trigger_at"`
	NextDueAt    *time.Time     `gorm:"type:timestamptz;index:idx_follow_up_records_due" json:"next_due_at,omitempty"`
	AttemptCount int            `gorm:"type:smallint;not null;default:0" json:"attempt_count"`
	Status       FollowUpStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_follow_up_records_due" json:"status"`
	Note         string         `gorm:"type:varchar(255)" json:"note,omitempty"`
}

// TableName 指定表名
func (FollowUpRecord) TableName() string {
	return "follow_up_records"
}

// FollowUpAudit 跟进执行审计记录，每次成功发送一条
type FollowUpAudit struct {
	BaseModel
	EntryCode  string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"entry_code"`
	RecordID   int64      `gorm:"not null;index:idx_follow_up_audits_record" json:"record_id"`
	CookieID   string     `gorm:"type:varchar(64);not null" json:"cookie_id"`
	OrderID    string     `gorm:"type:varchar(64);not null;index:idx_follow_up_audits_order" json:"order_id"`
	ActionType ActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	Attempt    int        `gorm:"type:smallint;not null" json:"attempt"`
	TemplateID *int64     `gorm:"" json:"template_id,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	SentAt     time.Time  `gorm:"type:timestamptz;not null" json:"sent_at"`
}

// TableName 指定表名
func (FollowUpAudit) TableName() string {
	return "follow_up_audits"
}
