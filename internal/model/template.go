package model

// MessageTemplate 按账号和动作类型配置的消息模板
// 提醒收货按升级步数取第 SortOrder 条，求好评/自动好评随机取一条
type MessageTemplate struct {
	BaseModel
	CookieID   string     `gorm:"type:varchar(64);not null;index:idx_message_templates_account_type" json:"cookie_id"`
	ActionType ActionType `gorm:"type:varchar(32);not null;index:idx_message_templates_account_type" json:"action_type"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	SortOrder  int        `gorm:"type:smallint;not null;default:0" json:"sort_order"`
}

// TableName 指定表名
func (MessageTemplate) TableName() string {
	return "message_templates"
}
