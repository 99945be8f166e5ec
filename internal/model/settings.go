package model

import "strings"

// DelayUnit 延迟时间单位枚举
type DelayUnit string

const (
	DelayUnitSeconds DelayUnit = "seconds"
	DelayUnitMinutes DelayUnit = "minutes"
	DelayUnitHours   DelayUnit = "hours"
	DelayUnitDays    DelayUnit = "days"
)

// FollowUpSettings 每个账号每种动作类型一份设置，加载时整体校验一次
type FollowUpSettings struct {
	BaseModel
	CookieID   string     `gorm:"type:varchar(64);not null;uniqueIndex:uidx_follow_up_settings_account_type;index:idx_follow_up_settings_enabled" json:"cookie_id"`
	ActionType ActionType `gorm:"type:varchar(32);not null;uniqueIndex:uidx_follow_up_settings_account_type;index:idx_follow_up_settings_enabled" json:"action_type"`
	Enabled    bool       `gorm:"not null;default:false;index:idx_follow_up_settings_enabled" json:"enabled"`

	// 延迟设置：从触发时间到首次执行的间隔
	DelayValue int       `gorm:"not null;default:3" json:"delay_value"`
	DelayUnit  DelayUnit `gorm:"type:varchar(16);not null;default:'days'" json:"delay_unit"`

	// 多步升级设置，目前仅提醒收货使用
	MaxAttempts  int `gorm:"type:smallint;not null;default:3" json:"max_attempts"`
	IntervalDays int `gorm:"type:smallint;not null;default:2" json:"interval_days"`

	// 排除规则开关
	ExcludeBlacklist    bool `gorm:"not null;default:true" json:"exclude_blacklist"`
	ExcludeDispute      bool `gorm:"not null;default:true" json:"exclude_dispute"`
	ExcludeCompetitor   bool `gorm:"not null;default:true" json:"exclude_competitor"`
	ExcludeBadReview    bool `gorm:"not null;default:false" json:"exclude_bad_review"`
	ExcludeMediumReview bool `gorm:"not null;default:false" json:"exclude_medium_review"`

	// 敏感词，反斜杠分隔，命中买家评价内容时排除
	SensitiveWords string `gorm:"type:text" json:"sensitive_words,omitempty"`

	// 是否用 AI 回复引擎生成消息内容（仅求好评类），失败时回落到模板
	UseAIContent bool `gorm:"not null;default:false" json:"use_ai_content"`
}

// TableName 指定表名
func (FollowUpSettings) TableName() string {
	return "follow_up_settings"
}

// DefaultSettings 账号尚未配置时的默认设置，与列默认值保持一致
func DefaultSettings(cookieID string, actionType ActionType) *FollowUpSettings {
	return &FollowUpSettings{
		CookieID:          cookieID,
		ActionType:        actionType,
		Enabled:           false,
		DelayValue:        3,
		DelayUnit:         DelayUnitDays,
		MaxAttempts:       3,
		IntervalDays:      2,
		ExcludeBlacklist:  true,
		ExcludeDispute:    true,
		ExcludeCompetitor: true,
	}
}

// Validate 设置的整体校验，非法设置在加载时拒绝而不是每次访问时兜底
func (s *FollowUpSettings) Validate() bool {
	if !s.ActionType.Valid() {
		return false
	}
	if s.DelayValue < 0 {
		return false
	}
	if s.ActionType == ActionReminder {
		if s.MaxAttempts < 1 || s.IntervalDays < 1 {
			return false
		}
	}
	return true
}

// SensitiveWordList 拆分敏感词配置，空白项丢弃
func (s *FollowUpSettings) SensitiveWordList() []string {
	if s.SensitiveWords == "" {
		return nil
	}

	parts := strings.Split(s.SensitiveWords, `\`)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}
