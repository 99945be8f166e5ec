package model

// MarketplaceAccount 受管的卖家账号，cookie_id 是平台侧的会话标识
type MarketplaceAccount struct {
	BaseModel
	CookieID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"cookie_id"`
	Remark   string `gorm:"type:varchar(128)" json:"remark,omitempty"`
	Enabled  bool   `gorm:"not null;default:true" json:"enabled"`
}

// TableName 指定表名
func (MarketplaceAccount) TableName() string {
	return "marketplace_accounts"
}
