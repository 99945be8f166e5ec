package model

import "time"

// OrderStatus 订单状态枚举，由平台连接层同步
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 已拍下未发货
	OrderStatusShipped   OrderStatus = "shipped"   // 已发货
	OrderStatusCompleted OrderStatus = "completed" // 买家已确认收货
	OrderStatusClosed    OrderStatus = "closed"    // 已关闭/退款
)

// Order 订单快照模型
type Order struct {
	BaseModel
	OrderID     string      `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	CookieID    string      `gorm:"type:varchar(64);not null;index:idx_orders_account_status" json:"cookie_id"`
	BuyerID     string      `gorm:"type:varchar(64);not null" json:"buyer_id"`
	ItemID      string      `gorm:"type:varchar(64)" json:"item_id,omitempty"`
	Status      OrderStatus `gorm:"type:varchar(16);not null;index:idx_orders_account_status" json:"status"`
	ShipAt      *time.Time  `gorm:"type:timestamptz" json:"ship_at,omitempty"`
	CompletedAt *time.Time  `gorm:"type:timestamptz" json:"completed_at,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// ReviewRating 买家评价等级枚举
type ReviewRating string

const (
	ReviewRatingGood   ReviewRating = "good"
	ReviewRatingMedium ReviewRating = "medium"
	ReviewRatingBad    ReviewRating = "bad"
)

// BuyerReview 买家给出的评价
type BuyerReview struct {
	BaseModel
	OrderID  string       `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	CookieID string       `gorm:"type:varchar(64);not null" json:"cookie_id"`
	BuyerID  string       `gorm:"type:varchar(64);not null" json:"buyer_id"`
	Rating   ReviewRating `gorm:"type:varchar(16);not null" json:"rating"`
	Content  string       `gorm:"type:text" json:"content,omitempty"`
}

// TableName 指定表名
func (BuyerReview) TableName() string {
	return "buyer_reviews"
}

// DisputeRecord 售后/投诉/纠纷记录
type DisputeRecord struct {
	BaseModel
	OrderID  string `gorm:"type:varchar(64);not null;index:idx_dispute_records_order" json:"order_id"`
	CookieID string `gorm:"type:varchar(64);not null" json:"cookie_id"`
	Kind     string `gorm:"type:varchar(32);not null" json:"kind"` // refund, complaint, dispute
	Detail   string `gorm:"type:text" json:"detail,omitempty"`
}

// TableName 指定表名
func (DisputeRecord) TableName() string {
	return "dispute_records"
}

// BuyerFlagKind 买家标记类型枚举
type BuyerFlagKind string

const (
	BuyerFlagBlacklist  BuyerFlagKind = "blacklist"  // 黑名单买家
	BuyerFlagCompetitor BuyerFlagKind = "competitor" // 同行买家
)

// BuyerFlag 卖家侧的买家标记
type BuyerFlag struct {
	BaseModel
	CookieID string        `gorm:"type:varchar(64);not null;uniqueIndex:uidx_buyer_flags_account_buyer_kind" json:"cookie_id"`
	BuyerID  string        `gorm:"type:varchar(64);not null;uniqueIndex:uidx_buyer_flags_account_buyer_kind" json:"buyer_id"`
	Kind     BuyerFlagKind `gorm:"type:varchar(16);not null;uniqueIndex:uidx_buyer_flags_account_buyer_kind" json:"kind"`
	Reason   string        `gorm:"type:varchar(255)" json:"reason,omitempty"`
}

// TableName 指定表名
func (BuyerFlag) TableName() string {
	return "buyer_flags"
}
