package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"SellerCare/internal/model"
)

// OrderRepository 订单与买家侧数据的 gorm 实现
// 订单、评价、纠纷、买家标记均由平台连接层同步进来，这里只读写本地副本
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Order(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ShippedOrders(ctx context.Context, cookieID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("cookie_id = ? AND status = ?", cookieID, model.OrderStatusShipped).
		Order("ship_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpsertOrder 同步订单快照，order_id 唯一
func (r *OrderRepository) UpsertOrder(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(order).Error
}

func (r *OrderRepository) IsBlacklisted(ctx context.Context, cookieID, buyerID string) (bool, error) {
	return r.hasFlag(ctx, cookieID, buyerID, model.BuyerFlagBlacklist)
}

func (r *OrderRepository) IsCompetitor(ctx context.Context, cookieID, buyerID string) (bool, error) {
	return r.hasFlag(ctx, cookieID, buyerID, model.BuyerFlagCompetitor)
}

func (r *OrderRepository) hasFlag(ctx context.Context, cookieID, buyerID string, kind model.BuyerFlagKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BuyerFlag{}).
		Where("cookie_id = ? AND buyer_id = ? AND kind = ?", cookieID, buyerID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *OrderRepository) HasDispute(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DisputeRecord{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *OrderRepository) BuyerReview(ctx context.Context, orderID string) (*model.BuyerReview, error) {
	var review model.BuyerReview
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&review).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
