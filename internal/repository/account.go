package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"SellerCare/internal/model"
)

// AccountRepository 卖家账号的 gorm 实现
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Account(ctx context.Context, cookieID string) (*model.MarketplaceAccount, error) {
	var account model.MarketplaceAccount
	err := r.db.WithContext(ctx).Where("cookie_id = ?", cookieID).First(&account).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Accounts(ctx context.Context) ([]*model.MarketplaceAccount, error) {
	var accounts []*model.MarketplaceAccount
	err := r.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) UpsertAccount(ctx context.Context, account *model.MarketplaceAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cookie_id"}},
			UpdateAll: true,
		}).
		Create(account).Error
}

func (r *AccountRepository) SetAccountEnabled(ctx context.Context, cookieID string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&model.MarketplaceAccount{}).
		Where("cookie_id = ?", cookieID).
		Update("enabled", enabled).Error
}
