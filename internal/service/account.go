package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"SellerCare/internal/model"
	"SellerCare/pkg/errors"
	"SellerCare/pkg/logger"
)

type AccountService struct{}

var (
	accountService *AccountService
	accountOnce    sync.Once
)

func Account() *AccountService {
	accountOnce.Do(func() {
		accountService = &AccountService{}
	})

	return accountService
}

func (s *AccountService) List(ctx context.Context) ([]*model.MarketplaceAccount, error) {
	return deps.accounts.Accounts(ctx)
}

func (s *AccountService) Get(ctx context.Context, cookieID string) (*model.MarketplaceAccount, error) {
	account, err := deps.accounts.Account(ctx, cookieID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.AccountNotFound
	}
	return account, nil
}

// Save 登记或更新卖家账号
func (s *AccountService) Save(ctx context.Context, cookieID, remark string, enabled bool) (*model.MarketplaceAccount, error) {
	cookieID = strings.TrimSpace(cookieID)
	if cookieID == "" {
		return nil, errors.AccountNotFound
	}

	account := &model.MarketplaceAccount{
		CookieID: cookieID,
		Remark:   remark,
		Enabled:  enabled,
	}
	if err := deps.accounts.UpsertAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// SetEnabled 账号总开关，停用时立即拆掉调度循环
func (s *AccountService) SetEnabled(ctx context.Context, cookieID string, enabled bool) error {
	account, err := deps.accounts.Account(ctx, cookieID)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.AccountNotFound
	}

	if err := deps.accounts.SetAccountEnabled(ctx, cookieID, enabled); err != nil {
		return err
	}

	if deps.supervisor.Running() {
		if enabled {
			if err := deps.supervisor.StartForAccount(ctx, cookieID); err != nil {
				logger.Logger.Warn("账号启用后拉起调度循环失败",
					zap.String("cookie_id", cookieID), zap.Error(err))
			}
		} else {
			deps.supervisor.StopForAccount(cookieID)
		}
	}

	logger.Logger.Info("账号状态已更新", zap.String("cookie_id", cookieID), zap.Bool("enabled", enabled))
	return nil
}
