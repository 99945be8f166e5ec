package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"SellerCare/internal/followup"
	"SellerCare/internal/model"
	"SellerCare/pkg/errors"
	"SellerCare/pkg/logger"
)

type FollowUpService struct{}

var (
	followUpService *FollowUpService
	followUpOnce    sync.Once
)

func FollowUp() *FollowUpService {
	followUpOnce.Do(func() {
		followUpService = &FollowUpService{}
	})

	return followUpService
}

// GetSettings 查询账号在某动作类型下的设置，未配置时返回带默认值的空设置
func (s *FollowUpService) GetSettings(ctx context.Context, cookieID string, actionType model.ActionType) (*model.FollowUpSettings, error) {
	if !actionType.Valid() {
		return nil, errors.FollowUpTypeInvalid
	}
	settings, err := deps.followUps.Settings(ctx, cookieID, actionType)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = model.DefaultSettings(cookieID, actionType)
	}
	return settings, nil
}

// SaveSettings 保存设置并让账号的调度循环立即生效
func (s *FollowUpService) SaveSettings(ctx context.Context, settings *model.FollowUpSettings) error {
	if !settings.ActionType.Valid() {
		return errors.FollowUpTypeInvalid
	}
	if !settings.Validate() {
		return errors.SettingsInvalid
	}
	if err := deps.followUps.UpsertSettings(ctx, settings); err != nil {
		return err
	}

	// 引擎在跑时重建该账号的循环，启停开关即时生效
	if deps.supervisor.Running() {
		if settings.Enabled {
			if err := deps.supervisor.StartForAccount(ctx, settings.CookieID); err != nil {
				logger.Logger.Warn("设置保存后重建调度循环失败",
					zap.String("cookie_id", settings.CookieID), zap.Error(err))
			}
		} else {
			// 关闭某类型时同步停掉它的循环，不留空转的租约
			deps.supervisor.StopForAccountAction(settings.CookieID, settings.ActionType)
		}
	}

	logger.Logger.Info("跟进设置已保存",
		zap.String("cookie_id", settings.CookieID),
		zap.String("action_type", string(settings.ActionType)),
		zap.Bool("enabled", settings.Enabled))
	return nil
}

// ListRecords 分页查询跟进记录
func (s *FollowUpService) ListRecords(ctx context.Context, cookieID string, actionType model.ActionType, status model.FollowUpStatus, page, pageSize int) ([]*model.FollowUpRecord, int64, error) {
	if actionType != "" && !actionType.Valid() {
		return nil, 0, errors.FollowUpTypeInvalid
	}
	return deps.followUps.Records(ctx, cookieID, actionType, status, page, pageSize)
}

// ListAudits 查询单条记录的执行审计
func (s *FollowUpService) ListAudits(ctx context.Context, recordID int64) ([]*model.FollowUpAudit, error) {
	return deps.followUps.Audits(ctx, recordID)
}

// RescanShippedOrders 为账号补登记已发货订单
func (s *FollowUpService) RescanShippedOrders(ctx context.Context, cookieID string) (followup.ScanResult, error) {
	account, err := deps.accounts.Account(ctx, cookieID)
	if err != nil {
		return followup.ScanResult{}, err
	}
	if account == nil {
		return followup.ScanResult{}, errors.AccountNotFound
	}
	return deps.supervisor.RescanShippedOrders(ctx, cookieID)
}

// EngineStatus 引擎运行状态
func (s *FollowUpService) EngineStatus(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"running":    deps.supervisor.Running(),
		"task_count": deps.supervisor.TaskCount(),
	}
}

// StartAccount 为账号拉起调度循环
func (s *FollowUpService) StartAccount(ctx context.Context, cookieID string) error {
	account, err := deps.accounts.Account(ctx, cookieID)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.AccountNotFound
	}
	return deps.supervisor.StartForAccount(ctx, cookieID)
}

// StopAccount 停掉账号的全部调度循环
func (s *FollowUpService) StopAccount(ctx context.Context, cookieID string) error {
	account, err := deps.accounts.Account(ctx, cookieID)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.AccountNotFound
	}
	deps.supervisor.StopForAccount(cookieID)
	return nil
}
