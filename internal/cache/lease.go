package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/model"
	"SellerCare/pkg/logger"
)

// 调度租约：每个 (账号, 动作类型) 同一时刻只允许一个引擎实例跑循环
// 租约靠 TTL 兜底，持有方退出或崩溃后锁最多存活一个 TTL
const leaseTTL = 5 * time.Minute

type SchedulerLease struct{}

func NewSchedulerLease() *SchedulerLease {
	return &SchedulerLease{}
}

func leaseKey(cookieID string, actionType model.ActionType) string {
	return "followup:" + cookieID + ":" + string(actionType)
}

func (l *SchedulerLease) Acquire(ctx context.Context, cookieID string, actionType model.ActionType) (bool, error) {
	return TryLock(ctx, leaseKey(cookieID, actionType), leaseTTL)
}

// KeepAlive 周期续约直到 ctx 取消，取消后释放租约
func (l *SchedulerLease) KeepAlive(ctx context.Context, cookieID string, actionType model.ActionType) {
	key := leaseKey(cookieID, actionType)
	ticker := time.NewTicker(leaseTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := Unlock(releaseCtx, key); err != nil {
				logger.Logger.Warn("调度租约释放失败", zap.String("key", key), zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := ExtendLock(ctx, key, leaseTTL); err != nil {
				logger.Logger.Warn("调度租约续期失败", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
