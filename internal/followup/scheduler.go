package followup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/model"
)

// Scheduler 单个 (账号, 动作类型) 的调度循环
// 每个 tick 重新读一次设置和到期记录，逐条执行并在记录间限速
type Scheduler struct {
	cookieID   string
	actionType model.ActionType

	records  RecordStore
	executor *Executor

	tick   time.Duration
	pace   time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func newScheduler(cookieID string, actionType model.ActionType, records RecordStore, executor *Executor, tick, pace time.Duration, logger *zap.Logger) *Scheduler {
	if tick <= 0 {
		tick = 60 * time.Second
	}
	if pace < 0 {
		pace = 0
	}
	return &Scheduler{
		cookieID:   cookieID,
		actionType: actionType,
		records:    records,
		executor:   executor,
		tick:       tick,
		pace:       pace,
		now:        time.Now,
		logger:     logger,
	}
}

// Run 阻塞运行直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("跟进调度启动",
		zap.String("cookie_id", s.cookieID),
		zap.String("action_type", string(s.actionType)),
		zap.Duration("tick", s.tick))

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("跟进调度停止",
				zap.String("cookie_id", s.cookieID),
				zap.String("action_type", string(s.actionType)))
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce 处理一轮到期记录
// 设置每轮重读，停用或非法的设置直接让本轮静默
func (s *Scheduler) runOnce(ctx context.Context) {
	settings, err := s.records.Settings(ctx, s.cookieID, s.actionType)
	if err != nil {
		s.logger.Error("读取跟进设置失败",
			zap.String("cookie_id", s.cookieID),
			zap.String("action_type", string(s.actionType)),
			zap.Error(err))
		return
	}
	if settings == nil || !settings.Enabled {
		return
	}
	if !settings.Validate() {
		s.logger.Warn("跟进设置非法，本轮跳过",
			zap.String("cookie_id", s.cookieID),
			zap.String("action_type", string(s.actionType)))
		return
	}

	due, err := s.records.DueRecords(ctx, s.cookieID, s.actionType, s.now())
	if err != nil {
		s.logger.Error("查询到期记录失败",
			zap.String("cookie_id", s.cookieID),
			zap.String("action_type", string(s.actionType)),
			zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Info("发现到期跟进记录",
		zap.String("cookie_id", s.cookieID),
		zap.String("action_type", string(s.actionType)),
		zap.Int("count", len(due)))

	for i, rec := range due {
		// 停止信号在每条记录开始前检查，执行中的发送允许收尾
		if ctx.Err() != nil {
			return
		}
		s.processRecord(ctx, rec, settings)

		if i < len(due)-1 && s.pace > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pace):
			}
		}
	}
}

// processRecord 单条记录的 panic 不影响同轮其它记录
func (s *Scheduler) processRecord(ctx context.Context, rec *model.FollowUpRecord, settings *model.FollowUpSettings) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("跟进记录执行 panic",
				zap.Int64("record_id", rec.ID),
				zap.String("order_id", rec.OrderID),
				zap.Any("panic", r))
		}
	}()
	s.executor.Process(ctx, rec, settings)
}
