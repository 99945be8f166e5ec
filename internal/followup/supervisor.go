package followup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/model"
	"SellerCare/pkg/channel"
	"SellerCare/pkg/errors"
)

// Options 引擎装配参数，Content / Publisher / Lease 均可为空
type Options struct {
	Records   RecordStore
	Orders    OrderStore
	Templates TemplateStore
	Channel   channel.Client
	Content   ContentProvider
	Publisher EventPublisher
	Lease     TaskLease

	// TickInterval 调度轮询间隔，默认 60s
	TickInterval time.Duration
	// PaceInterval 同一轮相邻记录的发送间隔，默认 2s
	PaceInterval time.Duration
	// SendTimeout 单次发送超时，默认 30s
	SendTimeout time.Duration

	Logger *zap.Logger
}

type taskKey struct {
	cookieID   string
	actionType model.ActionType
}

type schedulerTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor 账号级跟进引擎
// 为每个 (启用账号, 动作类型) 维护一个调度循环，并承接订单生命周期事件
type Supervisor struct {
	opts     Options
	executor *Executor
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	tasks   map[taskKey]*schedulerTask
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

func NewSupervisor(opts Options) *Supervisor {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 60 * time.Second
	}
	if opts.PaceInterval < 0 {
		opts.PaceInterval = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	rules := NewRuleEvaluator(opts.Orders)
	return &Supervisor{
		opts:     opts,
		executor: NewExecutor(opts.Records, opts.Templates, rules, opts.Channel, opts),
		logger:   opts.Logger,
		tasks:    make(map[taskKey]*schedulerTask),
	}
}

// Start 为所有启用账号的所有动作类型拉起调度循环
func (sv *Supervisor) Start(ctx context.Context) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.running {
		return errors.EngineAlreadyRunning
	}
	sv.baseCtx, sv.baseCancel = context.WithCancel(context.WithoutCancel(ctx))
	sv.running = true

	for _, t := range model.AllActionTypes() {
		accounts, err := sv.opts.Records.EnabledAccounts(ctx, t)
		if err != nil {
			sv.logger.Error("查询启用账号失败", zap.String("action_type", string(t)), zap.Error(err))
			continue
		}
		for _, cookieID := range accounts {
			sv.startTaskLocked(taskKey{cookieID: cookieID, actionType: t})
		}
	}
	sv.logger.Info("跟进引擎已启动", zap.Int("task_count", len(sv.tasks)))
	return nil
}

// Stop 取消全部循环并等待退出，幂等
func (sv *Supervisor) Stop() {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if !sv.running {
		return
	}
	sv.baseCancel()
	for _, task := range sv.tasks {
		<-task.done
	}
	sv.tasks = make(map[taskKey]*schedulerTask)
	sv.running = false
	sv.logger.Info("跟进引擎已停止")
}

// StartForAccount 为单个账号拉起所有启用的动作类型循环
// 已有循环会被先停掉再重建，保证同键只有一个循环
func (sv *Supervisor) StartForAccount(ctx context.Context, cookieID string) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if !sv.running {
		return errors.EngineNotRunning
	}
	for _, t := range model.AllActionTypes() {
		settings, err := sv.opts.Records.Settings(ctx, cookieID, t)
		if err != nil {
			sv.logger.Error("读取跟进设置失败",
				zap.String("cookie_id", cookieID), zap.String("action_type", string(t)), zap.Error(err))
			continue
		}
		if settings == nil || !settings.Enabled {
			continue
		}
		sv.startTaskLocked(taskKey{cookieID: cookieID, actionType: t})
	}
	return nil
}

// StopForAccountAction 停掉账号下单个动作类型的循环并等待退出
// 某类型被关闭时调用，账号其余类型的循环不受影响
func (sv *Supervisor) StopForAccountAction(cookieID string, t model.ActionType) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	key := taskKey{cookieID: cookieID, actionType: t}
	task, ok := sv.tasks[key]
	if !ok {
		return
	}
	task.cancel()
	<-task.done
	delete(sv.tasks, key)
}

// StopForAccount 停掉单个账号的全部循环并等待退出
func (sv *Supervisor) StopForAccount(cookieID string) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	for key, task := range sv.tasks {
		if key.cookieID != cookieID {
			continue
		}
		task.cancel()
		<-task.done
		delete(sv.tasks, key)
	}
}

// startTaskLocked 需要持有 sv.mu；同键旧循环先停
func (sv *Supervisor) startTaskLocked(key taskKey) {
	if old, ok := sv.tasks[key]; ok {
		old.cancel()
		<-old.done
		delete(sv.tasks, key)
	}

	if sv.opts.Lease != nil {
		ok, err := sv.opts.Lease.Acquire(sv.baseCtx, key.cookieID, key.actionType)
		if err != nil {
			sv.logger.Error("调度租约获取失败",
				zap.String("cookie_id", key.cookieID), zap.String("action_type", string(key.actionType)), zap.Error(err))
			return
		}
		if !ok {
			sv.logger.Warn("调度租约被其它实例持有，跳过",
				zap.String("cookie_id", key.cookieID), zap.String("action_type", string(key.actionType)))
			return
		}
	}

	taskCtx, cancel := context.WithCancel(sv.baseCtx)
	task := &schedulerTask{cancel: cancel, done: make(chan struct{})}
	sv.tasks[key] = task

	sched := newScheduler(key.cookieID, key.actionType, sv.opts.Records, sv.executor,
		sv.opts.TickInterval, sv.opts.PaceInterval, sv.logger)
	go func() {
		defer close(task.done)
		if sv.opts.Lease != nil {
			go sv.opts.Lease.KeepAlive(taskCtx, key.cookieID, key.actionType)
		}
		sched.Run(taskCtx)
	}()
}

// OnOrderShipped 发货事件：为催收货与求小红花创建跟进记录
func (sv *Supervisor) OnOrderShipped(ctx context.Context, orderID, cookieID, buyerID, itemID string, shipAt time.Time) {
	if shipAt.IsZero() {
		shipAt = time.Now()
	}
	for _, t := range []model.ActionType{model.ActionReminder, model.ActionFlowerRequest} {
		sv.createRecord(ctx, t, orderID, cookieID, buyerID, itemID, shipAt)
	}
}

// OnOrderCompleted 确认收货事件：创建求好评与自动好评记录，
// 同时把该订单仍在等待的催收货/求小红花记录置为完成
func (sv *Supervisor) OnOrderCompleted(ctx context.Context, orderID, cookieID, buyerID, itemID string, completedAt time.Time) {
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	for _, t := range []model.ActionType{model.ActionReviewRequest, model.ActionAutoReview} {
		sv.createRecord(ctx, t, orderID, cookieID, buyerID, itemID, completedAt)
	}
	err := sv.opts.Records.CompleteForOrder(ctx, orderID,
		[]model.ActionType{model.ActionReminder, model.ActionFlowerRequest}, "order completed")
	if err != nil {
		sv.logger.Error("关闭发货侧跟进记录失败", zap.String("order_id", orderID), zap.Error(err))
	}
}

// OnFlowerReceived 收到小红花事件：创建回礼记录
func (sv *Supervisor) OnFlowerReceived(ctx context.Context, orderID, cookieID, buyerID, itemID string, receivedAt time.Time) {
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	sv.createRecord(ctx, model.ActionFlowerCollect, orderID, cookieID, buyerID, itemID, receivedAt)
}

// createRecord 事件入口的统一建单：设置停用则不建，(订单, 类型) 幂等
func (sv *Supervisor) createRecord(ctx context.Context, t model.ActionType, orderID, cookieID, buyerID, itemID string, triggerAt time.Time) {
	settings, err := sv.opts.Records.Settings(ctx, cookieID, t)
	if err != nil {
		sv.logger.Error("读取跟进设置失败",
			zap.String("cookie_id", cookieID), zap.String("action_type", string(t)), zap.Error(err))
		return
	}
	if settings == nil || !settings.Enabled {
		return
	}
	due, ok := NextDueTime(settings, triggerAt, 0)
	if !ok {
		return
	}
	created, err := sv.opts.Records.CreateRecord(ctx, &model.FollowUpRecord{
		CookieID:   cookieID,
		ActionType: t,
		OrderID:    orderID,
		BuyerID:    buyerID,
		ItemID:     itemID,
		TriggerAt:  triggerAt,
		NextDueAt:  &due,
		Status:     model.FollowUpStatusPending,
	})
	if err != nil {
		sv.logger.Error("创建跟进记录失败",
			zap.String("order_id", orderID), zap.String("action_type", string(t)), zap.Error(err))
		return
	}
	if !created {
		sv.logger.Debug("跟进记录已存在，跳过",
			zap.String("order_id", orderID), zap.String("action_type", string(t)))
		return
	}
	sv.logger.Info("跟进记录已创建",
		zap.String("order_id", orderID),
		zap.String("cookie_id", cookieID),
		zap.String("action_type", string(t)),
		zap.Time("next_due_at", due))
}

// ScanResult 补登记扫描统计
type ScanResult struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RescanShippedOrders 扫描账号的已发货订单，给漏掉事件的订单补建
// 催收货与求小红花记录；Total 按 (订单, 启用类型) 组合计数
func (sv *Supervisor) RescanShippedOrders(ctx context.Context, cookieID string) (ScanResult, error) {
	var result ScanResult
	orders, err := sv.opts.Orders.ShippedOrders(ctx, cookieID)
	if err != nil {
		return result, err
	}
	for _, t := range []model.ActionType{model.ActionReminder, model.ActionFlowerRequest} {
		settings, err := sv.opts.Records.Settings(ctx, cookieID, t)
		if err != nil {
			sv.logger.Error("读取跟进设置失败",
				zap.String("cookie_id", cookieID), zap.String("action_type", string(t)), zap.Error(err))
			continue
		}
		if settings == nil || !settings.Enabled {
			continue
		}
		for _, order := range orders {
			result.Total++
			triggerAt := order.ShipAt
			if triggerAt == nil || triggerAt.IsZero() {
				now := time.Now()
				triggerAt = &now
			}
			due, ok := NextDueTime(settings, *triggerAt, 0)
			if !ok {
				result.Skipped++
				continue
			}
			created, err := sv.opts.Records.CreateRecord(ctx, &model.FollowUpRecord{
				CookieID:   cookieID,
				ActionType: t,
				OrderID:    order.OrderID,
				BuyerID:    order.BuyerID,
				ItemID:     order.ItemID,
				TriggerAt:  *triggerAt,
				NextDueAt:  &due,
				Status:     model.FollowUpStatusPending,
			})
			if err != nil {
				sv.logger.Error("补建跟进记录失败",
					zap.String("order_id", order.OrderID), zap.String("action_type", string(t)), zap.Error(err))
				result.Skipped++
				continue
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
	}
	sv.logger.Info("已发货订单补登记完成",
		zap.String("cookie_id", cookieID),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// Running 引擎是否在运行
func (sv *Supervisor) Running() bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.running
}

// TaskCount 当前活跃的调度循环数
func (sv *Supervisor) TaskCount() int {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return len(sv.tasks)
}
