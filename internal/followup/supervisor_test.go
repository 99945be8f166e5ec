package followup

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/model"
	"SellerCare/pkg/channel"
	"SellerCare/pkg/errors"
)

func newTestSupervisor(store *memStore, mock *channel.MockClient) *Supervisor {
	return NewSupervisor(Options{
		Records:      store,
		Orders:       store,
		Templates:    store,
		Channel:      mock,
		TickInterval: 20 * time.Millisecond,
		PaceInterval: 0,
	})
}

func TestOnOrderShippedCreatesRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReminder))
	store.putSettings(newTestSettings(model.ActionFlowerRequest))

	sv := newTestSupervisor(store, channel.NewMockClient())
	shipAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sv.OnOrderShipped(ctx, "order-1", "acct-1", "buyer-1", "item-1", shipAt)

	for _, actionType := range []model.ActionType{model.ActionReminder, model.ActionFlowerRequest} {
		rec := store.recordByOrder("order-1", actionType)
		if rec == nil {
			t.Fatalf("%s: record not created", actionType)
		}
		if !rec.TriggerAt.Equal(shipAt) {
			t.Fatalf("%s: trigger at = %v, want ship time", actionType, rec.TriggerAt)
		}
		// 到期时间 = 发货时间 + 首次延迟
		if want := shipAt.Add(3 * 24 * time.Hour); !rec.NextDueAt.Equal(want) {
			t.Fatalf("%s: due = %v, want %v", actionType, rec.NextDueAt, want)
		}
	}

	// 同一订单重复事件幂等
	sv.OnOrderShipped(ctx, "order-1", "acct-1", "buyer-1", "item-1", shipAt)
	count := 0
	store.mu.Lock()
	for range store.records {
		count++
	}
	store.mu.Unlock()
	if count != 2 {
		t.Fatalf("record count = %d, want 2 after duplicate event", count)
	}
}

func TestOnOrderShippedRespectsDisabledSettings(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	disabled := newTestSettings(model.ActionReminder)
	disabled.Enabled = false
	store.putSettings(disabled)
	store.putSettings(newTestSettings(model.ActionFlowerRequest))

	sv := newTestSupervisor(store, channel.NewMockClient())
	sv.OnOrderShipped(ctx, "order-1", "acct-1", "buyer-1", "item-1", time.Now())

	if store.recordByOrder("order-1", model.ActionReminder) != nil {
		t.Fatal("disabled reminder must not create a record")
	}
	if store.recordByOrder("order-1", model.ActionFlowerRequest) == nil {
		t.Fatal("enabled flower request must create a record")
	}
}

func TestOnOrderCompletedCreatesAndClosesRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for _, actionType := range model.AllActionTypes() {
		store.putSettings(newTestSettings(actionType))
	}

	sv := newTestSupervisor(store, channel.NewMockClient())
	shipAt := time.Now().Add(-48 * time.Hour)
	sv.OnOrderShipped(ctx, "order-1", "acct-1", "buyer-1", "item-1", shipAt)

	sv.OnOrderCompleted(ctx, "order-1", "acct-1", "buyer-1", "item-1", time.Now())

	// 确认收货后创建好评侧记录
	if store.recordByOrder("order-1", model.ActionReviewRequest) == nil {
		t.Fatal("review request record not created")
	}
	if store.recordByOrder("order-1", model.ActionAutoReview) == nil {
		t.Fatal("auto review record not created")
	}
	// 发货侧未执行的记录被置为完成
	for _, actionType := range []model.ActionType{model.ActionReminder, model.ActionFlowerRequest} {
		rec := store.recordByOrder("order-1", actionType)
		if rec.Status != model.FollowUpStatusCompleted || rec.Note != "order completed" {
			t.Fatalf("%s: record = %+v, want completed by order completion", actionType, rec)
		}
	}
}

func TestOnFlowerReceivedCreatesCollectRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionFlowerCollect))

	sv := newTestSupervisor(store, channel.NewMockClient())
	receivedAt := time.Now()
	sv.OnFlowerReceived(ctx, "order-1", "acct-1", "buyer-1", "item-1", receivedAt)

	rec := store.recordByOrder("order-1", model.ActionFlowerCollect)
	if rec == nil {
		t.Fatal("flower collect record not created")
	}
	if rec.Status != model.FollowUpStatusPending {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRescanShippedOrders(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReminder))

	shipAt := time.Now().Add(-24 * time.Hour)
	for _, orderID := range []string{"order-1", "order-2", "order-3"} {
		store.putOrder(&model.Order{
			OrderID: orderID, CookieID: "acct-1", BuyerID: "buyer-1",
			Status: model.OrderStatusShipped, ShipAt: &shipAt,
		})
	}
	// 已关闭的订单不参与扫描
	store.putOrder(&model.Order{OrderID: "order-4", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusClosed})

	sv := newTestSupervisor(store, channel.NewMockClient())

	// order-2 已有记录，补登记时跳过
	sv.OnOrderShipped(ctx, "order-2", "acct-1", "buyer-1", "item-1", shipAt)

	result, err := sv.RescanShippedOrders(ctx, "acct-1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 3 || result.Created != 2 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want total 3 created 2 skipped 1", result)
	}

	// 再扫一遍全部跳过
	result, _ = sv.RescanShippedOrders(ctx, "acct-1")
	if result.Created != 0 || result.Skipped != 3 {
		t.Fatalf("second scan = %+v, want all skipped", result)
	}
}

func TestSupervisorLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReviewRequest))

	sv := newTestSupervisor(store, channel.NewMockClient())

	if err := sv.StartForAccount(ctx, "acct-1"); err != errors.EngineNotRunning {
		t.Fatalf("err = %v, want engine not running", err)
	}

	if err := sv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !sv.Running() || sv.TaskCount() != 1 {
		t.Fatalf("running = %v tasks = %d, want running with 1 task", sv.Running(), sv.TaskCount())
	}

	if err := sv.Start(ctx); err != errors.EngineAlreadyRunning {
		t.Fatalf("err = %v, want engine already running", err)
	}

	sv.Stop()
	if sv.Running() || sv.TaskCount() != 0 {
		t.Fatalf("running = %v tasks = %d after stop", sv.Running(), sv.TaskCount())
	}
	// Stop 幂等
	sv.Stop()
}

func TestStartForAccountReplacesExistingLoop(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReviewRequest))
	store.putSettings(newTestSettings(model.ActionAutoReview))

	sv := newTestSupervisor(store, channel.NewMockClient())
	if err := sv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sv.Stop()

	if sv.TaskCount() != 2 {
		t.Fatalf("tasks = %d, want 2", sv.TaskCount())
	}
	// 重复拉起同一账号不会叠加循环
	if err := sv.StartForAccount(ctx, "acct-1"); err != nil {
		t.Fatal(err)
	}
	if sv.TaskCount() != 2 {
		t.Fatalf("tasks = %d after restart, want 2", sv.TaskCount())
	}

	sv.StopForAccount("acct-1")
	if sv.TaskCount() != 0 {
		t.Fatalf("tasks = %d after account stop, want 0", sv.TaskCount())
	}
}

func TestStopForAccountActionStopsSingleLoop(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReviewRequest))
	store.putSettings(newTestSettings(model.ActionAutoReview))

	sv := newTestSupervisor(store, channel.NewMockClient())
	if err := sv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sv.Stop()

	if sv.TaskCount() != 2 {
		t.Fatalf("tasks = %d, want 2", sv.TaskCount())
	}

	// 关掉一个类型只停它自己的循环
	sv.StopForAccountAction("acct-1", model.ActionReviewRequest)
	if sv.TaskCount() != 1 {
		t.Fatalf("tasks = %d after single stop, want 1", sv.TaskCount())
	}

	// 不存在的键是空操作
	sv.StopForAccountAction("acct-1", model.ActionReviewRequest)
	sv.StopForAccountAction("acct-2", model.ActionAutoReview)
	if sv.TaskCount() != 1 {
		t.Fatalf("tasks = %d after no-op stops, want 1", sv.TaskCount())
	}
}

func TestSupervisorExecutesDueRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReviewRequest))
	completedOrder(store, "order-1")

	due := time.Now().Add(-time.Minute)
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")
	rec.NextDueAt = &due
	store.CreateRecord(ctx, rec)

	mock := channel.NewMockClient()
	sent := make(chan struct{}, 1)
	mock.OnSend = func() {
		select {
		case sent <- struct{}{}:
		default:
		}
	}

	sv := newTestSupervisor(store, mock)
	if err := sv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sv.Stop()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("due record was not executed")
	}
	waitFor(t, func() bool {
		return store.record(rec.ID).Status == model.FollowUpStatusCompleted
	})
}

func TestSchedulerPacingBetweenRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	completedOrder(store, "order-1")
	completedOrder(store, "order-2")

	settings := newTestSettings(model.ActionReviewRequest)
	store.putSettings(settings)

	due := time.Now().Add(-time.Minute)
	for _, orderID := range []string{"order-1", "order-2"} {
		rec := newPendingRecord(model.ActionReviewRequest, orderID)
		rec.NextDueAt = &due
		store.CreateRecord(ctx, rec)
	}

	var mu sync.Mutex
	var sendTimes []time.Time
	mock := channel.NewMockClient()
	mock.OnSend = func() {
		mu.Lock()
		sendTimes = append(sendTimes, time.Now())
		mu.Unlock()
	}

	pace := 80 * time.Millisecond
	exec := newTestExecutor(store, mock, Options{})
	sched := newScheduler("acct-1", model.ActionReviewRequest, store, exec, time.Minute, pace, zap.NewNop())
	sched.runOnce(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(sendTimes) != 2 {
		t.Fatalf("sends = %d, want 2", len(sendTimes))
	}
	if gap := sendTimes[1].Sub(sendTimes[0]); gap < pace {
		t.Fatalf("gap = %v, want at least %v", gap, pace)
	}
}

func TestSchedulerStopsBetweenRecords(t *testing.T) {
	store := newMemStore()
	completedOrder(store, "order-1")
	completedOrder(store, "order-2")
	store.putSettings(newTestSettings(model.ActionReviewRequest))

	due := time.Now().Add(-time.Minute)
	for _, orderID := range []string{"order-1", "order-2"} {
		rec := newPendingRecord(model.ActionReviewRequest, orderID)
		rec.NextDueAt = &due
		store.CreateRecord(context.Background(), rec)
	}

	ctx, cancel := context.WithCancel(context.Background())
	mock := channel.NewMockClient()
	// 第一条发送途中触发停止，发送本身允许收尾
	mock.OnSend = func() { cancel() }

	exec := newTestExecutor(store, mock, Options{})
	sched := newScheduler("acct-1", model.ActionReviewRequest, store, exec, time.Minute, 0, zap.NewNop())
	sched.runOnce(ctx)

	if mock.SentCount() != 1 {
		t.Fatalf("sends = %d, want 1: no new record may start after stop", mock.SentCount())
	}
	// 已发出的那条正常完成
	firstCompleted := 0
	for _, orderID := range []string{"order-1", "order-2"} {
		rec := store.recordByOrder(orderID, model.ActionReviewRequest)
		if rec.Status == model.FollowUpStatusCompleted {
			firstCompleted++
		}
	}
	if firstCompleted != 1 {
		t.Fatalf("completed = %d, want exactly 1", firstCompleted)
	}
}

func TestSchedulerSkipsTickOnQueryError(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putSettings(newTestSettings(model.ActionReviewRequest))
	completedOrder(store, "order-1")

	due := time.Now().Add(-time.Minute)
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")
	rec.NextDueAt = &due
	store.CreateRecord(ctx, rec)

	mock := channel.NewMockClient()
	exec := newTestExecutor(store, mock, Options{})
	sched := newScheduler("acct-1", model.ActionReviewRequest, store, exec, time.Minute, 0, zap.NewNop())

	store.failDue = true
	sched.runOnce(ctx)
	if mock.SentCount() != 0 {
		t.Fatal("query error must skip the tick")
	}

	// 故障恢复后下一轮正常执行
	store.failDue = false
	sched.runOnce(ctx)
	if mock.SentCount() != 1 {
		t.Fatalf("sends = %d, want 1 after recovery", mock.SentCount())
	}
}

func TestSchedulerInvalidSettingsFailClosed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	completedOrder(store, "order-1")

	bad := newTestSettings(model.ActionReviewRequest)
	bad.DelayValue = -1
	store.putSettings(bad)

	due := time.Now().Add(-time.Minute)
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")
	rec.NextDueAt = &due
	store.CreateRecord(ctx, rec)

	mock := channel.NewMockClient()
	exec := newTestExecutor(store, mock, Options{})
	sched := newScheduler("acct-1", model.ActionReviewRequest, store, exec, time.Minute, 0, zap.NewNop())
	sched.runOnce(ctx)

	if mock.SentCount() != 0 {
		t.Fatal("invalid settings must suppress execution")
	}
	if got := store.record(rec.ID); got.Status != model.FollowUpStatusPending {
		t.Fatalf("record = %+v, want pending", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
