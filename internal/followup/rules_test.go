package followup

import (
	"context"
	"testing"
	"time"

	"SellerCare/internal/model"
)

func newShippedOrder(store *memStore, orderID string) *model.Order {
	order := &model.Order{
		OrderID:  orderID,
		CookieID: "acct-1",
		BuyerID:  "buyer-1",
		ItemID:   "item-1",
		Status:   model.OrderStatusShipped,
	}
	store.putOrder(order)
	return order
}

func newPendingRecord(t model.ActionType, orderID string) *model.FollowUpRecord {
	now := time.Now()
	rec := &model.FollowUpRecord{
		CookieID:   "acct-1",
		ActionType: t,
		OrderID:    orderID,
		BuyerID:    "buyer-1",
		ItemID:     "item-1",
		TriggerAt:  now,
		NextDueAt:  &now,
		Status:     model.FollowUpStatusPending,
	}
	return rec
}

func fullExclusionSettings() *model.FollowUpSettings {
	s := newTestSettings(model.ActionReviewRequest)
	s.ExcludeBlacklist = true
	s.ExcludeDispute = true
	s.ExcludeCompetitor = true
	s.ExcludeBadReview = true
	s.ExcludeMediumReview = true
	s.SensitiveWords = `差评\骗子\投诉`
	return s
}

func TestEvaluatePriorityOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	newShippedOrder(store, "order-1")
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")

	// 全部条件同时命中，按优先级只给出最靠前的原因
	store.putFlag("acct-1", "buyer-1", model.BuyerFlagBlacklist)
	store.putFlag("acct-1", "buyer-1", model.BuyerFlagCompetitor)
	store.putDispute("order-1")
	store.putReview(&model.BuyerReview{OrderID: "order-1", Rating: model.ReviewRatingBad, Content: "差评 骗子"})

	eval := NewRuleEvaluator(store)
	settings := fullExclusionSettings()

	verdict, err := eval.Evaluate(ctx, rec, settings)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Allowed || verdict.Reason != ReasonBlacklist {
		t.Fatalf("verdict = %+v, want blacklist exclusion", verdict)
	}

	// 关掉黑名单开关后轮到纠纷
	settings.ExcludeBlacklist = false
	verdict, _ = eval.Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonDispute {
		t.Fatalf("reason = %q, want dispute", verdict.Reason)
	}

	settings.ExcludeDispute = false
	verdict, _ = eval.Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonCompetitor {
		t.Fatalf("reason = %q, want competitor", verdict.Reason)
	}

	settings.ExcludeCompetitor = false
	verdict, _ = eval.Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonBadReview {
		t.Fatalf("reason = %q, want bad review", verdict.Reason)
	}

	settings.ExcludeBadReview = false
	verdict, _ = eval.Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonSensitiveWord {
		t.Fatalf("reason = %q, want sensitive word", verdict.Reason)
	}
}

func TestEvaluateDisabledTogglesSkipHits(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	newShippedOrder(store, "order-1")
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")

	store.putFlag("acct-1", "buyer-1", model.BuyerFlagBlacklist)
	store.putDispute("order-1")
	store.putReview(&model.BuyerReview{OrderID: "order-1", Rating: model.ReviewRatingBad, Content: "太差了"})

	// 所有开关关闭时命中也不排除
	settings := newTestSettings(model.ActionReviewRequest)
	verdict, err := NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed", verdict)
	}
}

func TestEvaluateMediumReview(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	newShippedOrder(store, "order-1")
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")
	store.putReview(&model.BuyerReview{OrderID: "order-1", Rating: model.ReviewRatingMedium, Content: "还行"})

	settings := newTestSettings(model.ActionReviewRequest)
	settings.ExcludeMediumReview = true
	verdict, _ := NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonMediumReview {
		t.Fatalf("reason = %q, want medium review", verdict.Reason)
	}

	// 好评不受评级开关影响
	store.putReview(&model.BuyerReview{OrderID: "order-1", Rating: model.ReviewRatingGood, Content: "很好"})
	settings.ExcludeBadReview = true
	verdict, _ = NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed for good review", verdict)
	}
}

func TestEvaluateSensitiveWordList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	newShippedOrder(store, "order-1")
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")
	store.putReview(&model.BuyerReview{OrderID: "order-1", Rating: model.ReviewRatingGood, Content: "东西不错但客服是骗子"})

	settings := newTestSettings(model.ActionReviewRequest)
	settings.SensitiveWords = `差评\骗子`
	verdict, _ := NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if verdict.Reason != ReasonSensitiveWord {
		t.Fatalf("reason = %q, want sensitive word", verdict.Reason)
	}

	// 没命中时放行
	settings.SensitiveWords = `假货`
	verdict, _ = NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed", verdict)
	}
}

func TestEvaluateNoReviewAllows(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	newShippedOrder(store, "order-1")
	rec := newPendingRecord(model.ActionReviewRequest, "order-1")

	settings := fullExclusionSettings()
	verdict, err := NewRuleEvaluator(store).Evaluate(ctx, rec, settings)
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed without review", verdict)
	}
}

func TestCheckPreconditionShippedTypes(t *testing.T) {
	ctx := context.Background()
	for _, actionType := range []model.ActionType{model.ActionReminder, model.ActionFlowerRequest} {
		store := newMemStore()
		eval := NewRuleEvaluator(store)
		rec := newPendingRecord(actionType, "order-1")

		// 订单不存在
		if _, reason, _ := eval.CheckPrecondition(ctx, rec); reason != "order not found" {
			t.Fatalf("%s: reason = %q, want order not found", actionType, reason)
		}

		// 未发货
		store.putOrder(&model.Order{OrderID: "order-1", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusPending})
		if _, reason, _ := eval.CheckPrecondition(ctx, rec); reason != "order not shipped" {
			t.Fatalf("%s: reason = %q, want order not shipped", actionType, reason)
		}

		// 已确认收货
		store.putOrder(&model.Order{OrderID: "order-1", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusCompleted})
		if _, reason, _ := eval.CheckPrecondition(ctx, rec); reason != "order already completed" {
			t.Fatalf("%s: reason = %q, want order already completed", actionType, reason)
		}

		// 已发货放行
		store.putOrder(&model.Order{OrderID: "order-1", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusShipped})
		order, reason, err := eval.CheckPrecondition(ctx, rec)
		if err != nil || reason != "" || order == nil {
			t.Fatalf("%s: order=%v reason=%q err=%v, want pass", actionType, order, reason, err)
		}
	}
}

func TestCheckPreconditionCompletedTypes(t *testing.T) {
	ctx := context.Background()
	for _, actionType := range []model.ActionType{model.ActionReviewRequest, model.ActionAutoReview} {
		store := newMemStore()
		eval := NewRuleEvaluator(store)
		rec := newPendingRecord(actionType, "order-1")

		store.putOrder(&model.Order{OrderID: "order-1", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusShipped})
		if _, reason, _ := eval.CheckPrecondition(ctx, rec); reason != "order not completed" {
			t.Fatalf("%s: reason = %q, want order not completed", actionType, reason)
		}

		store.putOrder(&model.Order{OrderID: "order-1", CookieID: "acct-1", BuyerID: "buyer-1", Status: model.OrderStatusCompleted})
		_, reason, err := eval.CheckPrecondition(ctx, rec)
		if err != nil || reason != "" {
			t.Fatalf("%s: reason=%q err=%v, want pass", actionType, reason, err)
		}
	}
}
