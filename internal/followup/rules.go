package followup

import (
	"context"
	"strings"

	"SellerCare/internal/model"
)

// 排除原因，写进记录备注和取消事件里
const (
	ReasonBlacklist     = "buyer blacklisted"
	ReasonDispute       = "order has dispute"
	ReasonCompetitor    = "buyer flagged as competitor"
	ReasonBadReview     = "buyer left bad review"
	ReasonMediumReview  = "buyer left medium review"
	ReasonSensitiveWord = "review contains sensitive word"
)

// RuleResult 排除规则的判定结果
type RuleResult struct {
	Allowed bool
	Reason  string
}

func allowed() RuleResult            { return RuleResult{Allowed: true} }
func excluded(reason string) RuleResult { return RuleResult{Reason: reason} }

// RuleEvaluator 按固定优先级跑排除规则：
// 黑名单 → 纠纷 → 同行 → 买家评级 → 敏感词，任一命中即短路
type RuleEvaluator struct {
	orders OrderStore
}

func NewRuleEvaluator(orders OrderStore) *RuleEvaluator {
	return &RuleEvaluator{orders: orders}
}

// Evaluate 判定记录是否允许执行
// 查询出错时返回 error，由调度方跳过本轮，不改变记录状态
func (e *RuleEvaluator) Evaluate(ctx context.Context, rec *model.FollowUpRecord, settings *model.FollowUpSettings) (RuleResult, error) {
	if settings.ExcludeBlacklist {
		hit, err := e.orders.IsBlacklisted(ctx, rec.CookieID, rec.BuyerID)
		if err != nil {
			return RuleResult{}, err
		}
		if hit {
			return excluded(ReasonBlacklist), nil
		}
	}
	if settings.ExcludeDispute {
		hit, err := e.orders.HasDispute(ctx, rec.OrderID)
		if err != nil {
			return RuleResult{}, err
		}
		if hit {
			return excluded(ReasonDispute), nil
		}
	}
	if settings.ExcludeCompetitor {
		hit, err := e.orders.IsCompetitor(ctx, rec.CookieID, rec.BuyerID)
		if err != nil {
			return RuleResult{}, err
		}
		if hit {
			return excluded(ReasonCompetitor), nil
		}
	}

	needReview := settings.ExcludeBadReview || settings.ExcludeMediumReview || settings.SensitiveWords != ""
	if !needReview {
		return allowed(), nil
	}
	review, err := e.orders.BuyerReview(ctx, rec.OrderID)
	if err != nil {
		return RuleResult{}, err
	}
	if review == nil {
		return allowed(), nil
	}
	if settings.ExcludeBadReview && review.Rating == model.ReviewRatingBad {
		return excluded(ReasonBadReview), nil
	}
	if settings.ExcludeMediumReview && review.Rating == model.ReviewRatingMedium {
		return excluded(ReasonMediumReview), nil
	}
	for _, word := range settings.SensitiveWordList() {
		if word != "" && strings.Contains(review.Content, word) {
			return excluded(ReasonSensitiveWord), nil
		}
	}
	return allowed(), nil
}

// CheckPrecondition 校验动作类型对订单状态的前置要求
// 不满足时返回取消原因；订单查询出错时返回 error 由本轮跳过
func (e *RuleEvaluator) CheckPrecondition(ctx context.Context, rec *model.FollowUpRecord) (*model.Order, string, error) {
	switch rec.ActionType {
	case model.ActionReminder, model.ActionFlowerRequest:
		order, err := e.orders.Order(ctx, rec.OrderID)
		if err != nil {
			return nil, "", err
		}
		if order == nil {
			return nil, "order not found", nil
		}
		switch order.Status {
		case model.OrderStatusShipped:
			return order, "", nil
		case model.OrderStatusCompleted:
			return nil, "order already completed", nil
		default:
			return nil, "order not shipped", nil
		}
	case model.ActionReviewRequest, model.ActionAutoReview:
		order, err := e.orders.Order(ctx, rec.OrderID)
		if err != nil {
			return nil, "", err
		}
		if order == nil {
			return nil, "order not found", nil
		}
		if order.Status != model.OrderStatusCompleted {
			return nil, "order not completed", nil
		}
		return order, "", nil
	case model.ActionFlowerCollect:
		// 小红花回礼由收花事件触发，记录本身即凭据
		order, err := e.orders.Order(ctx, rec.OrderID)
		if err != nil {
			return nil, "", err
		}
		if order == nil {
			return nil, "order not found", nil
		}
		return order, "", nil
	default:
		return nil, "unknown action type", nil
	}
}
