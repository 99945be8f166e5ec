package followup

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/model"
	"SellerCare/pkg/channel"
	"SellerCare/pkg/metrics"
	"SellerCare/pkg/snowflake"
)

// Outcome 单条记录一次处理的结果
type Outcome string

const (
	// OutcomeCompleted 发送成功且无后续步骤
	OutcomeCompleted Outcome = "completed"
	// OutcomeRescheduled 发送成功，升级类型还有下一步
	OutcomeRescheduled Outcome = "rescheduled"
	// OutcomeCancelled 前置条件或排除规则不满足，记录终止
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeFailed 瞬时失败（渠道不可用 / 发送失败），记录保持 pending 等下轮重试
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped 配置或查询出错，本轮不动记录
	OutcomeSkipped Outcome = "skipped"
)

// Executor 单条跟进记录的执行器：
// 前置校验 → 排除规则 → 内容解析 → 渠道检查 → 发送 → 审计与状态写回
type Executor struct {
	records   RecordStore
	templates TemplateStore
	channel   channel.Client
	rules     *RuleEvaluator
	content   ContentProvider
	publisher EventPublisher

	sendTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewExecutor(records RecordStore, templates TemplateStore, rules *RuleEvaluator, ch channel.Client, opts Options) *Executor {
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Executor{
		records:     records,
		templates:   templates,
		channel:     ch,
		rules:       rules,
		content:     opts.Content,
		publisher:   opts.Publisher,
		sendTimeout: timeout,
		now:         time.Now,
		logger:      lg,
	}
}

// Process 处理一条到期记录，所有分支都会写日志与指标
func (x *Executor) Process(ctx context.Context, rec *model.FollowUpRecord, settings *model.FollowUpSettings) Outcome {
	order, cancelReason, err := x.rules.CheckPrecondition(ctx, rec)
	if err != nil {
		x.logger.Error("前置校验查询失败，本轮跳过",
			zap.Int64("record_id", rec.ID), zap.String("order_id", rec.OrderID), zap.Error(err))
		return OutcomeSkipped
	}
	if cancelReason != "" {
		return x.cancel(ctx, rec, cancelReason)
	}

	verdict, err := x.rules.Evaluate(ctx, rec, settings)
	if err != nil {
		x.logger.Error("排除规则查询失败，本轮跳过",
			zap.Int64("record_id", rec.ID), zap.String("order_id", rec.OrderID), zap.Error(err))
		return OutcomeSkipped
	}
	if !verdict.Allowed {
		return x.cancel(ctx, rec, verdict.Reason)
	}

	text, templateID, err := x.resolveContent(ctx, rec, settings, order)
	if err != nil {
		x.logger.Warn("内容解析失败，本轮跳过",
			zap.Int64("record_id", rec.ID),
			zap.String("cookie_id", rec.CookieID),
			zap.String("action_type", string(rec.ActionType)),
			zap.Error(err))
		return OutcomeSkipped
	}

	if !x.channel.IsUsable(ctx, rec.CookieID) {
		x.logger.Warn("账号会话不可用，等待下轮重试",
			zap.String("cookie_id", rec.CookieID), zap.String("order_id", rec.OrderID))
		return x.fail(ctx, rec, "channel unavailable")
	}

	sendCtx, cancelSend := context.WithTimeout(ctx, x.sendTimeout)
	defer cancelSend()

	spec := actionSpecs[rec.ActionType]
	start := x.now()
	var ok bool
	if spec.postsReview {
		ok, err = x.channel.PostReview(sendCtx, rec.CookieID, rec.OrderID, text)
	} else {
		chatRef := channel.ChatRef(rec.BuyerID, order.ItemID)
		ok, err = x.channel.SendChatMessage(sendCtx, rec.CookieID, chatRef, rec.BuyerID, text)
	}
	metrics.RecordFollowUpSendDuration(ctx, string(rec.ActionType), x.now().Sub(start))
	if err != nil {
		x.logger.Error("发送失败，等待下轮重试",
			zap.String("order_id", rec.OrderID), zap.String("action_type", string(rec.ActionType)), zap.Error(err))
		return x.fail(ctx, rec, fmt.Sprintf("send error: %v", err))
	}
	if !ok {
		x.logger.Warn("渠道拒绝发送，等待下轮重试",
			zap.String("order_id", rec.OrderID), zap.String("action_type", string(rec.ActionType)))
		return x.fail(ctx, rec, "send rejected")
	}

	sentAt := x.now()
	x.writeAudit(ctx, rec, templateID, text, sentAt)

	outcome := x.bookkeep(ctx, rec, settings, sentAt)
	metrics.RecordFollowUpExecuted(ctx, string(rec.ActionType), string(outcome))
	return outcome
}

// bookkeep 发送成功后的状态推进：升级类型排下一步，其余一次完成
func (x *Executor) bookkeep(ctx context.Context, rec *model.FollowUpRecord, settings *model.FollowUpSettings, sentAt time.Time) Outcome {
	newCount := rec.AttemptCount + 1
	if Escalating(rec.ActionType) {
		next, more := NextDueTime(settings, sentAt, newCount)
		if more {
			note := fmt.Sprintf("step %d sent", newCount)
			if err := x.records.UpdateRecord(ctx, rec.ID, model.FollowUpStatusPending, newCount, &next, note); err != nil {
				x.logger.Error("记录写回失败", zap.Int64("record_id", rec.ID), zap.Error(err))
			}
			x.publish(rec, model.FollowUpStatusPending, newCount)
			x.logger.Info("跟进已发送，等待下一步",
				zap.String("order_id", rec.OrderID),
				zap.String("action_type", string(rec.ActionType)),
				zap.Int("attempt", newCount),
				zap.Time("next_due_at", next))
			return OutcomeRescheduled
		}
		if err := x.records.UpdateRecord(ctx, rec.ID, model.FollowUpStatusCompleted, newCount, nil, "max attempts reached"); err != nil {
			x.logger.Error("记录写回失败", zap.Int64("record_id", rec.ID), zap.Error(err))
		}
		x.publish(rec, model.FollowUpStatusCompleted, newCount)
		x.logger.Info("跟进完成", zap.String("order_id", rec.OrderID), zap.String("action_type", string(rec.ActionType)), zap.Int("attempt", newCount))
		return OutcomeCompleted
	}

	if err := x.records.UpdateRecord(ctx, rec.ID, model.FollowUpStatusCompleted, newCount, nil, "sent"); err != nil {
		x.logger.Error("记录写回失败", zap.Int64("record_id", rec.ID), zap.Error(err))
	}
	x.publish(rec, model.FollowUpStatusCompleted, newCount)
	x.logger.Info("跟进完成", zap.String("order_id", rec.OrderID), zap.String("action_type", string(rec.ActionType)))
	return OutcomeCompleted
}

func (x *Executor) cancel(ctx context.Context, rec *model.FollowUpRecord, reason string) Outcome {
	if err := x.records.UpdateRecord(ctx, rec.ID, model.FollowUpStatusCancelled, rec.AttemptCount, nil, reason); err != nil {
		x.logger.Error("记录写回失败", zap.Int64("record_id", rec.ID), zap.Error(err))
	}
	x.publish(rec, model.FollowUpStatusCancelled, rec.AttemptCount)
	metrics.RecordFollowUpExecuted(ctx, string(rec.ActionType), string(OutcomeCancelled))
	x.logger.Info("跟进取消",
		zap.String("order_id", rec.OrderID),
		zap.String("action_type", string(rec.ActionType)),
		zap.String("reason", reason))
	return OutcomeCancelled
}

// fail 瞬时失败：状态保持 pending、到期时间不变，下轮重试
func (x *Executor) fail(ctx context.Context, rec *model.FollowUpRecord, reason string) Outcome {
	if err := x.records.UpdateRecord(ctx, rec.ID, model.FollowUpStatusPending, rec.AttemptCount, rec.NextDueAt, reason); err != nil {
		x.logger.Error("记录写回失败", zap.Int64("record_id", rec.ID), zap.Error(err))
	}
	metrics.RecordFollowUpExecuted(ctx, string(rec.ActionType), string(OutcomeFailed))
	return OutcomeFailed
}

// resolveContent 解析要发送的文案
// 账号模板优先，缺省时用内置兜底；求好评可走 AI 内容
func (x *Executor) resolveContent(ctx context.Context, rec *model.FollowUpRecord, settings *model.FollowUpSettings, order *model.Order) (string, *int64, error) {
	spec, knownType := actionSpecs[rec.ActionType]
	if !knownType {
		return "", nil, fmt.Errorf("no content source for action type %q", rec.ActionType)
	}

	templates, err := x.templates.Templates(ctx, rec.CookieID, rec.ActionType)
	if err != nil {
		return "", nil, err
	}

	var tpl *model.MessageTemplate
	switch spec.source {
	case sourceByStep:
		if len(templates) > 0 {
			idx := rec.AttemptCount
			if idx >= len(templates) {
				idx = len(templates) - 1
			}
			tpl = templates[idx]
		}
	case sourceRandom:
		if len(templates) > 0 {
			tpl = templates[rand.Intn(len(templates))]
		}
	case sourceFixed:
		if len(templates) > 0 {
			tpl = templates[0]
		}
	}

	if tpl != nil && tpl.Content != "" {
		text := tpl.Content
		if rec.ActionType == model.ActionReviewRequest && settings.UseAIContent && x.content != nil {
			text = x.aiContent(ctx, rec, order, text)
		}
		id := tpl.ID
		return text, &id, nil
	}

	if spec.requiresTemplate || len(spec.defaults) == 0 {
		return "", nil, fmt.Errorf("account %s has no %s template", rec.CookieID, rec.ActionType)
	}
	idx := 0
	if spec.source == sourceByStep {
		idx = rec.AttemptCount
		if idx >= len(spec.defaults) {
			idx = len(spec.defaults) - 1
		}
	}
	text := spec.defaults[idx]
	if rec.ActionType == model.ActionReviewRequest && settings.UseAIContent && x.content != nil {
		text = x.aiContent(ctx, rec, order, text)
	}
	return text, nil, nil
}

// aiContent 生成个性化文案，失败时回落到 seed
func (x *Executor) aiContent(ctx context.Context, rec *model.FollowUpRecord, order *model.Order, seed string) string {
	chatRef := channel.ChatRef(rec.BuyerID, order.ItemID)
	text, err := x.content.GenerateReply(ctx, rec.CookieID, chatRef, rec.BuyerID, seed)
	if err != nil || text == "" {
		x.logger.Warn("AI 内容生成失败，使用模板文案",
			zap.String("cookie_id", rec.CookieID), zap.String("order_id", rec.OrderID), zap.Error(err))
		return seed
	}
	return text
}

func (x *Executor) writeAudit(ctx context.Context, rec *model.FollowUpRecord, templateID *int64, content string, sentAt time.Time) {
	audit := &model.FollowUpAudit{
		RecordID:   rec.ID,
		CookieID:   rec.CookieID,
		OrderID:    rec.OrderID,
		ActionType: rec.ActionType,
		Attempt:    rec.AttemptCount + 1,
		TemplateID: templateID,
		Content:    content,
		SentAt:     sentAt,
	}
	if id, err := snowflake.NextID(); err == nil {
		audit.EntryCode = fmt.Sprintf("%d", id)
	} else {
		// 雪花未初始化时退化为记录号+次数，保持唯一
		audit.EntryCode = fmt.Sprintf("%d-%d", rec.ID, audit.Attempt)
	}
	if err := x.records.AppendAudit(ctx, audit); err != nil {
		x.logger.Error("审计写入失败", zap.Int64("record_id", rec.ID), zap.Error(err))
	}
}

func (x *Executor) publish(rec *model.FollowUpRecord, status model.FollowUpStatus, attempt int) {
	if x.publisher == nil {
		return
	}
	msg := model.FollowUpExecutedMessage{
		RecordID:   rec.ID,
		CookieID:   rec.CookieID,
		OrderID:    rec.OrderID,
		ActionType: string(rec.ActionType),
		Status:     string(status),
		Attempt:    attempt,
		ExecutedAt: x.now().Format(time.RFC3339),
	}
	if id, err := snowflake.NextID(); err == nil {
		msg.MessageID = fmt.Sprintf("%d", id)
	}
	if err := x.publisher.PublishFollowUpExecuted(msg); err != nil {
		x.logger.Warn("执行事件发布失败", zap.Int64("record_id", rec.ID), zap.Error(err))
	}
}
