package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SellerCare/internal/model"
	"SellerCare/internal/service"
	"SellerCare/pkg/errors"
	"SellerCare/pkg/response"
)

type saveSettingsReq struct {
	Enabled             bool   `json:"enabled"`
	DelayValue          int    `json:"delay_value"`
	DelayUnit           string `json:"delay_unit"`
	MaxAttempts         int    `json:"max_attempts"`
	IntervalDays        int    `json:"interval_days"`
	ExcludeBlacklist    bool   `json:"exclude_blacklist"`
	ExcludeDispute      bool   `json:"exclude_dispute"`
	ExcludeCompetitor   bool   `json:"exclude_competitor"`
	ExcludeBadReview    bool   `json:"exclude_bad_review"`
	ExcludeMediumReview bool   `json:"exclude_medium_review"`
	SensitiveWords      string `json:"sensitive_words"`
	UseAIContent        bool   `json:"use_ai_content"`
}

type listRecordsReq struct {
	ActionType string `query:"action_type"`
	Status     string `query:"status"`
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
}

// GetFollowUpSettings 查询某账号某动作类型的跟进设置，未配置时返回默认值
// GET /v1/accounts/:cookie_id/follow-ups/:action_type/settings
func GetFollowUpSettings(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")
	actionType := model.ActionType(c.Param("action_type"))

	settings, err := service.FollowUp().GetSettings(ctx, cookieID, actionType)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, settings)
}

// SaveFollowUpSettings 保存跟进设置，引擎运行中且启用时会立即生效
// PUT /v1/accounts/:cookie_id/follow-ups/:action_type/settings
func SaveFollowUpSettings(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")
	actionType := model.ActionType(c.Param("action_type"))
	if !actionType.Valid() {
		response.Error(ctx, c, errors.FollowUpTypeInvalid)
		return
	}

	var req saveSettingsReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	settings := &model.FollowUpSettings{
		CookieID:            cookieID,
		ActionType:          actionType,
		Enabled:             req.Enabled,
		DelayValue:          req.DelayValue,
		DelayUnit:           model.DelayUnit(req.DelayUnit),
		MaxAttempts:         req.MaxAttempts,
		IntervalDays:        req.IntervalDays,
		ExcludeBlacklist:    req.ExcludeBlacklist,
		ExcludeDispute:      req.ExcludeDispute,
		ExcludeCompetitor:   req.ExcludeCompetitor,
		ExcludeBadReview:    req.ExcludeBadReview,
		ExcludeMediumReview: req.ExcludeMediumReview,
		SensitiveWords:      req.SensitiveWords,
		UseAIContent:        req.UseAIContent,
	}

	if err := service.FollowUp().SaveSettings(ctx, settings); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, settings)
}

// ListFollowUpRecords 分页查询某账号的跟进记录
// GET /v1/accounts/:cookie_id/follow-ups/records
func ListFollowUpRecords(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	var req listRecordsReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	records, total, err := service.FollowUp().ListRecords(
		ctx, cookieID,
		model.ActionType(req.ActionType),
		model.FollowUpStatus(req.Status),
		req.Page, req.PageSize,
	)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, records, map[string]interface{}{
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// ListFollowUpAudits 查询某条跟进记录的发送审计
// GET /v1/follow-ups/records/:record_id/audits
func ListFollowUpAudits(ctx context.Context, c *app.RequestContext) {
	recordID, err := parseInt64Param(c, "record_id")
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	audits, err := service.FollowUp().ListAudits(ctx, recordID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, audits)
}

// RescanShippedOrders 手动补扫某账号的已发货订单，补建漏掉的跟进记录
// POST /v1/accounts/:cookie_id/follow-ups/rescan
func RescanShippedOrders(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	result, err := service.FollowUp().RescanShippedOrders(ctx, cookieID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetEngineStatus 查询跟进引擎运行状态
// GET /v1/engine/status
func GetEngineStatus(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.FollowUp().EngineStatus(ctx))
}

// StartAccountFollowUps 启动某账号的跟进调度
// POST /v1/accounts/:cookie_id/follow-ups/start
func StartAccountFollowUps(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	if err := service.FollowUp().StartAccount(ctx, cookieID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// StopAccountFollowUps 停止某账号的跟进调度
// POST /v1/accounts/:cookie_id/follow-ups/stop
func StopAccountFollowUps(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	if err := service.FollowUp().StopAccount(ctx, cookieID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
