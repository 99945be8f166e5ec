package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SellerCare/internal/model"
	"SellerCare/internal/service"
	"SellerCare/pkg/errors"
	"SellerCare/pkg/response"
)

type createTemplateReq struct {
	Content   string `json:"content" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type updateTemplateReq struct {
	Content   string `json:"content" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// ListTemplates 查询某账号某动作类型的消息模板，按排序返回
// GET /v1/accounts/:cookie_id/follow-ups/:action_type/templates
func ListTemplates(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")
	actionType := model.ActionType(c.Param("action_type"))

	templates, err := service.Template().List(ctx, cookieID, actionType)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, templates)
}

// CreateTemplate 新建消息模板
// POST /v1/accounts/:cookie_id/follow-ups/:action_type/templates
func CreateTemplate(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")
	actionType := model.ActionType(c.Param("action_type"))
	if !actionType.Valid() {
		response.Error(ctx, c, errors.FollowUpTypeInvalid)
		return
	}

	var req createTemplateReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	template, err := service.Template().Create(ctx, cookieID, actionType, req.Content, req.SortOrder)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, template)
}

// UpdateTemplate 更新消息模板内容和排序
// PUT /v1/templates/:template_id
func UpdateTemplate(ctx context.Context, c *app.RequestContext) {
	templateID, err := parseInt64Param(c, "template_id")
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	var req updateTemplateReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Template().Update(ctx, templateID, req.Content, req.SortOrder); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// DeleteTemplate 删除消息模板
// DELETE /v1/templates/:template_id
func DeleteTemplate(ctx context.Context, c *app.RequestContext) {
	templateID, err := parseInt64Param(c, "template_id")
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Template().Delete(ctx, templateID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
