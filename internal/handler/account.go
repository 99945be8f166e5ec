package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SellerCare/internal/service"
	"SellerCare/pkg/response"
)

type saveAccountReq struct {
	Remark  string `json:"remark"`
	Enabled bool   `json:"enabled"`
}

type setAccountEnabledReq struct {
	Enabled bool `json:"enabled"`
}

// ListAccounts 查询全部托管账号
// GET /v1/accounts
func ListAccounts(ctx context.Context, c *app.RequestContext) {
	accounts, err := service.Account().List(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, accounts)
}

// GetAccount 查询单个托管账号
// GET /v1/accounts/:cookie_id
func GetAccount(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	account, err := service.Account().Get(ctx, cookieID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, account)
}

// SaveAccount 新建或更新托管账号
// PUT /v1/accounts/:cookie_id
func SaveAccount(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	var req saveAccountReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	account, err := service.Account().Save(ctx, cookieID, req.Remark, req.Enabled)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, account)
}

// SetAccountEnabled 启停托管账号，引擎运行中时同步调整调度任务
// PUT /v1/accounts/:cookie_id/enabled
func SetAccountEnabled(ctx context.Context, c *app.RequestContext) {
	cookieID := c.Param("cookie_id")

	var req setAccountEnabledReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Account().SetEnabled(ctx, cookieID, req.Enabled); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
