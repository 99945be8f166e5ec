package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SellerCare/pkg/errors"
	"SellerCare/pkg/response"
	"SellerCare/pkg/token"
)

type refreshTokenReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshToken 用 refresh token 换新的 token 对
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req refreshTokenReq
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	operatorID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(operatorID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, tokenPairResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}
