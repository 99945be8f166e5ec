package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"SellerCare/internal/handler"
	"SellerCare/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	{
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 托管账号路由
	accounts := v1.Group("/accounts")
	accounts.Use(middleware.AuthMiddleware())
	{
		accounts.GET("", handler.ListAccounts)
		accounts.GET("/:cookie_id", handler.GetAccount)
		accounts.PUT("/:cookie_id", handler.SaveAccount)
		accounts.PUT("/:cookie_id/enabled", handler.SetAccountEnabled)

		// 每账号的跟进配置和调度操作
		accounts.GET("/:cookie_id/follow-ups/records", handler.ListFollowUpRecords)
		accounts.POST("/:cookie_id/follow-ups/rescan", handler.RescanShippedOrders)
		accounts.POST("/:cookie_id/follow-ups/start", handler.StartAccountFollowUps)
		accounts.POST("/:cookie_id/follow-ups/stop", handler.StopAccountFollowUps)

		accounts.GET("/:cookie_id/follow-ups/:action_type/settings", handler.GetFollowUpSettings)
		accounts.PUT("/:cookie_id/follow-ups/:action_type/settings", handler.SaveFollowUpSettings)
		accounts.GET("/:cookie_id/follow-ups/:action_type/templates", handler.ListTemplates)
		accounts.POST("/:cookie_id/follow-ups/:action_type/templates", handler.CreateTemplate)
	}

	// 跟进记录与模板的全局路由
	followUps := v1.Group("/follow-ups")
	followUps.Use(middleware.AuthMiddleware())
	{
		followUps.GET("/records/:record_id/audits", handler.ListFollowUpAudits)
	}

	templates := v1.Group("/templates")
	templates.Use(middleware.AuthMiddleware())
	{
		templates.PUT("/:template_id", handler.UpdateTemplate)
		templates.DELETE("/:template_id", handler.DeleteTemplate)
	}

	// 引擎状态路由
	engine := v1.Group("/engine")
	engine.Use(middleware.AuthMiddleware())
	{
		engine.GET("/status", handler.GetEngineStatus)
	}
}
