package middleware

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"SellerCare/config"
	"SellerCare/pkg/errors"
	"SellerCare/pkg/logger"
	"SellerCare/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否启用堆栈追踪
	EnableStackTrace bool
	// 堆栈追踪级别（full, simple, none）
	StackTraceLevel string
	// 生产环境是否返回详细错误
	ExposeDetailsInProduction bool
	// 是否记录请求详情
	LogRequestDetails bool
	// 是否是生产环境
	IsProduction bool
}

// NewRecoverConfig 创建 recover 配置
func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:          true,
		StackTraceLevel:           "simple",
		ExposeDetailsInProduction: false,
		LogRequestDetails:         true,
		IsProduction:              config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = getStackTrace(cfg.StackTraceLevel)
	}

	logPanic(ctx, c, err, stack, cfg)
	writeErrorResponse(c, err, stack, cfg)
}

func logPanic(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte, cfg RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
	}

	if requestID := string(c.GetHeader("X-Request-Id")); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if operator, exists := GetOperatorID(ctx, c); exists {
		fields = append(fields, zap.String("operator", operator))
	}

	if cfg.LogRequestDetails {
		body := c.Request.Body()
		if len(body) > 0 && len(body) < 1024 {
			contentType := string(c.ContentType())
			if !strings.Contains(contentType, "multipart") {
				fields = append(fields, zap.String("body", string(body)))
			}
		}
	}

	if cfg.EnableStackTrace {
		fields = append(fields, zap.ByteString("stack", stack))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)
}

func writeErrorResponse(c *app.RequestContext, err interface{}, stack []byte, cfg RecoverConfig) {
	var errDef errors.Definition
	if cfg.IsProduction && !cfg.ExposeDetailsInProduction {
		// 生产环境返回友好提示
		errDef = errors.Definition{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "服务器内部错误，请稍后重试",
		}
	} else {
		errDef = errors.Definition{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: fmt.Sprintf("Internal error: %v", err),
		}
	}

	var details map[string]interface{}
	if !cfg.IsProduction || cfg.ExposeDetailsInProduction {
		details = map[string]interface{}{
			"panic":     fmt.Sprintf("%v", err),
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if cfg.EnableStackTrace {
			details["stack"] = string(stack)
		}
	}

	if details != nil {
		response.ErrorWithDetails(context.Background(), c, errDef, details)
	} else {
		response.Error(context.Background(), c, errDef)
	}
}

func getStackTrace(level string) []byte {
	var buf bytes.Buffer

	switch level {
	case "full":
		buf.Write(debug.Stack())
	case "simple":
		// 当前 goroutine 的调用栈，跳过 recover 相关帧
		buf.WriteString("goroutine panic:\n")
		for i := 3; ; i++ {
			pc, file, line, ok := runtime.Caller(i)
			if !ok {
				break
			}
			fn := runtime.FuncForPC(pc)
			if fn == nil {
				continue
			}
			buf.WriteString(fmt.Sprintf("  %s:%d\n    %s\n", file, line, fn.Name()))
		}
	}

	return buf.Bytes()
}
