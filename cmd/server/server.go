package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"SellerCare/config"
	"SellerCare/internal/aireply"
	"SellerCare/internal/cache"
	"SellerCare/internal/followup"
	"SellerCare/internal/middleware"
	"SellerCare/internal/queue"
	"SellerCare/internal/repository"
	"SellerCare/internal/router"
	"SellerCare/internal/service"
	channelprovider "SellerCare/pkg/channel/provider"
	"SellerCare/pkg/logger"
	"SellerCare/pkg/metrics"
	sdkotel "SellerCare/pkg/otel"
	"SellerCare/pkg/snowflake"
	"SellerCare/pkg/token"
	"SellerCare/storage"
	"SellerCare/storage/database"
)

func main() {
	// 日志部分
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 可观测性是可选的，未开启时 metrics 调用均为空操作
	if config.Cfg.OTelEnabled {
		shutdownOTel, err := sdkotel.InitOpenTelemetry(ctx, sdkotel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: "1.0.0",
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
			SampleRatio:    config.Cfg.OTelSampler,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.Init(); err != nil {
			logger.Logger.Fatal("Failed to initialize follow-up metrics", zap.Error(err))
		}
		if err := middleware.InitMetrics(otel.Meter("sellercare/http")); err != nil {
			logger.Logger.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
		}
	}

	// 渠道客户端（development 环境下为内存 mock）
	if err := channelprovider.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize marketplace channel client", zap.Error(err))
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token 在中间件前初始化，middleware 依赖 token

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	supervisor, orderRepo := buildSupervisor()
	service.Init(supervisor, database.DB())

	if err := supervisor.Start(ctx); err != nil {
		logger.Logger.Fatal("Failed to start follow-up engine", zap.Error(err))
	}
	defer supervisor.Stop()

	// 订单事件消费者
	consumer := queue.NewOrderEventConsumer(supervisor, orderRepo)
	consumer.Start()

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(server.WithHostPorts(addr))

	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

// buildSupervisor 组装跟进引擎：gorm 仓储 + 渠道客户端 + MQ 发布者 + Redis 租约
func buildSupervisor() (*followup.Supervisor, *repository.OrderRepository) {
	db := database.DB()
	followUpRepo := repository.NewFollowUpRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	var content followup.ContentProvider
	if config.Cfg.AIReplyEnabled {
		content = aireply.NewClient(
			config.Cfg.AIReplyBaseURL,
			config.Cfg.AIReplyAPIKey,
			config.Cfg.AIReplyModel,
			logger.Logger,
		)
	}

	return followup.NewSupervisor(followup.Options{
		Records:   followUpRepo,
		Orders:    orderRepo,
		Templates: templateRepo,
		Channel:   channelprovider.GetClient(),
		Content:   content,
		Publisher: queue.NewExecutedEventPublisher(),
		Lease:     cache.NewSchedulerLease(),

		TickInterval: time.Duration(config.Cfg.FollowUpTickSeconds) * time.Second,
		PaceInterval: time.Duration(config.Cfg.FollowUpPaceSeconds) * time.Second,
		SendTimeout:  time.Duration(config.Cfg.ChannelSendTimeoutSec) * time.Second,

		Logger: logger.Logger,
	}), orderRepo
}
