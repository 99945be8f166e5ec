package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"SellerCare/config"
	"SellerCare/internal/aireply"
	"SellerCare/internal/cache"
	"SellerCare/internal/followup"
	"SellerCare/internal/queue"
	"SellerCare/internal/repository"
	channelprovider "SellerCare/pkg/channel/provider"
	"SellerCare/pkg/logger"
	"SellerCare/pkg/snowflake"
	"SellerCare/storage"
	"SellerCare/storage/database"
)

// 无管理接口的纯引擎进程，与 server 分开部署时使用，
// Redis 租约保证同一账号同一动作类型只有一个实例在调度。
func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Engine received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for engine", zap.Error(err))
	}
	defer storage.Close()

	// 与 server 实例区分机器号，避免雪花 ID 冲突
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for engine", zap.Error(err))
	}

	if err := channelprovider.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize marketplace channel client", zap.Error(err))
	}

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

	supervisor := followup.NewSupervisor(followup.Options{
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
	})

	if err := supervisor.Start(ctx); err != nil {
		logger.Logger.Fatal("Failed to start follow-up engine", zap.Error(err))
	}

	consumer := queue.NewOrderEventConsumer(supervisor, orderRepo)
	consumer.Start()

	logger.Logger.Info("Engine service starting",
		zap.String("service", config.Cfg.ServiceName+"-engine"),
		zap.String("environment", config.Cfg.Environment),
	)

	<-ctx.Done()

	supervisor.Stop()
	logger.Logger.Info("Engine service shutting down gracefully")
}
