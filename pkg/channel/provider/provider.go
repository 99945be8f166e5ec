package provider

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SellerCare/config"
	"SellerCare/pkg/channel"
	"SellerCare/pkg/logger"
)

// 进程级的发送通道单例，进程启动时按配置选择实现；
// channel 包本身不感知配置，引擎和测试只依赖接口
var (
	channelClient channel.Client
	channelOnce   sync.Once
	channelErr    error
)

// Init 根据配置初始化发送通道客户端
func Init() error {
	channelOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.ChannelProvider {
		case "gateway":
			channelClient = channel.NewGatewayClient(
				cfg.ChannelGatewayBaseURL,
				cfg.ChannelGatewayToken,
				time.Duration(cfg.ChannelSendTimeoutSec)*time.Second,
				logger.Logger,
			)
		case "mock":
			channelClient = channel.NewMockClient()
		default:
			channelErr = fmt.Errorf("unsupported channel provider: %s", cfg.ChannelProvider)
		}

		if channelErr != nil {
			logger.Logger.Error("Failed to initialize channel client", zap.Error(channelErr))
			return
		}

		logger.Logger.Info("Channel client initialized successfully",
			zap.String("provider", cfg.ChannelProvider),
		)
	})

	return channelErr
}

func GetClient() channel.Client {
	if channelClient == nil {
		panic("channel client not initialized, call provider.Init() first")
	}
	return channelClient
}
