package queue

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"SellerCare/internal/cache"
	"SellerCare/internal/followup"
	"SellerCare/internal/model"
	"SellerCare/internal/repository"
	"SellerCare/pkg/logger"
	"SellerCare/storage/mq"
)

// OrderEventConsumer 消费平台连接层投递的订单生命周期事件
// 先维护本地订单副本，再把事件转给跟进引擎建单
type OrderEventConsumer struct {
	supervisor *followup.Supervisor
	orders     *repository.OrderRepository
}

func NewOrderEventConsumer(supervisor *followup.Supervisor, orders *repository.OrderRepository) *OrderEventConsumer {
	return &OrderEventConsumer{supervisor: supervisor, orders: orders}
}

// Start 为每个事件队列起一个消费者，阻塞消费放在各自 goroutine
func (c *OrderEventConsumer) Start() {
	consumers := []mq.ConsumeOptions{
		{Queue: mq.QueueOrderShipped, ConsumerTag: "followup-order-shipped", PrefetchCount: 16, Handler: c.handleOrderShipped},
		{Queue: mq.QueueOrderCompleted, ConsumerTag: "followup-order-completed", PrefetchCount: 16, Handler: c.handleOrderCompleted},
		{Queue: mq.QueueFlowerReceived, ConsumerTag: "followup-flower-received", PrefetchCount: 16, Handler: c.handleFlowerReceived},
	}
	for _, opts := range consumers {
		opts := opts
		go func() {
			if err := mq.Consume(opts); err != nil {
				logger.Logger.Error("消费者退出", zap.String("queue", opts.Queue), zap.Error(err))
			}
		}()
	}
}

func (c *OrderEventConsumer) handleOrderShipped(body []byte) error {
	var msg model.OrderShippedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Logger.Error("发货事件解析失败，丢弃", zap.Error(err))
		return nil // 脏消息重入队列也无法恢复
	}

	ctx, cancel := handlerContext()
	defer cancel()

	fresh, err := cache.MarkEventSeen(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	shipAt := parseEventTime(msg.ShipAt)
	err = c.orders.UpsertOrder(ctx, &model.Order{
		OrderID:  msg.OrderID,
		CookieID: msg.CookieID,
		BuyerID:  msg.BuyerID,
		ItemID:   msg.ItemID,
		Status:   model.OrderStatusShipped,
		ShipAt:   &shipAt,
	})
	if err != nil {
		return err
	}

	c.supervisor.OnOrderShipped(ctx, msg.OrderID, msg.CookieID, msg.BuyerID, msg.ItemID, shipAt)
	return nil
}

func (c *OrderEventConsumer) handleOrderCompleted(body []byte) error {
	var msg model.OrderCompletedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Logger.Error("收货事件解析失败，丢弃", zap.Error(err))
		return nil
	}

	ctx, cancel := handlerContext()
	defer cancel()

	fresh, err := cache.MarkEventSeen(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	completedAt := parseEventTime(msg.CompletedAt)
	err = c.orders.UpsertOrder(ctx, &model.Order{
		OrderID:     msg.OrderID,
		CookieID:    msg.CookieID,
		BuyerID:     msg.BuyerID,
		ItemID:      msg.ItemID,
		Status:      model.OrderStatusCompleted,
		CompletedAt: &completedAt,
	})
	if err != nil {
		return err
	}

	c.supervisor.OnOrderCompleted(ctx, msg.OrderID, msg.CookieID, msg.BuyerID, msg.ItemID, completedAt)
	return nil
}

func (c *OrderEventConsumer) handleFlowerReceived(body []byte) error {
	var msg model.FlowerReceivedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Logger.Error("收花事件解析失败，丢弃", zap.Error(err))
		return nil
	}

	ctx, cancel := handlerContext()
	defer cancel()

	fresh, err := cache.MarkEventSeen(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	c.supervisor.OnFlowerReceived(ctx, msg.OrderID, msg.CookieID, msg.BuyerID, "", parseEventTime(msg.SendAt))
	return nil
}

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func parseEventTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil || t.IsZero() {
		return time.Now()
	}
	return t
}
