package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"SellerCare/config"
)

const (
	// ExchangeEvents 订单生命周期与跟进结果事件共用的 topic 交换机
	ExchangeEvents = "sellercare.events"

	QueueOrderShipped   = "sellercare.order.shipped"
	QueueOrderCompleted = "sellercare.order.completed"
	QueueFlowerReceived = "sellercare.flower.received"

	RoutingKeyOrderShipped     = "order.shipped"
	RoutingKeyOrderCompleted   = "order.completed"
	RoutingKeyFlowerReceived   = "flower.received"
	RoutingKeyFollowUpExecuted = "followup.executed"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			return
		}
		connErr = declareTopology()
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// declareTopology 声明交换机和事件队列，声明是幂等的
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ExchangeEvents, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	bindings := map[string]string{
		QueueOrderShipped:   RoutingKeyOrderShipped,
		QueueOrderCompleted: RoutingKeyOrderCompleted,
		QueueFlowerReceived: RoutingKeyFlowerReceived,
	}
	for queue, routingKey := range bindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(queue, routingKey, ExchangeEvents, false, nil); err != nil {
			return err
		}
	}

	return nil
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
