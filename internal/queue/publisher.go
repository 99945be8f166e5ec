package queue

import (
	"SellerCare/internal/model"
	"SellerCare/storage/mq"
)

// ExecutedEventPublisher 把跟进执行结果发回事件交换机，供下游（运营看板、对账）订阅
// 实现 followup.EventPublisher
type ExecutedEventPublisher struct{}

func NewExecutedEventPublisher() *ExecutedEventPublisher {
	return &ExecutedEventPublisher{}
}

func (p *ExecutedEventPublisher) PublishFollowUpExecuted(msg model.FollowUpExecutedMessage) error {
	return mq.PublishMessage(mq.ExchangeEvents, mq.RoutingKeyFollowUpExecuted, msg)
}
