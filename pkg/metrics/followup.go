package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce sync.Once

	followUpExecuted metric.Int64Counter
	sendDuration     metric.Float64Histogram
)

// Init 注册跟进引擎指标，需在 OTel MeterProvider 就绪后调用
func Init() error {
	var initErr error
	metricsOnce.Do(func() {
		meter := otel.Meter("sellercare/followup")

		followUpExecuted, initErr = meter.Int64Counter(
			"followup_executed_total",
			metric.WithDescription("跟进记录处理次数，按动作类型和结果分类"),
		)
		if initErr != nil {
			return
		}
		sendDuration, initErr = meter.Float64Histogram(
			"followup_send_duration_seconds",
			metric.WithDescription("单次渠道发送耗时"),
			metric.WithUnit("s"),
		)
	})
	return initErr
}

// RecordFollowUpExecuted 未初始化时静默丢弃，引擎不依赖观测栈
func RecordFollowUpExecuted(ctx context.Context, actionType, outcome string) {
	if followUpExecuted == nil {
		return
	}
	followUpExecuted.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action_type", actionType),
			attribute.String("outcome", outcome),
		))
}

func RecordFollowUpSendDuration(ctx context.Context, actionType string, d time.Duration) {
	if sendDuration == nil {
		return
	}
	sendDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("action_type", actionType)))
}
