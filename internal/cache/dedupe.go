package cache

import (
	"context"
	"time"

	"SellerCare/storage/redis"
)

// 事件去重：MQ 消费是至少一次投递，同一 message_id 只处理一次
const (
	dedupePrefix = "dedupe"
	dedupeTTL    = 24 * time.Hour
)

// MarkEventSeen 返回 true 表示首次出现，应当处理；false 表示重复投递
func MarkEventSeen(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		// 没有消息号的事件无法去重，放行交给记录层幂等兜底
		return true, nil
	}
	fullkey := redis.Key(dedupePrefix, messageID)
	return redis.Client().SetNX(ctx, fullkey, 1, dedupeTTL).Result()
}
