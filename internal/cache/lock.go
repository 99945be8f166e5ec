package cache

import (
	"context"
	"time"

	"SellerCare/storage/redis"
)

// 通过 SetNX 实现分布式锁，多实例部署时防止重复调度
const (
	lockPrefix = "lock"
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func ExtendLock(ctx context.Context, key string, ttl time.Duration) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Expire(ctx, fullkey, ttl).Err()
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}
