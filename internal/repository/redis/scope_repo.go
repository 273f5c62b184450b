package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultScopeTTL = 60 * time.Second
	ScopeKeyPrefix  = "circle:scope" // 每个 viewer 一份解析结果
)

// ScopeCacheRepository 按 viewer 缓存圈子解析结果（JSON），短 TTL + 写侧失效。
// 解析器本身保持纯函数，缓存只是外面的一层。
type ScopeCacheRepository struct {
	ttl time.Duration
}

func NewScopeCacheRepository(ttl time.Duration) *ScopeCacheRepository {
	if ttl <= 0 {
		ttl = DefaultScopeTTL
	}
	return &ScopeCacheRepository{ttl: ttl}
}

func (r *ScopeCacheRepository) key(viewerID uint64) string {
	return fmt.Sprintf("%s:%d", ScopeKeyPrefix, viewerID)
}

// Get 命中时返回 (payload, true)；未命中不算错误
func (r *ScopeCacheRepository) Get(ctx context.Context, viewerID uint64) (string, bool, error) {
	val, err := Client.Get(ctx, r.key(viewerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *ScopeCacheRepository) Set(ctx context.Context, viewerID uint64, payload string) error {
	return Client.Set(ctx, r.key(viewerID), payload, r.ttl).Err()
}

// Invalidate 成员变更后同步删除本人的缓存，保证自己的读后写一致
func (r *ScopeCacheRepository) Invalidate(ctx context.Context, viewerID uint64) error {
	return Client.Del(ctx, r.key(viewerID)).Err()
}

// InvalidateMany 批量失效，消费成员变更事件时对同社区成员广播
func (r *ScopeCacheRepository) InvalidateMany(ctx context.Context, viewerIDs []uint64) error {
	if len(viewerIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(viewerIDs))
	for _, id := range viewerIDs {
		keys = append(keys, r.key(id))
	}
	return Client.Del(ctx, keys...).Err()
}
