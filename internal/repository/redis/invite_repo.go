package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultInviteTTL = 15 * time.Minute
	InviteKeyPrefix  = "invite:code:community"
)

var (
	ErrInviteSaveFailed = errors.New("invite code save failed")
	ErrInviteNotFound   = errors.New("invite code not found")
)

// InviteCodeRepository 私有社区邀请码，带 TTL
type InviteCodeRepository struct{}

func (r *InviteCodeRepository) key(communityID uint64) string {
	return fmt.Sprintf("%s:%d", InviteKeyPrefix, communityID)
}

func (r *InviteCodeRepository) Save(ctx context.Context, communityID uint64, code string) error {
	if err := Client.Set(ctx, r.key(communityID), code, DefaultInviteTTL).Err(); err != nil {
		return ErrInviteSaveFailed
	}
	return nil
}

// Verify 校验邀请码，过期或不存在都算不通过
func (r *InviteCodeRepository) Verify(ctx context.Context, communityID uint64, code string) (bool, error) {
	val, err := Client.Get(ctx, r.key(communityID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == code && code != "", nil
}

func (r *InviteCodeRepository) Delete(ctx context.Context, communityID uint64) error {
	return Client.Del(ctx, r.key(communityID)).Err()
}
