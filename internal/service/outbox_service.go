package service

import (
	"context"
	"encoding/json"
	"time"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/pkg"
	"Vibe_Tribe/internal/repository/mysql"
	"Vibe_Tribe/internal/repository/redis"

	"go.uber.org/zap"
)

type Sender func(ctx context.Context, ob *model.MembershipOutbox) error

// OutboxRelayer 从 outbox 表批量取成员变更事件投给 kafka
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
	log       *zap.Logger
}

func NewOutboxRelayer(sender Sender, log *zap.Logger) *OutboxRelayer {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: mysql.DB},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
		log:       log,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("outbox query failed", zap.Error(err))
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed",
				zap.Uint64("id", ob.ID), zap.Error(err))
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// KafkaSender 构造投递函数，key 按社区分区
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.MembershipOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.CommunityID), []byte(ob.Payload))
	}
}

// membershipEvent outbox payload 的消费侧结构
type membershipEvent struct {
	CommunityID uint64 `json:"community_id"`
	UserID      uint64 `json:"user_id"`
}

// InvalidationWorker 消费成员变更事件，把受影响社区所有活跃成员的
// scope 缓存批量失效。本人的缓存在写路径已同步删过，这里是给同圈
// 其他人的异步兜底。
type InvalidationWorker struct {
	consumer   *pkg.KafkaConsumer
	memberRepo *mysql.CommunityMemberRepository
	scopeCache *redis.ScopeCacheRepository
	log        *zap.Logger
}

func NewInvalidationWorker(consumer *pkg.KafkaConsumer, scopeCache *redis.ScopeCacheRepository, log *zap.Logger) *InvalidationWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvalidationWorker{
		consumer:   consumer,
		memberRepo: &mysql.CommunityMemberRepository{DB: mysql.DB},
		scopeCache: scopeCache,
		log:        log,
	}
}

func (w *InvalidationWorker) Run(ctx context.Context) {
	for {
		msg, err := w.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("membership event fetch failed", zap.Error(err))
			continue
		}

		var event membershipEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			w.log.Warn("bad membership event payload", zap.Error(err))
			continue
		}

		memberIDs, err := w.memberRepo.ActiveUserIDsForCommunities(ctx, []uint64{event.CommunityID})
		if err != nil {
			w.log.Error("member lookup failed",
				zap.Uint64("community", event.CommunityID), zap.Error(err))
			continue
		}
		// 发起人可能已退出社区，不在活跃成员里，补一条
		memberIDs = append(memberIDs, event.UserID)

		if err := w.scopeCache.InvalidateMany(ctx, memberIDs); err != nil {
			w.log.Error("scope invalidation failed",
				zap.Uint64("community", event.CommunityID), zap.Error(err))
		}
	}
}
