package mysql

import (
	"context"

	"Vibe_Tribe/internal/model"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB *gorm.DB
}

func (r *ConversationRepository) Create(conv *model.Conversation) error {
	return r.DB.Create(conv).Error
}

func (r *ConversationRepository) FindByID(id uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.First(&conv, "id = ? AND status = 0", id).Error
	return &conv, err
}

// feedScope feed 的过滤条件，QueryFeed 与 CountFeed 共用。
// 创建者测试：社区会话看社区创建者是否在圈内，自由会话看作者；
// 权限闸门独立叠加：公开社区、viewer 是活跃成员、或无社区归属。
func (r *ConversationRepository) feedScope(ctx context.Context, q model.FeedQuery) *gorm.DB {
	tx := r.DB.WithContext(ctx).Model(&model.Conversation{}).
		Where("conversations.status = 0")

	tx = tx.Where(`(
		(conversations.community_id IS NOT NULL
			AND conversations.community_id IN (SELECT id FROM communities WHERE creator_id IN ?))
		OR (conversations.community_id IS NULL AND conversations.author_id IN ?)
	)`, q.CreatorIDs, q.CreatorIDs)

	tx = tx.Where(`(
		conversations.community_id IS NULL
		OR EXISTS (SELECT 1 FROM communities c
			WHERE c.id = conversations.community_id AND c.visibility = ?)
		OR EXISTS (SELECT 1 FROM community_members m
			WHERE m.community_id = conversations.community_id AND m.user_id = ? AND m.status = ?)
	)`, model.VisibilityPublic, q.ViewerID, model.MemberStatusActive)

	switch q.Filter {
	case "events":
		tx = tx.Where("conversations.event_id IS NOT NULL")
	case "communities":
		tx = tx.Where("conversations.community_id IS NOT NULL")
	}
	return tx
}

// QueryFeed 有回复的按回复时间排，没有的按创建时间排；id 做并列时的决胜键
func (r *ConversationRepository) QueryFeed(ctx context.Context, q model.FeedQuery) ([]model.Conversation, error) {
	var list []model.Conversation
	err := r.feedScope(ctx, q).
		Order("COALESCE(conversations.last_reply_at, conversations.created_at) DESC, conversations.id DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&list).Error
	return list, err
}

// CountFeed 同一套过滤条件的总数，分页用
func (r *ConversationRepository) CountFeed(ctx context.Context, q model.FeedQuery) (int64, error) {
	var count int64
	err := r.feedScope(ctx, q).Count(&count).Error
	return count, err
}

// AddReply 写回复并推进父会话的 last_reply_at
func (r *ConversationRepository) AddReply(ctx context.Context, reply *model.ConversationReply) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ? AND status = 0", reply.ConversationID).
			Update("last_reply_at", reply.CreatedAt).Error
	})
}

// DeleteWithPermission 带权限的一步删除：作者或社区管理员方可删除；幂等（已删除也不报错）
func (r *ConversationRepository) DeleteWithPermission(convID, operatorID uint64) (affected int64, err error) {
	tx := r.DB.Exec(`
		UPDATE conversations v
		JOIN (SELECT id, community_id, author_id, status FROM conversations WHERE id = ?) x ON x.id = v.id
		SET v.status = 1
		WHERE v.id = ? AND v.status = 0
		  AND (x.author_id = ? OR EXISTS (
		       SELECT 1 FROM community_members m
		       WHERE m.community_id = x.community_id AND m.user_id = ? AND m.role >= 1 AND m.status = ?
		  ))`,
		convID, convID, operatorID, operatorID, model.MemberStatusActive,
	)
	return tx.RowsAffected, tx.Error
}
