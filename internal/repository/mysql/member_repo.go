package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Vibe_Tribe/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 加入社区（幂等）。从未加入或曾退出时返回 changed=true，并写 outbox。
func (r *CommunityMemberRepository) Join(ctx context.Context, communityID, userID uint64, role int) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.CommunityMember
		// select for update 避免竞争
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("community_id=? AND user_id=?", communityID, userID).First(&rel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rel = model.CommunityMember{
					CommunityID: communityID,
					UserID:      userID,
					Role:        role,
					Status:      model.MemberStatusActive,
				}
				if err = tx.Create(&rel).Error; err != nil {
					return err
				}
				changed = true
				return insertOutbox(tx, "join", communityID, userID)
			}
			return err
		}
		if rel.Status == model.MemberStatusBanned {
			return errors.New("banned from community")
		}
		// 幂等：已是活跃成员则视为成功
		if rel.Status == model.MemberStatusActive {
			changed = false
			return nil
		}
		if err := tx.Model(&model.CommunityMember{}).
			Where("id=? AND status=?", rel.ID, model.MemberStatusLeft).
			Update("status", model.MemberStatusActive).Error; err != nil {
			return err
		}
		changed = true
		return insertOutbox(tx, "join", communityID, userID)
	})
	return changed, err
}

// Leave 退出社区（幂等）。活跃转退出时返回 changed=true，并写 outbox。
func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.CommunityMember
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("community_id=? AND user_id=?", communityID, userID).First(&rel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				changed = false
				return nil
			}
			return err
		}
		if rel.Status != model.MemberStatusActive {
			changed = false
			return nil
		}
		if err := tx.Model(&model.CommunityMember{}).
			Where("id=? AND status=?", rel.ID, model.MemberStatusActive).
			Update("status", model.MemberStatusLeft).Error; err != nil {
			return err
		}
		changed = true
		return insertOutbox(tx, "leave", communityID, userID)
	})
	return changed, err
}

// IsActiveMember 是否活跃成员
func (r *CommunityMemberRepository) IsActiveMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, model.MemberStatusActive).
		Count(&count).Error
	return count > 0, err
}

// IsAdmin 活跃且 role>=1
func (r *CommunityMemberRepository) IsAdmin(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND status = ? AND role >= 1",
			communityID, userID, model.MemberStatusActive).
		Count(&count).Error
	return count > 0, err
}

// ActiveCommunityIDsForUser 某用户的活跃社区
func (r *CommunityMemberRepository) ActiveCommunityIDsForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("user_id = ? AND status = ?", userID, model.MemberStatusActive).
		Pluck("community_id", &ids).Error
	return ids, err
}

// ActiveCommunityIDsForUsers 一批用户的活跃社区（去重）
func (r *CommunityMemberRepository) ActiveCommunityIDsForUsers(ctx context.Context, userIDs []uint64) ([]uint64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Distinct("community_id").
		Where("user_id IN ? AND status = ?", userIDs, model.MemberStatusActive).
		Pluck("community_id", &ids).Error
	return ids, err
}

// ActiveUserIDsForCommunities 一批社区的活跃成员（去重）
func (r *CommunityMemberRepository) ActiveUserIDsForCommunities(ctx context.Context, communityIDs []uint64) ([]uint64, error) {
	if len(communityIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Distinct("user_id").
		Where("community_id IN ? AND status = ?", communityIDs, model.MemberStatusActive).
		Pluck("user_id", &ids).Error
	return ids, err
}

// 插入成员变更事件
func insertOutbox(tx *gorm.DB, event string, communityID, userID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"community_id": communityID,
		"user_id":      userID,
	})
	ob := &model.MembershipOutbox{
		EventType:   event,
		CommunityID: communityID,
		UserID:      userID,
		Payload:     string(payload),
		Status:      0,
	}
	return tx.Create(ob).Error
}
