package mysql

import (
	"context"

	"Vibe_Tribe/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 建社区并让创建者以管理员身份加入（幂等）
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) (*model.Community, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		mRepo := &CommunityMemberRepository{DB: tx}
		if _, err := mRepo.Join(ctx, c.ID, c.CreatorID, 1); err != nil {
			return err
		}
		return nil
	})
	return c, err
}

func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByName(name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("name = ?", name).First(&community).Error
	return &community, err
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// FindByIDs 批量查社区，feed 做可见原因标注时用
func (r *CommunityRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Community, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Community
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

// PublicCommunityIDs 匿名访客的 public scope
func (r *CommunityRepository) PublicCommunityIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).
		Where("visibility = ?", model.VisibilityPublic).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CommunityRepository) DeleteById(id uint64) error {
	// 幂等硬删除：无论是否存在，最终都视为成功
	tx := r.DB.Delete(&model.Community{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	return nil
}
