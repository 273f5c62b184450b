package service

import (
	"context"
	"errors"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/pkg"
	"Vibe_Tribe/internal/repository/mysql"
	"Vibe_Tribe/internal/repository/redis"
)

var (
	ErrInviteRequired = errors.New("invite code required")
	ErrNotAdmin       = errors.New("not a community admin")
)

type CommunityService struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	inviteRepo *redis.InviteCodeRepository
	scopeCache *redis.ScopeCacheRepository
}

func NewCommunityService(scopeCache *redis.ScopeCacheRepository) *CommunityService {
	return &CommunityService{
		repo:       &mysql.CommunityRepository{DB: mysql.DB},
		memberRepo: &mysql.CommunityMemberRepository{DB: mysql.DB},
		inviteRepo: &redis.InviteCodeRepository{},
		scopeCache: scopeCache,
	}
}

func (s *CommunityService) CreateCommunity(ctx context.Context, userID uint64, name, desc string, visibility int8) (*model.Community, error) {
	if name == "" {
		return nil, errors.New("community name required")
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, errors.New("invalid visibility")
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		Visibility:  visibility,
		CreatorID:   userID,
	}

	if _, err := s.repo.Create(ctx, community); err != nil {
		return nil, err
	}

	// 创建者的圈子变了，同步失效自己的缓存
	s.invalidateScope(ctx, userID)
	return community, nil
}

// JoinCommunity 私有社区要邀请码；成功后同步失效本人 scope 缓存，
// 同社区其他人的缓存走 kafka 事件异步失效
func (s *CommunityService) JoinCommunity(ctx context.Context, userID, communityID uint64, inviteCode string) error {
	community, err := s.repo.FindByID(communityID)
	if err != nil {
		return errors.New("community not found")
	}

	if community.Visibility == model.VisibilityPrivate && community.CreatorID != userID {
		ok, err := s.inviteRepo.Verify(ctx, communityID, inviteCode)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInviteRequired
		}
	}

	changed, err := s.memberRepo.Join(ctx, communityID, userID, 0)
	if err != nil {
		return err
	}
	if changed {
		s.invalidateScope(ctx, userID)
	}
	return nil
}

func (s *CommunityService) LeaveCommunity(ctx context.Context, userID, communityID uint64) error {
	changed, err := s.memberRepo.Leave(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.invalidateScope(ctx, userID)
	}
	return nil
}

// IssueInvite 管理员签发私有社区邀请码
func (s *CommunityService) IssueInvite(ctx context.Context, adminID, communityID uint64) (string, error) {
	ok, err := s.memberRepo.IsAdmin(ctx, communityID, adminID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotAdmin
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return "", err
	}
	if err := s.inviteRepo.Save(ctx, communityID, code); err != nil {
		return "", err
	}
	return code, nil
}

func (s *CommunityService) GetCommunity(id uint64) (*model.Community, error) {
	return s.repo.FindByID(id)
}

func (s *CommunityService) ListCommunities(page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	offset := (page - 1) * size
	return s.repo.List(offset, size)
}

func (s *CommunityService) invalidateScope(ctx context.Context, userID uint64) {
	if s.scopeCache == nil {
		return
	}
	// 缓存失效失败不阻塞主流程，TTL 会兜底
	_ = s.scopeCache.Invalidate(ctx, userID)
}
