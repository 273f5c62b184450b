package mysql

import (
	"context"

	"Vibe_Tribe/internal/model"

	"gorm.io/gorm"
)

// CircleStore 聚合圈子解析需要的只读图查询，实现 service.MembershipStore
type CircleStore struct {
	members     *CommunityMemberRepository
	communities *CommunityRepository
}

func NewCircleStore(db *gorm.DB) *CircleStore {
	return &CircleStore{
		members:     &CommunityMemberRepository{DB: db},
		communities: &CommunityRepository{DB: db},
	}
}

func (s *CircleStore) ActiveCommunityIDsForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	return s.members.ActiveCommunityIDsForUser(ctx, userID)
}

func (s *CircleStore) ActiveCommunityIDsForUsers(ctx context.Context, userIDs []uint64) ([]uint64, error) {
	return s.members.ActiveCommunityIDsForUsers(ctx, userIDs)
}

func (s *CircleStore) ActiveUserIDsForCommunities(ctx context.Context, communityIDs []uint64) ([]uint64, error) {
	return s.members.ActiveUserIDsForCommunities(ctx, communityIDs)
}

func (s *CircleStore) PublicCommunityIDs(ctx context.Context) ([]uint64, error) {
	return s.communities.PublicCommunityIDs(ctx)
}

// FeedStore 聚合 feed 查询，实现 service.ContentStore
type FeedStore struct {
	conversations *ConversationRepository
	communities   *CommunityRepository
}

func NewFeedStore(db *gorm.DB) *FeedStore {
	return &FeedStore{
		conversations: &ConversationRepository{DB: db},
		communities:   &CommunityRepository{DB: db},
	}
}

func (s *FeedStore) QueryFeed(ctx context.Context, q model.FeedQuery) ([]model.Conversation, error) {
	return s.conversations.QueryFeed(ctx, q)
}

func (s *FeedStore) CountFeed(ctx context.Context, q model.FeedQuery) (int64, error) {
	return s.conversations.CountFeed(ctx, q)
}

func (s *FeedStore) CommunitiesByIDs(ctx context.Context, ids []uint64) ([]model.Community, error) {
	return s.communities.FindByIDs(ctx, ids)
}
