package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentStore 在内存里复刻 feed 的查询语义：
// 创建者测试 + 权限闸门 + 过滤 + 排序 + 分页
type fakeContentStore struct {
	conversations []model.Conversation
	communities   map[uint64]model.Community
	memberships   map[uint64][]uint64 // user -> 活跃社区，与闸门共用
	queries       int
	err           error
}

func (f *fakeContentStore) isActiveMember(userID, communityID uint64) bool {
	for _, c := range f.memberships[userID] {
		if c == communityID {
			return true
		}
	}
	return false
}

func (f *fakeContentStore) matches(q model.FeedQuery, conv model.Conversation) bool {
	if conv.Status != 0 {
		return false
	}

	inCreators := func(id uint64) bool {
		for _, c := range q.CreatorIDs {
			if c == id {
				return true
			}
		}
		return false
	}

	// 创建者测试
	if conv.CommunityID != nil {
		comm, ok := f.communities[*conv.CommunityID]
		if !ok || !inCreators(comm.CreatorID) {
			return false
		}
	} else if !inCreators(conv.AuthorID) {
		return false
	}

	// 权限闸门
	if conv.CommunityID != nil {
		comm := f.communities[*conv.CommunityID]
		if comm.Visibility != model.VisibilityPublic && !f.isActiveMember(q.ViewerID, comm.ID) {
			return false
		}
	}

	switch q.Filter {
	case service.FilterEvents:
		return conv.EventID != nil
	case service.FilterCommunities:
		return conv.CommunityID != nil
	}
	return true
}

func (f *fakeContentStore) rankKey(conv model.Conversation) time.Time {
	if conv.LastReplyAt != nil {
		return *conv.LastReplyAt
	}
	return conv.CreatedAt
}

func (f *fakeContentStore) QueryFeed(_ context.Context, q model.FeedQuery) ([]model.Conversation, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Conversation
	for _, conv := range f.conversations {
		if f.matches(q, conv) {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := f.rankKey(out[i]), f.rankKey(out[j])
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		return out[i].ID > out[j].ID
	})
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeContentStore) CountFeed(_ context.Context, q model.FeedQuery) (int64, error) {
	f.queries++
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, conv := range f.conversations {
		if f.matches(q, conv) {
			n++
		}
	}
	return n, nil
}

func (f *fakeContentStore) CommunitiesByIDs(_ context.Context, ids []uint64) ([]model.Community, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Community
	for _, id := range ids {
		if c, ok := f.communities[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func newFeedFixture(memberships map[uint64][]uint64, communities map[uint64]model.Community, conversations []model.Conversation) (*service.FeedService, *fakeContentStore) {
	content := &fakeContentStore{
		conversations: conversations,
		communities:   communities,
		memberships:   memberships,
	}
	circles := service.NewCircleService(&fakeMembershipStore{memberships: memberships}, 0, 0)
	return service.NewFeedService(circles, content, nil), content
}

func TestFeedInvalidSelector(t *testing.T) {
	t.Parallel()
	svc, _ := newFeedFixture(map[uint64][]uint64{}, nil, nil)

	_, err := svc.List(context.Background(), 1, service.Circle("friends"), service.FeedOptions{})
	assert.ErrorIs(t, err, service.ErrInvalidCircle)

	_, err = svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{Filter: "photos"})
	assert.ErrorIs(t, err, service.ErrInvalidFilter)
}

func TestFeedInvalidViewerShortCircuit(t *testing.T) {
	t.Parallel()
	svc, content := newFeedFixture(map[uint64][]uint64{}, nil, nil)

	page, err := svc.List(context.Background(), 0, service.CircleInner, service.FeedOptions{})
	require.NoError(t, err)

	assert.Empty(t, page.Conversations)
	assert.Zero(t, page.Meta.Total)
	assert.Equal(t, "invalid viewer", page.Meta.EmptyReason)
	// 不打库
	assert.Zero(t, content.queries)
}

func TestFeedEmptyResult(t *testing.T) {
	t.Parallel()
	svc, _ := newFeedFixture(map[uint64][]uint64{}, nil, nil)

	page, err := svc.List(context.Background(), 9, service.CircleExtended, service.FeedOptions{})
	require.NoError(t, err)

	assert.Empty(t, page.Conversations)
	assert.Equal(t, "no conversations found", page.Meta.EmptyReason)
	assert.NotNil(t, page.Meta.Performance)
	assert.Equal(t, 1, page.Meta.Performance.CreatorCount) // 只有自己
}

// 权限闸门独立于圈子测试：私有社区 B 的会话对非成员不可见，
// 即使其创建者已在 viewer 的圈子里
func TestFeedPermissionGate(t *testing.T) {
	t.Parallel()
	// viewer 1 是公开社区 A(10) 的成员；A 的创建者 2 还是私有社区 B(11) 的成员
	memberships := map[uint64][]uint64{
		1: {10},
		2: {10, 11},
	}
	communities := map[uint64]model.Community{
		10: {ID: 10, CreatorID: 2, Visibility: model.VisibilityPublic},
		11: {ID: 11, CreatorID: 2, Visibility: model.VisibilityPrivate},
	}
	now := time.Now()
	conversations := []model.Conversation{
		{ID: 1, AuthorID: 2, CommunityID: ptr(uint64(11)), Title: "private", CreatedAt: now},
		{ID: 2, AuthorID: 2, CommunityID: ptr(uint64(10)), Title: "public", CreatedAt: now.Add(-time.Minute)},
	}
	svc, _ := newFeedFixture(memberships, communities, conversations)

	for _, circle := range []service.Circle{service.CircleInner, service.CircleTrusted, service.CircleExtended, service.CircleAll} {
		page, err := svc.List(context.Background(), 1, circle, service.FeedOptions{})
		require.NoError(t, err)
		require.Len(t, page.Conversations, 1, "circle=%s", circle)
		assert.Equal(t, uint64(2), page.Conversations[0].Conversation.ID, "circle=%s", circle)
	}

	// B 的成员自己能看到
	page, err := svc.List(context.Background(), 2, service.CircleInner, service.FeedOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Conversations, 2)
}

func TestFeedPaginationConsistency(t *testing.T) {
	t.Parallel()
	memberships := map[uint64][]uint64{1: {10}, 2: {10}}
	communities := map[uint64]model.Community{
		10: {ID: 10, CreatorID: 2, Visibility: model.VisibilityPublic},
	}
	// 7 条，故意让排序键大量并列，考验 id 决胜键
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var conversations []model.Conversation
	for i := uint64(1); i <= 7; i++ {
		conversations = append(conversations, model.Conversation{
			ID:          i,
			AuthorID:    2,
			CommunityID: ptr(uint64(10)),
			CreatedAt:   base.Add(time.Duration(i/3) * time.Hour),
		})
	}
	svc, _ := newFeedFixture(memberships, communities, conversations)

	perPage := 3
	var collected []uint64
	var totalPages int
	for page := 1; ; page++ {
		result, err := svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{Page: page, PerPage: perPage})
		require.NoError(t, err)

		assert.EqualValues(t, 7, result.Meta.Total)
		assert.Equal(t, 3, result.Meta.TotalPages)
		totalPages = result.Meta.TotalPages

		for _, view := range result.Conversations {
			collected = append(collected, view.Conversation.ID)
		}
		if !result.Meta.HasMore {
			assert.Equal(t, totalPages, page)
			break
		}
	}

	// 所有页拼起来正好 7 条，不重不漏
	require.Len(t, collected, 7)
	seen := make(map[uint64]struct{})
	for _, id := range collected {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %d across pages", id)
		seen[id] = struct{}{}
	}
}

func TestFeedVisibilityReasons(t *testing.T) {
	t.Parallel()
	// viewer 1 与 2 同在公开社区 10（创建者 2）；2 与 3 同在私有社区 11（创建者 3）
	memberships := map[uint64][]uint64{
		1: {10, 11},
		2: {10},
		3: {11},
		4: {},
	}
	communities := map[uint64]model.Community{
		10: {ID: 10, CreatorID: 2, Visibility: model.VisibilityPublic},
		11: {ID: 11, CreatorID: 3, Visibility: model.VisibilityPrivate},
	}
	now := time.Now()
	conversations := []model.Conversation{
		{ID: 1, AuthorID: 1, Title: "mine", CreatedAt: now},
		{ID: 2, AuthorID: 2, CommunityID: ptr(uint64(10)), Title: "pub", CreatedAt: now.Add(-time.Minute)},
		{ID: 3, AuthorID: 3, CommunityID: ptr(uint64(11)), Title: "priv", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: 4, AuthorID: 3, Title: "general", CreatedAt: now.Add(-3 * time.Minute)},
	}
	svc, _ := newFeedFixture(memberships, communities, conversations)

	page, err := svc.List(context.Background(), 1, service.CircleExtended, service.FeedOptions{})
	require.NoError(t, err)
	require.Len(t, page.Conversations, 4)

	byID := make(map[uint64]service.ConversationView)
	for _, v := range page.Conversations {
		byID[v.Conversation.ID] = v
	}

	assert.Equal(t, service.ReasonOwnContent, byID[1].Reason)
	assert.Empty(t, byID[1].Tier)

	assert.Equal(t, service.ReasonPublicCommunity, byID[2].Reason)
	assert.Equal(t, "inner", byID[2].Tier)

	assert.Equal(t, service.ReasonMemberAccess, byID[3].Reason)
	assert.Equal(t, "inner", byID[3].Tier)

	assert.Equal(t, service.ReasonGeneralConversation, byID[4].Reason)
	assert.Equal(t, "inner", byID[4].Tier)
}

func TestFeedContentFilter(t *testing.T) {
	t.Parallel()
	memberships := map[uint64][]uint64{1: {10}, 2: {10}}
	communities := map[uint64]model.Community{
		10: {ID: 10, CreatorID: 2, Visibility: model.VisibilityPublic},
	}
	now := time.Now()
	conversations := []model.Conversation{
		{ID: 1, AuthorID: 2, CommunityID: ptr(uint64(10)), EventID: ptr(uint64(5)), CreatedAt: now},
		{ID: 2, AuthorID: 2, CommunityID: ptr(uint64(10)), CreatedAt: now.Add(-time.Minute)},
		{ID: 3, AuthorID: 2, CreatedAt: now.Add(-2 * time.Minute)},
	}
	svc, _ := newFeedFixture(memberships, communities, conversations)

	page, err := svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{Filter: service.FilterEvents})
	require.NoError(t, err)
	require.Len(t, page.Conversations, 1)
	assert.Equal(t, uint64(1), page.Conversations[0].Conversation.ID)

	page, err = svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{Filter: service.FilterCommunities})
	require.NoError(t, err)
	require.Len(t, page.Conversations, 2)

	page, err = svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Conversations, 3)
}

// 排序：有回复的按回复时间，没有的按创建时间，混在同一根键上比较
func TestFeedRanking(t *testing.T) {
	t.Parallel()
	memberships := map[uint64][]uint64{1: {10}, 2: {10}}
	communities := map[uint64]model.Community{
		10: {ID: 10, CreatorID: 2, Visibility: model.VisibilityPublic},
	}
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	conversations := []model.Conversation{
		// 旧会话但刚有回复，应排最前
		{ID: 1, AuthorID: 2, CommunityID: ptr(uint64(10)), CreatedAt: base, LastReplyAt: ptr(base.Add(3 * time.Hour))},
		{ID: 2, AuthorID: 2, CommunityID: ptr(uint64(10)), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, AuthorID: 2, CommunityID: ptr(uint64(10)), CreatedAt: base.Add(time.Hour)},
	}
	svc, _ := newFeedFixture(memberships, communities, conversations)

	page, err := svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{})
	require.NoError(t, err)
	require.Len(t, page.Conversations, 3)

	var order []uint64
	for _, v := range page.Conversations {
		order = append(order, v.Conversation.ID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, order)
}

// 存储层失败要原样上抛，不得降级成空页
func TestFeedStoreError(t *testing.T) {
	t.Parallel()
	storeErr := errors.New("content store unavailable")
	svc, content := newFeedFixture(map[uint64][]uint64{1: {10}}, nil, nil)
	content.err = storeErr

	page, err := svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{})
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, page)
}

func TestFeedMembershipStoreError(t *testing.T) {
	t.Parallel()
	storeErr := errors.New("membership store unavailable")
	circles := service.NewCircleService(&fakeMembershipStore{err: storeErr}, 0, 0)
	svc := service.NewFeedService(circles, &fakeContentStore{}, nil)

	page, err := svc.List(context.Background(), 1, service.CircleInner, service.FeedOptions{})
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, page)
}
