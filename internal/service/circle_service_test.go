package service_test

import (
	"context"
	"errors"
	"testing"

	"Vibe_Tribe/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMembershipStore 内存图：user -> 活跃社区
type fakeMembershipStore struct {
	memberships map[uint64][]uint64
	public      []uint64
	calls       int
	err         error
}

func (f *fakeMembershipStore) ActiveCommunityIDsForUser(_ context.Context, userID uint64) ([]uint64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.memberships[userID], nil
}

func (f *fakeMembershipStore) ActiveCommunityIDsForUsers(_ context.Context, userIDs []uint64) ([]uint64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	seen := make(map[uint64]struct{})
	var out []uint64
	for _, u := range userIDs {
		for _, c := range f.memberships[u] {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) ActiveUserIDsForCommunities(_ context.Context, communityIDs []uint64) ([]uint64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[uint64]struct{}, len(communityIDs))
	for _, c := range communityIDs {
		want[c] = struct{}{}
	}
	seen := make(map[uint64]struct{})
	var out []uint64
	for u, comms := range f.memberships {
		for _, c := range comms {
			if _, ok := want[c]; ok {
				if _, dup := seen[u]; !dup {
					seen[u] = struct{}{}
					out = append(out, u)
				}
				break
			}
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) PublicCommunityIDs(_ context.Context) ([]uint64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.public, nil
}

type fakeScopeCache struct {
	m    map[uint64]string
	hits int
}

func newFakeScopeCache() *fakeScopeCache { return &fakeScopeCache{m: make(map[uint64]string)} }

func (f *fakeScopeCache) Get(_ context.Context, viewerID uint64) (string, bool, error) {
	v, ok := f.m[viewerID]
	if ok {
		f.hits++
	}
	return v, ok, nil
}

func (f *fakeScopeCache) Set(_ context.Context, viewerID uint64, payload string) error {
	f.m[viewerID] = payload
	return nil
}

func TestResolveScenario(t *testing.T) {
	t.Parallel()
	// U=1 属于 {A=10, B=11}；A 成员 {1,2}；B 成员 {1,3}；V=2 另属 C=12（成员 {2,4}）
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{
		1: {10, 11},
		2: {10, 12},
		3: {11},
		4: {12},
	}}
	svc := service.NewCircleService(store, 0, 0)

	circles, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3}, circles.Inner.UserIDs())
	assert.Equal(t, []uint64{10, 11}, circles.Inner.CommunityIDs())

	assert.Equal(t, []uint64{1, 2, 3, 4}, circles.Trusted.UserIDs())
	assert.Equal(t, []uint64{10, 11, 12}, circles.Trusted.CommunityIDs())

	// 图已经走完，extended 不再增长
	assert.Equal(t, circles.Trusted.UserIDs(), circles.Extended.UserIDs())
	assert.Equal(t, circles.Trusted.CommunityIDs(), circles.Extended.CommunityIDs())
}

func TestSelfInclusionWithoutMemberships(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{}}
	svc := service.NewCircleService(store, 0, 0)

	circles, err := svc.Resolve(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []uint64{7}, circles.Inner.UserIDs())
	assert.Empty(t, circles.Inner.CommunityIDs())
	assert.Equal(t, []uint64{7}, circles.Trusted.UserIDs())
	assert.Equal(t, []uint64{7}, circles.Extended.UserIDs())
	assert.Empty(t, circles.Extended.CommunityIDs())
}

func TestMonotonicity(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{
		1: {1},
		2: {1, 2},
		3: {2, 3},
		4: {3, 4},
		5: {4},
	}}
	svc := service.NewCircleService(store, 0, 0)

	circles, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Subset(t, circles.Trusted.UserIDs(), circles.Inner.UserIDs())
	assert.Subset(t, circles.Extended.UserIDs(), circles.Trusted.UserIDs())
	assert.Subset(t, circles.Trusted.CommunityIDs(), circles.Inner.CommunityIDs())
	assert.Subset(t, circles.Extended.CommunityIDs(), circles.Trusted.CommunityIDs())
}

// 链式图上验证固定两跳：extended 不是传递闭包，链尾不可达
func TestFixedTwoHopExpansion(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{
		1: {1},
		2: {1, 2},
		3: {2, 3},
		4: {3, 4},
		5: {4},
	}}
	svc := service.NewCircleService(store, 0, 0)

	circles, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2}, circles.Inner.UserIDs())
	assert.Equal(t, []uint64{1, 2, 3}, circles.Trusted.UserIDs())
	assert.Equal(t, []uint64{1, 2, 3, 4}, circles.Extended.UserIDs())
	assert.Equal(t, []uint64{1, 2, 3}, circles.Extended.CommunityIDs())

	assert.NotContains(t, circles.Extended.UserIDs(), uint64(5))
	assert.NotContains(t, circles.Extended.CommunityIDs(), uint64(4))
}

func TestPublicScope(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{
		memberships: map[uint64][]uint64{1: {10}},
		public:      []uint64{10, 20},
	}
	svc := service.NewCircleService(store, 0, 0)

	scope, err := svc.PublicScope(context.Background())
	require.NoError(t, err)

	assert.Empty(t, scope.UserIDs())
	assert.Equal(t, []uint64{10, 20}, scope.CommunityIDs())
}

func TestResolveAnonymousViewer(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{1: {10}}}
	svc := service.NewCircleService(store, 0, 0)

	circles, err := svc.Resolve(context.Background(), 0)
	require.NoError(t, err)

	assert.Empty(t, circles.Inner.UserIDs())
	assert.Empty(t, circles.Extended.CommunityIDs())
	// 匿名不打图查询
	assert.Zero(t, store.calls)
}

func TestFanOutCaps(t *testing.T) {
	t.Parallel()
	memberships := make(map[uint64][]uint64)
	// 一个巨型社区，1000 个成员
	for u := uint64(1); u <= 1000; u++ {
		memberships[u] = []uint64{1}
	}
	store := &fakeMembershipStore{memberships: memberships}
	svc := service.NewCircleService(store, 10, 50)

	circles, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(circles.Extended.UserIDs()), 50)
	assert.LessOrEqual(t, len(circles.Extended.CommunityIDs()), 10)
	// 自己始终在圈内
	assert.Contains(t, circles.Inner.UserIDs(), uint64(1))
}

func TestResolveCached(t *testing.T) {
	t.Parallel()
	store := &fakeMembershipStore{memberships: map[uint64][]uint64{
		1: {10},
		2: {10},
	}}
	svc := service.NewCircleService(store, 0, 0)
	cache := newFakeScopeCache()
	svc.SetCache(cache)

	first, err := svc.ResolveCached(context.Background(), 1)
	require.NoError(t, err)
	callsAfterMiss := store.calls
	require.Positive(t, callsAfterMiss)

	second, err := svc.ResolveCached(context.Background(), 1)
	require.NoError(t, err)

	// 第二次纯缓存命中，不再打库
	assert.Equal(t, callsAfterMiss, store.calls)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Inner.UserIDs(), second.Inner.UserIDs())
	assert.Equal(t, first.Extended.CommunityIDs(), second.Extended.CommunityIDs())
}

// 底层图查询失败要原样上抛，不能吞成空圈子
func TestResolveStoreError(t *testing.T) {
	t.Parallel()
	storeErr := errors.New("membership store unavailable")
	store := &fakeMembershipStore{err: storeErr}
	svc := service.NewCircleService(store, 0, 0)

	_, err := svc.Resolve(context.Background(), 1)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.PublicScope(context.Background())
	assert.ErrorIs(t, err, storeErr)
}
