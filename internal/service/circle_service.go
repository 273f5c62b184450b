package service

import (
	"context"
	"encoding/json"
	"sort"
)

// MembershipStore 圈子解析依赖的只读图查询，注入便于用内存假库做测试
type MembershipStore interface {
	ActiveCommunityIDsForUser(ctx context.Context, userID uint64) ([]uint64, error)
	ActiveCommunityIDsForUsers(ctx context.Context, userIDs []uint64) ([]uint64, error)
	ActiveUserIDsForCommunities(ctx context.Context, communityIDs []uint64) ([]uint64, error)
	PublicCommunityIDs(ctx context.Context) ([]uint64, error)
}

// ScopeCache 可选的 scope 缓存，Resolve 本身保持纯函数
type ScopeCache interface {
	Get(ctx context.Context, viewerID uint64) (string, bool, error)
	Set(ctx context.Context, viewerID uint64, payload string) error
}

// Scope 某一信任层级下可见的用户与社区集合
type Scope struct {
	Users       map[uint64]struct{} `json:"users"`
	Communities map[uint64]struct{} `json:"communities"`
}

func NewScope() Scope {
	return Scope{
		Users:       make(map[uint64]struct{}),
		Communities: make(map[uint64]struct{}),
	}
}

func (s Scope) UserIDs() []uint64      { return sortedKeys(s.Users) }
func (s Scope) CommunityIDs() []uint64 { return sortedKeys(s.Communities) }

// Circles 三个嵌套层级：inner ⊆ trusted ⊆ extended
type Circles struct {
	Inner    Scope `json:"inner"`
	Trusted  Scope `json:"trusted"`
	Extended Scope `json:"extended"`
}

// CircleService 在“用户-社区”二部图上做固定两跳扩展。
// 一跳 = 本层用户的社区并入，再把这些社区的成员并入；只并不减，
// 所以层级单调递增。注意这是固定深度，不是传递闭包。
type CircleService struct {
	store MembershipStore
	cache ScopeCache // 可为空

	maxCommunities int // 单层社区上限，0=不限，防御超大公共社区的扇出
	maxUsers       int
}

func NewCircleService(store MembershipStore, maxCommunities, maxUsers int) *CircleService {
	return &CircleService{
		store:          store,
		maxCommunities: maxCommunities,
		maxUsers:       maxUsers,
	}
}

// SetCache 挂缓存，解析逻辑不感知
func (s *CircleService) SetCache(cache ScopeCache) {
	s.cache = cache
}

// Resolve 计算 viewer 的三个圈子。viewer=0 不报错，返回空圈子，
// 匿名访客应走 PublicScope。
func (s *CircleService) Resolve(ctx context.Context, viewerID uint64) (*Circles, error) {
	circles := &Circles{Inner: NewScope(), Trusted: NewScope(), Extended: NewScope()}
	if viewerID == 0 {
		return circles, nil
	}

	// inner：viewer 的社区 + 这些社区的所有成员；零社区也必须包含自己
	communityIDs, err := s.store.ActiveCommunityIDsForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	inner := NewScope()
	s.addCommunities(inner, communityIDs)
	inner.Users[viewerID] = struct{}{}
	memberIDs, err := s.store.ActiveUserIDsForCommunities(ctx, inner.CommunityIDs())
	if err != nil {
		return nil, err
	}
	s.addUsers(inner, memberIDs)

	trusted, err := s.expand(ctx, inner)
	if err != nil {
		return nil, err
	}
	extended, err := s.expand(ctx, trusted)
	if err != nil {
		return nil, err
	}

	circles.Inner = inner
	circles.Trusted = trusted
	circles.Extended = extended
	return circles, nil
}

// ResolveCached 缓存包装：命中直接反序列化，未命中解析后回填。
// 缓存故障只影响性能，不影响结果。
func (s *CircleService) ResolveCached(ctx context.Context, viewerID uint64) (*Circles, error) {
	if s.cache == nil || viewerID == 0 {
		return s.Resolve(ctx, viewerID)
	}

	if payload, hit, err := s.cache.Get(ctx, viewerID); err == nil && hit {
		var circles Circles
		if err := json.Unmarshal([]byte(payload), &circles); err == nil {
			return &circles, nil
		}
	}

	circles, err := s.Resolve(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(circles); err == nil {
		_ = s.cache.Set(ctx, viewerID, string(payload))
	}
	return circles, nil
}

// PublicScope 匿名访客：全部公开社区，用户集为空
func (s *CircleService) PublicScope(ctx context.Context) (Scope, error) {
	scope := NewScope()
	ids, err := s.store.PublicCommunityIDs(ctx)
	if err != nil {
		return scope, err
	}
	s.addCommunities(scope, ids)
	return scope, nil
}

// expand 在 prev 基础上再走一跳，返回新的更大的 scope
func (s *CircleService) expand(ctx context.Context, prev Scope) (Scope, error) {
	next := NewScope()
	for id := range prev.Users {
		next.Users[id] = struct{}{}
	}
	for id := range prev.Communities {
		next.Communities[id] = struct{}{}
	}

	moreCommunities, err := s.store.ActiveCommunityIDsForUsers(ctx, prev.UserIDs())
	if err != nil {
		return next, err
	}
	s.addCommunities(next, moreCommunities)

	moreUsers, err := s.store.ActiveUserIDsForCommunities(ctx, next.CommunityIDs())
	if err != nil {
		return next, err
	}
	s.addUsers(next, moreUsers)
	return next, nil
}

func (s *CircleService) addCommunities(scope Scope, ids []uint64) {
	for _, id := range ids {
		if s.maxCommunities > 0 && len(scope.Communities) >= s.maxCommunities {
			return
		}
		scope.Communities[id] = struct{}{}
	}
}

func (s *CircleService) addUsers(scope Scope, ids []uint64) {
	for _, id := range ids {
		if s.maxUsers > 0 && len(scope.Users) >= s.maxUsers {
			return
		}
		scope.Users[id] = struct{}{}
	}
}

func sortedKeys(set map[uint64]struct{}) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
