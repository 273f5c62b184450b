package service

import (
	"context"
	"errors"
	"time"

	"Vibe_Tribe/internal/model"

	"go.uber.org/zap"
)

// Circle 信任层级选择器
type Circle string

const (
	CircleInner    Circle = "inner"
	CircleTrusted  Circle = "trusted"
	CircleExtended Circle = "extended"
	CircleAll      Circle = "all"
)

const (
	FilterNone        = ""
	FilterEvents      = "events"
	FilterCommunities = "communities"
)

// 未知选择器直接拒绝，不做静默回退
var (
	ErrInvalidCircle = errors.New("invalid circle selector")
	ErrInvalidFilter = errors.New("invalid content filter")
)

type VisibilityReason string

const (
	ReasonOwnContent          VisibilityReason = "own_content"
	ReasonPublicCommunity     VisibilityReason = "public_community"
	ReasonMemberAccess        VisibilityReason = "member_access"
	ReasonGeneralConversation VisibilityReason = "general_conversation"
)

// ContentStore 会话查询，注入便于测试
type ContentStore interface {
	QueryFeed(ctx context.Context, q model.FeedQuery) ([]model.Conversation, error)
	CountFeed(ctx context.Context, q model.FeedQuery) (int64, error)
	CommunitiesByIDs(ctx context.Context, ids []uint64) ([]model.Community, error)
}

type FeedOptions struct {
	Page    int
	PerPage int
	Filter  string
}

// ConversationView 会话 + 事后标注的可见原因（只作解释，不参与过滤）
type ConversationView struct {
	Conversation model.Conversation `json:"conversation"`
	Reason       VisibilityReason   `json:"reason"`
	Tier         string             `json:"tier,omitempty"` // inner/trusted/extended，圈外为空
}

type FeedPerformance struct {
	ElapsedMS    int64 `json:"elapsed_ms"`
	CreatorCount int   `json:"creator_count"`
}

type FeedMeta struct {
	Page        int              `json:"page"`
	PerPage     int              `json:"per_page"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"total_pages"`
	HasMore     bool             `json:"has_more"`
	EmptyReason string           `json:"empty_reason,omitempty"`
	Performance *FeedPerformance `json:"performance,omitempty"`
}

type FeedPage struct {
	Conversations []ConversationView `json:"conversations"`
	Meta          FeedMeta           `json:"meta"`
}

// FeedService 圈内创建者 + 权限闸门的会话 feed
type FeedService struct {
	circles *CircleService
	store   ContentStore
	log     *zap.Logger
}

func NewFeedService(circles *CircleService, store ContentStore, log *zap.Logger) *FeedService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedService{circles: circles, store: store, log: log}
}

// List 解析圈子、取创建者集合、查询并标注。
// viewer<=0 与空创建者集合都是合法的空结果，不算错误。
func (s *FeedService) List(ctx context.Context, viewerID uint64, circle Circle, opts FeedOptions) (*FeedPage, error) {
	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 || opts.PerPage > 50 {
		opts.PerPage = 20
	}

	switch circle {
	case CircleInner, CircleTrusted, CircleExtended, CircleAll:
	default:
		return nil, ErrInvalidCircle
	}
	switch opts.Filter {
	case FilterNone, FilterEvents, FilterCommunities:
	default:
		return nil, ErrInvalidFilter
	}

	if viewerID == 0 {
		return emptyPage(opts, "invalid viewer", start, 0), nil
	}

	circles, err := s.circles.ResolveCached(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	creators := creatorSet(circles, circle)
	if len(creators) == 0 {
		// 短路：没有可见创建者就不打库
		return emptyPage(opts, "no visible creators", start, 0), nil
	}
	creatorIDs := sortedKeys(creators)

	q := model.FeedQuery{
		ViewerID:   viewerID,
		CreatorIDs: creatorIDs,
		Filter:     opts.Filter,
		Offset:     (opts.Page - 1) * opts.PerPage,
		Limit:      opts.PerPage,
	}

	conversations, err := s.store.QueryFeed(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountFeed(ctx, q)
	if err != nil {
		return nil, err
	}

	views, err := s.annotate(ctx, viewerID, circles, conversations)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.PerPage) - 1) / int64(opts.PerPage))
	meta := FeedMeta{
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(opts.Page*opts.PerPage) < total,
		Performance: &FeedPerformance{
			ElapsedMS:    time.Since(start).Milliseconds(),
			CreatorCount: len(creatorIDs),
		},
	}
	if total == 0 {
		meta.EmptyReason = "no conversations found"
	}

	s.log.Debug("feed listed",
		zap.Uint64("viewer", viewerID),
		zap.String("circle", string(circle)),
		zap.Int("creators", len(creatorIDs)),
		zap.Int64("total", total))

	return &FeedPage{Conversations: views, Meta: meta}, nil
}

// annotate 事后标注可见原因与层级，纯解释性
func (s *FeedService) annotate(ctx context.Context, viewerID uint64, circles *Circles, conversations []model.Conversation) ([]ConversationView, error) {
	communityIDs := make([]uint64, 0, len(conversations))
	seen := make(map[uint64]struct{})
	for _, conv := range conversations {
		if conv.CommunityID == nil {
			continue
		}
		if _, ok := seen[*conv.CommunityID]; ok {
			continue
		}
		seen[*conv.CommunityID] = struct{}{}
		communityIDs = append(communityIDs, *conv.CommunityID)
	}

	communities := make(map[uint64]model.Community, len(communityIDs))
	if len(communityIDs) > 0 {
		list, err := s.store.CommunitiesByIDs(ctx, communityIDs)
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			communities[c.ID] = c
		}
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		view := ConversationView{Conversation: conv}
		switch {
		case conv.AuthorID == viewerID:
			view.Reason = ReasonOwnContent
		case conv.CommunityID != nil:
			comm := communities[*conv.CommunityID]
			if comm.Visibility == model.VisibilityPublic {
				view.Reason = ReasonPublicCommunity
			} else {
				view.Reason = ReasonMemberAccess
			}
			view.Tier = tierOf(circles, comm.CreatorID)
		default:
			view.Reason = ReasonGeneralConversation
			view.Tier = tierOf(circles, conv.AuthorID)
		}
		views = append(views, view)
	}
	return views, nil
}

// creatorSet 层级已经嵌套，all 仍显式取并集，语义分叉时不受影响
func creatorSet(circles *Circles, circle Circle) map[uint64]struct{} {
	switch circle {
	case CircleInner:
		return circles.Inner.Users
	case CircleTrusted:
		return circles.Trusted.Users
	case CircleExtended:
		return circles.Extended.Users
	}
	union := make(map[uint64]struct{})
	for _, scope := range []Scope{circles.Inner, circles.Trusted, circles.Extended} {
		for id := range scope.Users {
			union[id] = struct{}{}
		}
	}
	return union
}

// tierOf 由内向外第一个命中的层级
func tierOf(circles *Circles, userID uint64) string {
	if _, ok := circles.Inner.Users[userID]; ok {
		return string(CircleInner)
	}
	if _, ok := circles.Trusted.Users[userID]; ok {
		return string(CircleTrusted)
	}
	if _, ok := circles.Extended.Users[userID]; ok {
		return string(CircleExtended)
	}
	return ""
}

func emptyPage(opts FeedOptions, reason string, start time.Time, creators int) *FeedPage {
	return &FeedPage{
		Conversations: []ConversationView{},
		Meta: FeedMeta{
			Page:        opts.Page,
			PerPage:     opts.PerPage,
			Total:       0,
			TotalPages:  0,
			HasMore:     false,
			EmptyReason: reason,
			Performance: &FeedPerformance{
				ElapsedMS:    time.Since(start).Milliseconds(),
				CreatorCount: creators,
			},
		},
	}
}
