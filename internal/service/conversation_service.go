package service

import (
	"context"
	"errors"
	"time"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/repository/mysql"
)

type ConversationService struct {
	repo       *mysql.ConversationRepository
	commRepo   *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	eventRepo  *mysql.EventRepository
}

func NewConversationService() *ConversationService {
	return &ConversationService{
		repo:       &mysql.ConversationRepository{DB: mysql.DB},
		commRepo:   &mysql.CommunityRepository{DB: mysql.DB},
		memberRepo: &mysql.CommunityMemberRepository{DB: mysql.DB},
		eventRepo:  &mysql.EventRepository{DB: mysql.DB},
	}
}

// CreateConversation 挂社区的会话要求作者是活跃成员；
// 不挂社区的自由会话谁都能发，可见性由作者圈子决定
func (s *ConversationService) CreateConversation(ctx context.Context, authorID uint64, communityID, eventID *uint64, title, content string) (*model.Conversation, error) {
	if title == "" {
		return nil, errors.New("title required")
	}

	if communityID != nil {
		ok, err := s.memberRepo.IsActiveMember(ctx, *communityID, authorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("not a member")
		}
	}

	if eventID != nil {
		if _, err := s.eventRepo.FindByID(*eventID); err != nil {
			return nil, errors.New("event not found")
		}
	}

	conv := &model.Conversation{
		AuthorID:    authorID,
		CommunityID: communityID,
		EventID:     eventID,
		Title:       title,
		Content:     content,
	}

	if err := s.repo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Reply 回复即推进会话排序键；私有社区的会话只有成员能回
func (s *ConversationService) Reply(ctx context.Context, userID, conversationID uint64, content string) (*model.ConversationReply, error) {
	if content == "" {
		return nil, errors.New("content required")
	}

	conv, err := s.repo.FindByID(conversationID)
	if err != nil {
		return nil, errors.New("conversation not found")
	}

	if conv.CommunityID != nil {
		community, err := s.commRepo.FindByID(*conv.CommunityID)
		if err != nil {
			return nil, err
		}
		if community.Visibility != model.VisibilityPublic {
			ok, err := s.memberRepo.IsActiveMember(ctx, *conv.CommunityID, userID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.New("not a member")
			}
		}
	}

	reply := &model.ConversationReply{
		ConversationID: conversationID,
		AuthorID:       userID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.AddReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// DeleteConversation 幂等删除：成功/已删除均返回 nil；仅无权限时报错
func (s *ConversationService) DeleteConversation(userID, conversationID uint64) error {
	affected, err := s.repo.DeleteWithPermission(conversationID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		// 已删除或不存在视为幂等成功；还能读到说明是无权限
		if _, err := s.repo.FindByID(conversationID); err != nil {
			return nil
		}
		return errors.New("no permission")
	}
	return nil
}
