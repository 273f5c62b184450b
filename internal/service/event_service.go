package service

import (
	"context"
	"errors"
	"time"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/repository/mysql"
)

type EventService struct {
	repo       *mysql.EventRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewEventService() *EventService {
	return &EventService{
		repo:       &mysql.EventRepository{DB: mysql.DB},
		memberRepo: &mysql.CommunityMemberRepository{DB: mysql.DB},
	}
}

// CreateEvent 挂社区的活动要求创建者是活跃成员
func (s *EventService) CreateEvent(ctx context.Context, creatorID uint64, communityID *uint64, title, location string, startsAt time.Time) (*model.Event, error) {
	if title == "" {
		return nil, errors.New("title required")
	}
	if startsAt.IsZero() {
		return nil, errors.New("starts_at required")
	}

	if communityID != nil {
		ok, err := s.memberRepo.IsActiveMember(ctx, *communityID, creatorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("not a member")
		}
	}

	event := &model.Event{
		CommunityID: communityID,
		CreatorID:   creatorID,
		Title:       title,
		Location:    location,
		StartsAt:    startsAt,
	}
	if err := s.repo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

// RSVP 幂等：重复回复只改状态
func (s *EventService) RSVP(ctx context.Context, userID, eventID uint64, rsvp int8) error {
	switch rsvp {
	case model.RSVPGoing, model.RSVPMaybe, model.RSVPDeclined:
	default:
		return errors.New("invalid rsvp")
	}

	if _, err := s.repo.FindByID(eventID); err != nil {
		return errors.New("event not found")
	}

	return s.repo.UpsertRSVP(ctx, &model.EventGuest{
		EventID: eventID,
		UserID:  userID,
		RSVP:    rsvp,
	})
}

func (s *EventService) Guests(ctx context.Context, eventID uint64) ([]model.EventGuest, error) {
	return s.repo.Guests(ctx, eventID)
}
