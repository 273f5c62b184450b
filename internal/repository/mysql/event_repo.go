package mysql

import (
	"context"

	"Vibe_Tribe/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	DB *gorm.DB
}

func (r *EventRepository) Create(event *model.Event) error {
	return r.DB.Create(event).Error
}

func (r *EventRepository) FindByID(id uint64) (*model.Event, error) {
	var event model.Event
	err := r.DB.First(&event, id).Error
	return &event, err
}

// UpsertRSVP 幂等回复：同一 (event, user) 重复 RSVP 只更新状态
func (r *EventRepository) UpsertRSVP(ctx context.Context, guest *model.EventGuest) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rsvp", "updated_at"}),
	}).Create(guest).Error
}

func (r *EventRepository) Guests(ctx context.Context, eventID uint64) ([]model.EventGuest, error) {
	var list []model.EventGuest
	err := r.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
