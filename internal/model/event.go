package model

import "time"

const (
	RSVPDeclined int8 = 0
	RSVPGoing    int8 = 1
	RSVPMaybe    int8 = 2
)

type Event struct {
	ID          uint64  `gorm:"primaryKey"`
	CommunityID *uint64 `gorm:"index"`
	CreatorID   uint64  `gorm:"not null;index"`
	Title       string  `gorm:"size:200;not null"`
	Location    string  `gorm:"size:255"`
	StartsAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventGuest struct {
	ID        uint64 `gorm:"primaryKey"`
	EventID   uint64 `gorm:"not null;index;uniqueIndex:uk_event_user"`
	UserID    uint64 `gorm:"not null;index;uniqueIndex:uk_event_user"`
	RSVP      int8   `gorm:"not null;default:1;comment:'1=going,2=maybe,0=declined'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EventGuest) TableName() string { return "event_guests" }
