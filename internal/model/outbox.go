package model

import "time"

// MembershipOutbox 成员变更事件监控表
type MembershipOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:16;not null"` // join / leave
	CommunityID uint64 `gorm:"not null"`
	UserID      uint64 `gorm:"not null"`
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MembershipOutbox) TableName() string { return "membership_outbox" }
