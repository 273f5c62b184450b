package model

import "time"

// Conversation 会话。CommunityID 为空表示不挂社区的“自由会话”，
// 只由作者圈子决定可见性；EventID 为空表示与活动无关。
type Conversation struct {
	ID          uint64  `gorm:"primaryKey"`
	AuthorID    uint64  `gorm:"not null;index:idx_author_time"`
	CommunityID *uint64 `gorm:"index"`
	EventID     *uint64 `gorm:"index"`
	Title       string  `gorm:"size:200;not null"`
	Content     string  `gorm:"type:text"`
	Status      int     `gorm:"not null;default:0"` // 0=normal 1=deleted
	LastReplyAt *time.Time
	CreatedAt   time.Time `gorm:"index:idx_author_time"`
	UpdatedAt   time.Time
}

type ConversationReply struct {
	ID             uint64 `gorm:"primaryKey"`
	ConversationID uint64 `gorm:"not null;index"`
	AuthorID       uint64 `gorm:"not null"`
	Content        string `gorm:"type:text"`
	CreatedAt      time.Time
}

func (ConversationReply) TableName() string { return "conversation_replies" }

// FeedQuery feed 查询条件，service 组装、repository 翻译成 SQL
type FeedQuery struct {
	ViewerID   uint64
	CreatorIDs []uint64
	Filter     string // "" / "events" / "communities"
	Offset     int
	Limit      int
}
