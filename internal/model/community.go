package model

import "time"

const (
	VisibilityPrivate int8 = 0
	VisibilityPublic  int8 = 1
)

const (
	MemberStatusLeft   int8 = 0
	MemberStatusActive int8 = 1
	MemberStatusBanned int8 = 2
)

type Community struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	Visibility  int8   `gorm:"not null;default:1;index;comment:'1=public,0=private'"`
	CreatorID   uint64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommunityMember 成员关系，圈子计算只看 status=1 的行
type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        int    `gorm:"not null;default:0"` // 0=member, 1=admin
	Status      int8   `gorm:"not null;default:1;comment:'1=active,0=left,2=banned'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
