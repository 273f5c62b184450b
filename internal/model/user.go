package model

import "time"

// 站内角色，写进 token claims
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User 注册用户，用户名与邮箱全站唯一
type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:32;not null"`
	Password  string `gorm:"size:255;not null"`
	Role      int    `gorm:"default:0"`
	Email     string `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
