package model

import "time"

const (
	RoleUser  = 0
	RoleAdmin = 1
)

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:32;not null"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Role      int    `gorm:"default:0"` // 0=user 1=admin
	Email     string `gorm:"uniqueIndex;size:64;not null"`
	FirstName string `gorm:"size:64"`
	LastName  string `gorm:"size:64"`
	Bio       string `gorm:"type:text"`
	Title     string `gorm:"size:128"`
	Avatar    string `gorm:"size:255"`
	PostCount int64  `gorm:"not null;default:0"` // 派生计数，由帖子创建/删除维护
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
