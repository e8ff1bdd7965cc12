package model

import (
	"time"

	"gorm.io/datatypes"
)

// WelcomeCommunity 默认社区，最后一个成员退出时也不会被移除
const WelcomeCommunity = "Welcome"

// MaxCommunityTags 社区标签词表上限
const MaxCommunityTags = 7

type Community struct {
	ID             uint64 `gorm:"primaryKey"`
	Title          string `gorm:"uniqueIndex;size:64;not null"`
	Description    string `gorm:"type:text"`
	CreatorID      uint64 `gorm:"not null;index"`
	MemberCount    int64  `gorm:"not null;default:0"`
	Removed        bool   `gorm:"not null;default:false"` // 软删除，对非管理员不可见
	LatestActivity time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Engagement  int64  `gorm:"not null;default:0"` // 无上下限，允许为负
	Removed     bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommunityModerator 版主记录，permissions 为具名权限集合
type CommunityModerator struct {
	ID          uint64         `gorm:"primaryKey"`
	CommunityID uint64         `gorm:"not null;index;uniqueIndex:uk_moderator"`
	UserID      uint64         `gorm:"not null;uniqueIndex:uk_moderator"`
	Username    string         `gorm:"size:32;not null;index"`
	Permissions datatypes.JSON `gorm:"not null"` // ["set_permissions", ...]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CommunityTag struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_tag"`
	Tag         string `gorm:"size:64;not null;uniqueIndex:uk_community_tag"`
	Description string `gorm:"size:255"`
	Count       int64  `gorm:"not null;default:0"` // 使用该标签的帖子数
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CommunityRule struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index"`
	Rule        string `gorm:"size:128;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KickedMember 被踢出的成员及禁入期限
type KickedMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_kicked"`
	UserID      uint64 `gorm:"not null;uniqueIndex:uk_kicked"`
	Period      string `gorm:"size:16;not null"` // hour / day / week / forever
	PeriodEnd   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
