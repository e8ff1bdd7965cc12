package model

import "time"

// MaxPinnedPosts 每个社区最多置顶 3 帖
const MaxPinnedPosts = 3

type Post struct {
	ID           uint64 `gorm:"primaryKey"`
	CommunityID  uint64 `gorm:"not null;index:idx_community_time,priority:1"`
	CreatorID    uint64 `gorm:"not null;index"`
	Title        string `gorm:"size:200;not null"`
	Message      string `gorm:"type:text"`
	Pinned       bool   `gorm:"not null;default:false"`
	CommentCount int64  `gorm:"not null;default:0"`
	Hidden       bool   `gorm:"not null;default:false"` // 版主显式隐藏
	Removed      bool   `gorm:"not null;default:false"` // 软删除
	CreatedAt    time.Time `gorm:"index:idx_community_time,priority:2,sort:desc"`
	UpdatedAt    time.Time
}

// PostTag 帖子标签：每个用户对同一帖子最多打一个标签
type PostTag struct {
	ID        uint64 `gorm:"primaryKey"`
	PostID    uint64 `gorm:"not null;index;uniqueIndex:uk_post_user"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_post_user"`
	Tag       string `gorm:"size:64;not null;index"`
	CreatedAt time.Time
}
