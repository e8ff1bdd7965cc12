package model

import "time"

const (
	VoteUp   = int8(1)
	VoteDown = int8(-1)
)

// Comment 评论只允许一层回复：回复本身不能再被回复
type Comment struct {
	ID            uint64  `gorm:"primaryKey"`
	PostID        uint64  `gorm:"not null;index"`
	CommunityID   uint64  `gorm:"not null;index"`
	CreatorID     uint64  `gorm:"not null;index"`
	Message       string  `gorm:"type:text;not null"`
	ReplyTo       *uint64 `gorm:"index"` // 指向顶层评论
	UpvoteCount   int64   `gorm:"not null;default:0"`
	DownvoteCount int64   `gorm:"not null;default:0"`
	Hidden        bool    `gorm:"not null;default:false"`
	Removed       bool    `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CommentVote 赞/踩互斥，每用户每评论一条
type CommentVote struct {
	ID        uint64 `gorm:"primaryKey"`
	CommentID uint64 `gorm:"not null;index;uniqueIndex:uk_comment_user"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_comment_user"`
	Value     int8   `gorm:"not null"` // 1=up -1=down
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentEdit 只追加的编辑历史，precursor 保存编辑前的内容
type CommentEdit struct {
	ID        uint64 `gorm:"primaryKey"`
	CommentID uint64 `gorm:"not null;index"`
	Precursor string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
