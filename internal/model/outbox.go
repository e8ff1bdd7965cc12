package model

import "time"

// 审核事件类型
const (
	EventFlagRaised    = "flag_raised"
	EventFlagsResolved = "flags_resolved"
	EventContentHidden = "content_hidden"
	EventContentShown  = "content_shown"
	EventContentPurged = "content_purged"
)

// ModerationOutbox 审核事件监控表，异步投递到 kafka
type ModerationOutbox struct {
	ID         uint64 `gorm:"primaryKey"`
	EventType  string `gorm:"size:32;not null"`
	Actor      string `gorm:"size:32;not null"` // 触发事件的用户名
	TargetType string `gorm:"size:16;not null"`
	TargetID   uint64 `gorm:"not null"`
	Payload    string `gorm:"type:json;not null"`
	Status     int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry      int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ModerationOutbox) TableName() string { return "moderation_outbox" }
