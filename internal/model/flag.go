package model

import "time"

// 可打标对象类型
const (
	TargetPost      = "post"
	TargetComment   = "comment"
	TargetCommunity = "community"
)

// Flag 某对象上的一个标记标签；标签词表由 options 配置
type Flag struct {
	ID         uint64 `gorm:"primaryKey"`
	TargetType string `gorm:"size:16;not null;uniqueIndex:uk_target_label"`
	TargetID   uint64 `gorm:"not null;uniqueIndex:uk_target_label;index:idx_target"`
	Label      string `gorm:"size:64;not null;uniqueIndex:uk_target_label"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Reporters []FlagReporter `gorm:"foreignKey:FlagID"`
}

// FlagReporter flaggedBy 集合语义：同一用户对同一标记只记一次
type FlagReporter struct {
	ID        uint64 `gorm:"primaryKey"`
	FlagID    uint64 `gorm:"not null;index;uniqueIndex:uk_flag_user"`
	Username  string `gorm:"size:32;not null;uniqueIndex:uk_flag_user"`
	CreatedAt time.Time
}
