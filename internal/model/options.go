package model

import (
	"time"

	"gorm.io/datatypes"
)

// options 组件键
const (
	OptionsValidation = "validation"
	OptionsFlags      = "flags"
	OptionsEngagement = "engagement"
)

// Options 按组件键存放的可调业务配置（校验边界、禁用字符串、参与度权重、标记词表）
type Options struct {
	ID        uint64         `gorm:"primaryKey"`
	Component string         `gorm:"uniqueIndex;size:32;not null"`
	Settings  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Options) TableName() string { return "options" }
