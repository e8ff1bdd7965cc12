package mysql

import (
	"encoding/json"
	"errors"
	"time"

	"neighbourhood/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotReporter = errors.New("user has not flagged this content")

type FlagRepository struct {
	DB *gorm.DB
}

// Flag 给对象打标记。标记行不存在则创建；flaggedBy 为集合语义，
// 同一用户重复标记为幂等。新增举报时写 outbox 事件
func (r *FlagRepository) Flag(targetType string, targetID uint64, label, username string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var flag model.Flag
		err := lockForUpdate(tx).
			Where("target_type = ? AND target_id = ? AND label = ?", targetType, targetID, label).
			First(&flag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flag = model.Flag{TargetType: targetType, TargetID: targetID, Label: label}
			if err = tx.Create(&flag).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "flag_id"}, {Name: "username"}},
			DoNothing: true,
		}).Create(&model.FlagReporter{FlagID: flag.ID, Username: username})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 重复标记，幂等
			return nil
		}
		return r.insertOutbox(tx, model.EventFlagRaised, username, targetType, targetID, map[string]any{
			"label": label,
		})
	})
}

// Unflag 撤销本人的举报。标记不存在返回 ErrRecordNotFound，
// 用户不在 flaggedBy 中返回 ErrNotReporter。
// flaggedBy 清空后标记行保留，等待版主 Resolve 统一清理
func (r *FlagRepository) Unflag(targetType string, targetID uint64, label, username string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var flag model.Flag
		err := tx.Where("target_type = ? AND target_id = ? AND label = ?", targetType, targetID, label).
			First(&flag).Error
		if err != nil {
			return err
		}
		res := tx.Where("flag_id = ? AND username = ?", flag.ID, username).
			Delete(&model.FlagReporter{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotReporter
		}
		return nil
	})
}

// Resolve 清空对象上的全部标记（粗粒度，全有或全无）
func (r *FlagRepository) Resolve(targetType string, targetID uint64, actor string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := r.deleteAll(tx, targetType, targetID); err != nil {
			return err
		}
		return r.insertOutbox(tx, model.EventFlagsResolved, actor, targetType, targetID, nil)
	})
}

func (r *FlagRepository) deleteAll(tx *gorm.DB, targetType string, targetID uint64) error {
	if err := tx.Where("flag_id IN (?)",
		tx.Model(&model.Flag{}).Select("id").Where("target_type = ? AND target_id = ?", targetType, targetID),
	).Delete(&model.FlagReporter{}).Error; err != nil {
		return err
	}
	return tx.Where("target_type = ? AND target_id = ?", targetType, targetID).
		Delete(&model.Flag{}).Error
}

// ListForTarget 某对象上的标记及举报人
func (r *FlagRepository) ListForTarget(targetType string, targetID uint64) ([]model.Flag, error) {
	var flags []model.Flag
	err := r.DB.Preload("Reporters").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("id ASC").
		Find(&flags).Error
	return flags, err
}

// ListFlaggedTargets 管理面板：当前有标记的对象 id 列表
func (r *FlagRepository) ListFlaggedTargets(targetType string, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.DB.Model(&model.Flag{}).
		Distinct("target_id").
		Where("target_type = ?", targetType).
		Limit(limit).
		Pluck("target_id", &ids).Error
	return ids, err
}

// InsertEvent 供其他仓储在事务内记录审核事件
func (r *FlagRepository) InsertEvent(tx *gorm.DB, event, actor, targetType string, targetID uint64, extra map[string]any) error {
	return r.insertOutbox(tx, event, actor, targetType, targetID, extra)
}

func (r *FlagRepository) insertOutbox(tx *gorm.DB, event, actor, targetType string, targetID uint64, extra map[string]any) error {
	body := map[string]any{
		"event_time":  time.Now().UTC().Format(time.RFC3339Nano),
		"actor":       actor,
		"target_type": targetType,
		"target_id":   targetID,
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, _ := json.Marshal(body)
	return tx.Create(&model.ModerationOutbox{
		EventType:  event,
		Actor:      actor,
		TargetType: targetType,
		TargetID:   targetID,
		Payload:    string(payload),
		Status:     0,
	}).Error
}
