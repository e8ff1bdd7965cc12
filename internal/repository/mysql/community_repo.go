package mysql

import (
	"encoding/json"
	"time"

	"neighbourhood/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 创建社区：创建者成为唯一成员与持有全部权限的版主
func (r *CommunityRepository) Create(c *model.Community, creator *model.User, permissions []string, engagement int64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		c.MemberCount = 1
		c.LatestActivity = time.Now()
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		member := &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      creator.ID,
			Engagement:  engagement,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		perms, _ := json.Marshal(permissions)
		mod := &model.CommunityModerator{
			CommunityID: c.ID,
			UserID:      creator.ID,
			Username:    creator.Username,
			Permissions: datatypes.JSON(perms),
		}
		return tx.Create(mod).Error
	})
}

func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByTitle(title string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("title = ?", title).First(&community).Error
	return &community, err
}

// List 按最新活跃排序，默认过滤已移除社区
func (r *CommunityRepository) List(offset, limit int, includeRemoved bool) ([]model.Community, error) {
	var list []model.Community
	q := r.DB.Order("latest_activity DESC")
	if !includeRemoved {
		q = q.Where("removed = ?", false)
	}
	err := q.Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// UpdateFields 只更新清洗后的字段集
func (r *CommunityRepository) UpdateFields(id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.Model(&model.Community{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CommunityRepository) SetRemoved(id uint64, removed bool) error {
	return r.DB.Model(&model.Community{}).Where("id = ?", id).Update("removed", removed).Error
}

func (r *CommunityRepository) TouchActivity(tx *gorm.DB, id uint64) error {
	return tx.Model(&model.Community{}).Where("id = ?", id).
		UpdateColumn("latest_activity", time.Now()).Error
}

// Purge 管理员硬删除：社区及其成员、版主、标签、规则、帖子、评论一并清除
func (r *CommunityRepository) Purge(id uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&model.CommunityMember{}, &model.CommunityModerator{},
			&model.CommunityTag{}, &model.CommunityRule{}, &model.KickedMember{},
		} {
			if err := tx.Where("community_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Community{}, id).Error
	})
}

/*
社区规则
*/

// ReplaceRules 整体替换社区规则
func (r *CommunityRepository) ReplaceRules(communityID uint64, rules []model.CommunityRule) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", communityID).Delete(&model.CommunityRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].CommunityID = communityID
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
}

func (r *CommunityRepository) ListRules(communityID uint64) ([]model.CommunityRule, error) {
	var rules []model.CommunityRule
	err := r.DB.Where("community_id = ?", communityID).Order("id ASC").Find(&rules).Error
	return rules, err
}
