package mysql

import (
	"neighbourhood/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		userRepo := &UserRepository{DB: tx}
		if err := userRepo.AdjustPostCount(tx, post.CreatorID, +1); err != nil {
			return err
		}
		commRepo := &CommunityRepository{DB: tx}
		return commRepo.TouchActivity(tx, post.CommunityID)
	})
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, id).Error
	return &post, err
}

// ListByCommunity 基础分页查询，过滤隐藏与已删除
func (r *PostRepository) ListByCommunity(communityID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.
		Where("community_id = ? AND removed = ? AND hidden = ?", communityID, false, false).
		Order("pinned DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListByCommunityCursor 时间游标分页：先比时间，同一时间点用 id 打破并列
func (r *PostRepository) ListByCommunityCursor(communityID uint64, lastID uint64, lastCreatedAt int64, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.Where("community_id = ? AND removed = ? AND hidden = ?", communityID, false, false)
	if lastCreatedAt > 0 {
		q = q.Where("(created_at < FROM_UNIXTIME(?) OR (created_at = FROM_UNIXTIME(?) AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// UpdateFields 只更新清洗后的字段集
func (r *PostRepository) UpdateFields(id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete 软删除帖子并级联其评论，回减作者帖子计数
func (r *PostRepository) SoftDelete(post *model.Post) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Post{}).
			Where("id = ? AND removed = ?", post.ID, false).
			Update("removed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已删除，幂等
			return nil
		}
		if err := tx.Model(&model.Comment{}).
			Where("post_id = ?", post.ID).
			Update("removed", true).Error; err != nil {
			return err
		}
		userRepo := &UserRepository{DB: tx}
		return userRepo.AdjustPostCount(tx, post.CreatorID, -1)
	})
}

// Purge 管理员硬删除：帖子连同评论、标签、标记一并清除
func (r *PostRepository) Purge(id uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		flagRepo := &FlagRepository{DB: tx}
		if err := flagRepo.deleteAll(tx, model.TargetPost, id); err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
}

func (r *PostRepository) SetHidden(id uint64, hidden bool) error {
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Update("hidden", hidden).Error
}

func (r *PostRepository) SetPinned(id uint64, pinned bool) error {
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Update("pinned", pinned).Error
}

// CountPinned 社区当前置顶数
func (r *PostRepository) CountPinned(communityID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Post{}).
		Where("community_id = ? AND pinned = ? AND removed = ?", communityID, true, false).
		Count(&count).Error
	return count, err
}
