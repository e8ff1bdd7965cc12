package mysql

import (
	"errors"

	"neighbourhood/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	DB *gorm.DB
}

/*
社区标签词表
*/

func (r *TagRepository) ListCommunityTags(communityID uint64) ([]model.CommunityTag, error) {
	var tags []model.CommunityTag
	err := r.DB.Where("community_id = ?", communityID).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *TagRepository) FindCommunityTag(communityID uint64, tag string) (*model.CommunityTag, error) {
	var t model.CommunityTag
	err := r.DB.Where("community_id = ? AND tag = ?", communityID, tag).First(&t).Error
	return &t, err
}

func (r *TagRepository) CountCommunityTags(communityID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CommunityTag{}).Where("community_id = ?", communityID).Count(&count).Error
	return count, err
}

// AddCommunityTag 幂等添加词表项
func (r *TagRepository) AddCommunityTag(communityID uint64, tag, description string) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "tag"}},
		DoNothing: true,
	}).Create(&model.CommunityTag{
		CommunityID: communityID,
		Tag:         tag,
		Description: description,
	}).Error
}

// RemoveCommunityTag 移除词表项并清掉帖子上对应的标签
func (r *TagRepository) RemoveCommunityTag(communityID uint64, tag string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("community_id = ? AND tag = ?", communityID, tag).
			Delete(&model.CommunityTag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("tag = ? AND post_id IN (?)", tag,
			tx.Model(&model.Post{}).Select("id").Where("community_id = ?", communityID),
		).Delete(&model.PostTag{}).Error
	})
}

/*
帖子标签
*/

// TagPost 给帖子打标签：每用户每帖最多一个；同步社区词表计数
func (r *TagRepository) TagPost(postID, userID, communityID uint64, tag string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.PostTag
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			return errTagExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err = tx.Create(&model.PostTag{PostID: postID, UserID: userID, Tag: tag}).Error; err != nil {
			return err
		}
		return tx.Model(&model.CommunityTag{}).
			Where("community_id = ? AND tag = ?", communityID, tag).
			UpdateColumn("count", gorm.Expr("count + 1")).Error
	})
}

// UntagPost 取消标签并回减词表计数
func (r *TagRepository) UntagPost(postID, userID, communityID uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.PostTag
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		if err = tx.Delete(&existing).Error; err != nil {
			return err
		}
		return tx.Model(&model.CommunityTag{}).
			Where("community_id = ? AND tag = ?", communityID, existing.Tag).
			UpdateColumn("count", gorm.Expr("CASE WHEN count > 0 THEN count - 1 ELSE 0 END")).Error
	})
}

func (r *TagRepository) ListPostTags(postID uint64) ([]model.PostTag, error) {
	var tags []model.PostTag
	err := r.DB.Where("post_id = ?", postID).Order("id ASC").Find(&tags).Error
	return tags, err
}

var errTagExists = errors.New("tag exists")

// IsTagExists 区分唯一约束冲突
func IsTagExists(err error) bool {
	return errors.Is(err, errTagExists)
}
