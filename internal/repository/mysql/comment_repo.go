package mysql

import (
	"neighbourhood/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create 创建评论并增加帖子评论计数
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		commRepo := &CommunityRepository{DB: tx}
		return commRepo.TouchActivity(tx, comment.CommunityID)
	})
}

func (r *CommentRepository) FindByID(id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.First(&comment, id).Error
	return &comment, err
}

// ListByPost 帖子下的评论（含回复），过滤隐藏与已删除
func (r *CommentRepository) ListByPost(postID uint64, offset, limit int) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.
		Where("post_id = ? AND removed = ? AND hidden = ?", postID, false, false).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Edit 更新内容并追加编辑历史，precursor 为编辑前内容
func (r *CommentRepository) Edit(comment *model.Comment, newMessage string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.CommentEdit{
			CommentID: comment.ID,
			Precursor: comment.Message,
		}).Error; err != nil {
			return err
		}
		return tx.Model(comment).Update("message", newMessage).Error
	})
}

func (r *CommentRepository) ListEdits(commentID uint64) ([]model.CommentEdit, error) {
	var edits []model.CommentEdit
	err := r.DB.Where("comment_id = ?", commentID).Order("id ASC").Find(&edits).Error
	return edits, err
}

// SoftDelete 软删除评论及其回复，按删除行数回减帖子评论计数
func (r *CommentRepository) SoftDelete(comment *model.Comment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Comment{}).
			Where("(id = ? OR reply_to = ?) AND removed = ?", comment.ID, comment.ID, false).
			Update("removed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已删除，幂等
			return nil
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count >= ? THEN comment_count - ? ELSE 0 END", res.RowsAffected, res.RowsAffected)).Error
	})
}

func (r *CommentRepository) SetHidden(id uint64, hidden bool) error {
	return r.DB.Model(&model.Comment{}).Where("id = ?", id).Update("hidden", hidden).Error
}
