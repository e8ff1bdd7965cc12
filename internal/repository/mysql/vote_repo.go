package mysql

import (
	"errors"

	"neighbourhood/internal/model"

	"gorm.io/gorm"
)

type CommentVoteRepository struct {
	DB *gorm.DB
}

// Vote 赞/踩互斥切换。重复同方向投票为幂等 no-op；
// 反方向投票会先撤销原方向再记入新方向。返回是否发生变化。
func (r *CommentVoteRepository) Vote(commentID, userID uint64, value int8) (bool, error) {
	var changed bool
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.CommentVote
		err := lockForUpdate(tx).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			First(&vote).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err = tx.Create(&model.CommentVote{
				CommentID: commentID,
				UserID:    userID,
				Value:     value,
			}).Error; err != nil {
				return err
			}
			changed = true
			return r.adjustCount(tx, commentID, value, +1)
		}
		if err != nil {
			return err
		}
		if vote.Value == value {
			// 同方向重复投票，幂等
			return nil
		}
		if err = tx.Model(&vote).Update("value", value).Error; err != nil {
			return err
		}
		changed = true
		if err = r.adjustCount(tx, commentID, vote.Value, -1); err != nil {
			return err
		}
		return r.adjustCount(tx, commentID, value, +1)
	})
	return changed, err
}

// Unvote 撤销投票，无投票记录时幂等
func (r *CommentVoteRepository) Unvote(commentID, userID uint64) (bool, error) {
	var changed bool
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.CommentVote
		err := lockForUpdate(tx).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			First(&vote).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err = tx.Delete(&vote).Error; err != nil {
			return err
		}
		changed = true
		return r.adjustCount(tx, commentID, vote.Value, -1)
	})
	return changed, err
}

func (r *CommentVoteRepository) Find(commentID, userID uint64) (*model.CommentVote, error) {
	var vote model.CommentVote
	err := r.DB.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&vote).Error
	return &vote, err
}

// adjustCount 维护评论上的冗余计数列，防负数
func (r *CommentVoteRepository) adjustCount(tx *gorm.DB, commentID uint64, value int8, delta int64) error {
	column := "upvote_count"
	if value == model.VoteDown {
		column = "downvote_count"
	}
	return tx.Model(&model.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn(column, gorm.Expr("CASE WHEN "+column+" + ? > 0 THEN "+column+" + ? ELSE 0 END", delta, delta)).Error
}
