package mysql

import (
	"neighbourhood/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ? OR email = ?", username, username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) UpdatePassword(user *model.User, newPassword string) error {
	return r.DB.Model(user).Update("password", newPassword).Error
}

// UpdateFields 只更新清洗后的字段集
func (r *UserRepository) UpdateFields(id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// AdjustPostCount 帖子计数增减，防负数
func (r *UserRepository) AdjustPostCount(tx *gorm.DB, userID uint64, delta int64) error {
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("post_count", gorm.Expr("CASE WHEN post_count + ? > 0 THEN post_count + ? ELSE 0 END", delta, delta)).Error
}

// Delete 删除账号。
// TODO: 级联清理该用户的帖子与评论，目前只删除账号本身与成员关系
func (r *UserRepository) Delete(id uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.CommunityModerator{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}
