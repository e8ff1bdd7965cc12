package mysql

import (
	"encoding/json"
	"errors"

	"neighbourhood/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModeratorRepository struct {
	DB *gorm.DB
}

func (r *ModeratorRepository) Find(communityID uint64, username string) (*model.CommunityModerator, error) {
	var mod model.CommunityModerator
	err := r.DB.Where("community_id = ? AND username = ?", communityID, username).First(&mod).Error
	return &mod, err
}

func (r *ModeratorRepository) List(communityID uint64) ([]model.CommunityModerator, error) {
	var mods []model.CommunityModerator
	err := r.DB.Where("community_id = ?", communityID).Order("id ASC").Find(&mods).Error
	return mods, err
}

// Add 幂等添加版主
func (r *ModeratorRepository) Add(communityID uint64, user *model.User, permissions []string) error {
	perms, _ := json.Marshal(permissions)
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.CommunityModerator{
		CommunityID: communityID,
		UserID:      user.ID,
		Username:    user.Username,
		Permissions: datatypes.JSON(perms),
	}).Error
}

func (r *ModeratorRepository) Remove(communityID uint64, username string) (bool, error) {
	res := r.DB.Where("community_id = ? AND username = ?", communityID, username).
		Delete(&model.CommunityModerator{})
	return res.RowsAffected > 0, res.Error
}

func (r *ModeratorRepository) SetPermissions(communityID uint64, username string, permissions []string) (bool, error) {
	perms, _ := json.Marshal(permissions)
	res := r.DB.Model(&model.CommunityModerator{}).
		Where("community_id = ? AND username = ?", communityID, username).
		Update("permissions", datatypes.JSON(perms))
	return res.RowsAffected > 0, res.Error
}

// Permissions 解析某版主的权限集；非版主返回 (nil, false)
func (r *ModeratorRepository) Permissions(communityID uint64, username string) ([]string, bool, error) {
	mod, err := r.Find(communityID, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var perms []string
	if err := json.Unmarshal(mod.Permissions, &perms); err != nil {
		return nil, true, err
	}
	return perms, true, nil
}

// CountWithPermission 统计持有某权限的版主数（防锁死校验用）
func (r *ModeratorRepository) CountWithPermission(communityID uint64, permission string) (int64, error) {
	mods, err := r.List(communityID)
	if err != nil {
		return 0, err
	}
	var n int64
	for i := range mods {
		var perms []string
		if err := json.Unmarshal(mods[i].Permissions, &perms); err != nil {
			continue
		}
		for _, p := range perms {
			if p == permission {
				n++
				break
			}
		}
	}
	return n, nil
}
