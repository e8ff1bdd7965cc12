package mysql

import (
	"errors"
	"time"

	"neighbourhood/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 幂等加入：已存在 (community_id, user_id) 则复活 removed 标记，不重复计数
func (r *CommunityMemberRepository) Join(communityID, userID uint64) (bool, error) {
	var joined bool
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var member model.CommunityMember
		err := lockForUpdate(tx).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			First(&member).Error
		if err == nil {
			if !member.Removed {
				// 已是成员，幂等
				return nil
			}
			if err = tx.Model(&member).Update("removed", false).Error; err != nil {
				return err
			}
			joined = true
			return r.adjustMemberCount(tx, communityID, +1)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err = tx.Create(&model.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
		}).Error; err != nil {
			return err
		}
		joined = true
		return r.adjustMemberCount(tx, communityID, +1)
	})
	return joined, err
}

// Leave 退出社区；返回退出后的成员数
func (r *CommunityMemberRepository) Leave(communityID, userID uint64) (int64, error) {
	var remaining int64 = -1
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("community_id = ? AND user_id = ? AND removed = ?", communityID, userID, false).
			Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 本就不是成员，幂等
			return nil
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&model.CommunityModerator{}).Error; err != nil {
			return err
		}
		if err := r.adjustMemberCount(tx, communityID, -1); err != nil {
			return err
		}
		var c model.Community
		if err := tx.Select("member_count").First(&c, communityID).Error; err != nil {
			return err
		}
		remaining = c.MemberCount
		return nil
	})
	return remaining, err
}

func (r *CommunityMemberRepository) IsMember(communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND removed = ?", communityID, userID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) Find(communityID, userID uint64) (*model.CommunityMember, error) {
	var member model.CommunityMember
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).First(&member).Error
	return &member, err
}

func (r *CommunityMemberRepository) CountMembers(communityID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND removed = ?", communityID, false).
		Count(&count).Error
	return count, err
}

// AdjustEngagement 参与度原子增减。无成员记录时静默匹配零行，不报错
func (r *CommunityMemberRepository) AdjustEngagement(tx *gorm.DB, communityID, userID uint64, delta int64) error {
	return tx.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		UpdateColumn("engagement", gorm.Expr("engagement + ?", delta)).Error
}

func (r *CommunityMemberRepository) adjustMemberCount(tx *gorm.DB, communityID uint64, delta int64) error {
	return tx.Model(&model.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("member_count", gorm.Expr("CASE WHEN member_count + ? > 0 THEN member_count + ? ELSE 0 END", delta, delta)).Error
}

/*
踢出成员
*/

// Kick 移除成员并记录禁入期限
func (r *CommunityMemberRepository) Kick(communityID, userID uint64, period string, periodEnd *time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := r.adjustMemberCount(tx, communityID, -1); err != nil {
				return err
			}
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&model.CommunityModerator{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"period", "period_end"}),
		}).Create(&model.KickedMember{
			CommunityID: communityID,
			UserID:      userID,
			Period:      period,
			PeriodEnd:   periodEnd,
		}).Error
	})
}

// IsKicked 判断当前是否处于禁入期
func (r *CommunityMemberRepository) IsKicked(communityID, userID uint64) (bool, error) {
	var k model.KickedMember
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if k.PeriodEnd == nil {
		// forever
		return true, nil
	}
	return k.PeriodEnd.After(time.Now()), nil
}
