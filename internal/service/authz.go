package service

import (
	"errors"

	"neighbourhood/internal/model"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

// 版主具名权限
const (
	PermSetPermissions   = "set_permissions"
	PermSetModerators    = "set_moderators"
	PermRemoveModerators = "remove_moderators"
	PermRemoveCommunity  = "remove_community"
)

// AllPermissions 社区创建者获得的完整权限集
var AllPermissions = []string{
	PermSetPermissions,
	PermSetModerators,
	PermRemoveModerators,
	PermRemoveCommunity,
}

// Capabilities 一次鉴权决策的产物，所有受限操作统一消费它，
// 管理员隐含全部能力，不在各调用点单独判断 role
type Capabilities struct {
	Admin     bool
	Moderator bool
	perms     map[string]struct{}
}

func (c Capabilities) CanModerate() bool {
	return c.Admin || c.Moderator
}

func (c Capabilities) Has(perm string) bool {
	if c.Admin {
		return true
	}
	if !c.Moderator {
		return false
	}
	_, ok := c.perms[perm]
	return ok
}

type AuthzService struct {
	modRepo  *mysql.ModeratorRepository
	commRepo *mysql.CommunityRepository
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{
		modRepo:  &mysql.ModeratorRepository{DB: db},
		commRepo: &mysql.CommunityRepository{DB: db},
	}
}

// Capabilities 计算用户在某社区内的能力集
func (s *AuthzService) Capabilities(user *model.User, communityID uint64) (Capabilities, error) {
	caps := Capabilities{Admin: user.IsAdmin()}
	perms, isMod, err := s.modRepo.Permissions(communityID, user.Username)
	if err != nil {
		return caps, err
	}
	caps.Moderator = isMod
	caps.perms = make(map[string]struct{}, len(perms))
	for _, p := range perms {
		caps.perms[p] = struct{}{}
	}
	return caps, nil
}

// IsModerator 判断用户是否为社区版主；传入 required 时，
// 版主的权限集必须包含全部要求的权限。当前社区状态的纯函数，无副作用
func (s *AuthzService) IsModerator(username, communityTitle string, required ...string) (bool, error) {
	community, err := s.commRepo.FindByTitle(communityTitle)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	perms, isMod, err := s.modRepo.Permissions(community.ID, username)
	if err != nil || !isMod {
		return false, err
	}
	held := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		held[p] = struct{}{}
	}
	for _, req := range required {
		if _, ok := held[req]; !ok {
			return false, nil
		}
	}
	return true, nil
}
