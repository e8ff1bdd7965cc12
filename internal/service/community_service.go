package service

import (
	"context"
	"errors"
	"time"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

// communityProtectedFields 社区 patch 的禁改字段
var communityProtectedFields = []string{"id", "title", "creator_id", "member_count", "removed", "latest_activity"}

type CommunityService struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	modRepo    *mysql.ModeratorRepository
	tagRepo    *mysql.TagRepository
	accessor   *Accessor
	authz      *AuthzService
	opts       *OptionsService
}

func NewCommunityService(db *gorm.DB, opts *OptionsService) *CommunityService {
	return &CommunityService{
		repo:       &mysql.CommunityRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		modRepo:    &mysql.ModeratorRepository{DB: db},
		tagRepo:    &mysql.TagRepository{DB: db},
		accessor:   NewAccessor(db),
		authz:      NewAuthzService(db),
		opts:       opts,
	}
}

// CreateCommunity 创建者成为唯一成员与持有全部权限的版主，
// 参与度按社区创建权重记入
func (s *CommunityService) CreateCommunity(ctx context.Context, user *model.User, title, description string) (*model.Community, error) {
	rules, err := s.opts.Validation(ctx)
	if err != nil {
		return nil, err
	}
	if len(title) < rules.MinTitleLength || len(title) > rules.MaxTitleLength {
		return nil, pkg.Forbidden("title length must be between %d and %d", rules.MinTitleLength, rules.MaxTitleLength)
	}
	if hit := containsDisallowed(title, rules.DisallowedStrings); hit != "" {
		return nil, pkg.Forbidden("title contains disallowed string %q", hit)
	}
	if _, err := s.repo.FindByTitle(title); err == nil {
		return nil, pkg.Forbidden("community %s already exists", title)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	weights, err := s.opts.EngagementWeights(ctx)
	if err != nil {
		return nil, err
	}

	community := &model.Community{
		Title:       title,
		Description: description,
		CreatorID:   user.ID,
	}
	if err := s.repo.Create(community, user, AllPermissions, weights.Community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) GetCommunity(title string, isAdmin bool) (*model.Community, error) {
	return s.accessor.Community(title, isAdmin)
}

func (s *CommunityService) ListCommunities(page, size int, isAdmin bool) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	return s.repo.List(offset, size, isAdmin)
}

// UpdateCommunity 版主更新社区资料，经 patch 清洗
func (s *CommunityService) UpdateCommunity(user *model.User, title string, updates map[string]any) (*model.Community, error) {
	community, err := s.accessor.Community(title, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	caps, err := s.authz.Capabilities(user, community.ID)
	if err != nil {
		return nil, err
	}
	if !caps.CanModerate() {
		return nil, pkg.Forbidden("only moderators can update community %s", title)
	}

	current := map[string]any{
		"description": community.Description,
	}
	fields, err := pkg.SanitizePatch(updates, current, communityProtectedFields)
	if err != nil {
		return nil, err
	}
	if err = s.repo.UpdateFields(community.ID, fields); err != nil {
		return nil, err
	}
	return s.accessor.Community(title, user.IsAdmin())
}

// RemoveCommunity 软删除，需要 remove_community 权限
func (s *CommunityService) RemoveCommunity(user *model.User, title string) error {
	community, err := s.accessor.Community(title, user.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(user, community.ID)
	if err != nil {
		return err
	}
	if !caps.Has(PermRemoveCommunity) {
		return pkg.Forbidden("missing %s permission", PermRemoveCommunity)
	}
	return s.repo.SetRemoved(community.ID, true)
}

// PurgeCommunity 管理员硬删除
func (s *CommunityService) PurgeCommunity(title string) error {
	community, err := s.accessor.Community(title, true)
	if err != nil {
		return err
	}
	return s.repo.Purge(community.ID)
}

func (s *CommunityService) Join(user *model.User, title string) error {
	community, err := s.accessor.Community(title, false)
	if err != nil {
		return err
	}
	kicked, err := s.memberRepo.IsKicked(community.ID, user.ID)
	if err != nil {
		return err
	}
	if kicked {
		return pkg.Forbidden("user has been kicked from community %s", title)
	}
	_, err = s.memberRepo.Join(community.ID, user.ID)
	return err
}

// Leave 退出社区。memberCount > 1 时最后一个持有 set_permissions 的版主
// 不能退出（防锁死）；最后一个成员退出后社区软删除，Welcome 社区除外
func (s *CommunityService) Leave(user *model.User, title string) error {
	community, err := s.accessor.Community(title, false)
	if err != nil {
		return err
	}

	perms, isMod, err := s.modRepo.Permissions(community.ID, user.Username)
	if err != nil {
		return err
	}
	if isMod && community.MemberCount > 1 && holds(perms, PermSetPermissions) {
		n, err := s.modRepo.CountWithPermission(community.ID, PermSetPermissions)
		if err != nil {
			return err
		}
		if n <= 1 {
			return pkg.Forbidden("community must keep at least one moderator with %s", PermSetPermissions)
		}
	}

	remaining, err := s.memberRepo.Leave(community.ID, user.ID)
	if err != nil {
		return err
	}
	if remaining == 0 && community.Title != model.WelcomeCommunity {
		return s.repo.SetRemoved(community.ID, true)
	}
	return nil
}

// Kick 踢出成员并记录禁入期限：hour / day / week / forever
func (s *CommunityService) Kick(actor *model.User, title, username, period string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can kick members")
	}
	target, err := s.accessor.UserByUsername(username)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return pkg.Forbidden("cannot kick yourself")
	}

	var periodEnd *time.Time
	switch period {
	case "hour":
		t := time.Now().Add(time.Hour)
		periodEnd = &t
	case "day":
		t := time.Now().Add(24 * time.Hour)
		periodEnd = &t
	case "week":
		t := time.Now().Add(7 * 24 * time.Hour)
		periodEnd = &t
	case "forever":
		periodEnd = nil
	default:
		return pkg.BadRequest("invalid kick period %q", period)
	}
	return s.memberRepo.Kick(community.ID, target.ID, period, periodEnd)
}

/*
版主管理
*/

func (s *CommunityService) ListModerators(title string, isAdmin bool) ([]model.CommunityModerator, error) {
	community, err := s.accessor.Community(title, isAdmin)
	if err != nil {
		return nil, err
	}
	return s.modRepo.List(community.ID)
}

// AddModerator 需要 set_moderators 权限；目标必须是社区成员
func (s *CommunityService) AddModerator(actor *model.User, title, username string, permissions []string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.Has(PermSetModerators) {
		return pkg.Forbidden("missing %s permission", PermSetModerators)
	}
	target, err := s.accessor.UserByUsername(username)
	if err != nil {
		return err
	}
	isMember, err := s.memberRepo.IsMember(community.ID, target.ID)
	if err != nil {
		return err
	}
	if !isMember {
		return pkg.Forbidden("user %s is not a member of %s", username, title)
	}
	if len(permissions) == 0 {
		permissions = []string{}
	}
	return s.modRepo.Add(community.ID, target, permissions)
}

// RemoveModerator 需要 remove_moderators 权限
func (s *CommunityService) RemoveModerator(actor *model.User, title, username string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.Has(PermRemoveModerators) {
		return pkg.Forbidden("missing %s permission", PermRemoveModerators)
	}
	removed, err := s.modRepo.Remove(community.ID, username)
	if err != nil {
		return err
	}
	if !removed {
		return pkg.NotFound("user %s is not a moderator of %s", username, title)
	}
	return nil
}

// SetModeratorPermissions 需要 set_permissions 权限。
// 注意：这里不校验是否移走了最后一个 set_permissions 持有者，
// 防锁死只在退出社区时检查
func (s *CommunityService) SetModeratorPermissions(actor *model.User, title, username string, permissions []string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.Has(PermSetPermissions) {
		return pkg.Forbidden("missing %s permission", PermSetPermissions)
	}
	ok, err := s.modRepo.SetPermissions(community.ID, username, permissions)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.NotFound("user %s is not a moderator of %s", username, title)
	}
	return nil
}

/*
标签词表与社区规则
*/

func (s *CommunityService) ListTags(title string, isAdmin bool) ([]model.CommunityTag, error) {
	community, err := s.accessor.Community(title, isAdmin)
	if err != nil {
		return nil, err
	}
	return s.tagRepo.ListCommunityTags(community.ID)
}

// AddTag 词表上限 7 个
func (s *CommunityService) AddTag(actor *model.User, title, tag, description string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can manage community tags")
	}
	count, err := s.tagRepo.CountCommunityTags(community.ID)
	if err != nil {
		return err
	}
	if count >= model.MaxCommunityTags {
		return pkg.Forbidden("Community can't have more than %d tags", model.MaxCommunityTags)
	}
	return s.tagRepo.AddCommunityTag(community.ID, tag, description)
}

func (s *CommunityService) RemoveTag(actor *model.User, title, tag string) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can manage community tags")
	}
	err = s.tagRepo.RemoveCommunityTag(community.ID, tag)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFound("tag %s not found in community %s", tag, title)
	}
	return err
}

func (s *CommunityService) ListRules(title string, isAdmin bool) ([]model.CommunityRule, error) {
	community, err := s.accessor.Community(title, isAdmin)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRules(community.ID)
}

// ReplaceRules 整体替换社区规则
func (s *CommunityService) ReplaceRules(actor *model.User, title string, rules []model.CommunityRule) error {
	community, err := s.accessor.Community(title, actor.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(actor, community.ID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can set community rules")
	}
	return s.repo.ReplaceRules(community.ID, rules)
}

func holds(perms []string, perm string) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
