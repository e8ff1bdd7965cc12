package service

import (
	"context"
	"errors"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

// postProtectedFields 帖子 patch 的禁改字段；置顶与隐藏走专用接口
var postProtectedFields = []string{"id", "community_id", "creator_id", "pinned", "comment_count", "hidden", "removed"}

type PostService struct {
	repo       *mysql.PostRepository
	memberRepo *mysql.CommunityMemberRepository
	tagRepo    *mysql.TagRepository
	flagRepo   *mysql.FlagRepository
	accessor   *Accessor
	authz      *AuthzService
	opts       *OptionsService
}

func NewPostService(db *gorm.DB, opts *OptionsService) *PostService {
	return &PostService{
		repo:       &mysql.PostRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		tagRepo:    &mysql.TagRepository{DB: db},
		flagRepo:   &mysql.FlagRepository{DB: db},
		accessor:   NewAccessor(db),
		authz:      NewAuthzService(db),
		opts:       opts,
	}
}

// CreatePost 社区成员发帖；带置顶创建时同样受 3 帖上限约束
func (s *PostService) CreatePost(ctx context.Context, user *model.User, communityTitle, title, message string, pinned bool) (*model.Post, error) {
	community, err := s.accessor.Community(communityTitle, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	isMember, err := s.memberRepo.IsMember(community.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkg.Forbidden("user is not a member of community %s", communityTitle)
	}

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

	if pinned {
		caps, err := s.authz.Capabilities(user, community.ID)
		if err != nil {
			return nil, err
		}
		if !caps.CanModerate() {
			return nil, pkg.Forbidden("only moderators can pin posts")
		}
		if err := s.checkPinLimit(community.ID); err != nil {
			return nil, err
		}
	}

	post := &model.Post{
		CommunityID: community.ID,
		CreatorID:   user.ID,
		Title:       title,
		Message:     message,
		Pinned:      pinned,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}

	if err := s.adjustEngagement(ctx, community.ID, user.ID, +1); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(id uint64, isAdmin bool) (*model.Post, error) {
	return s.accessor.Post(id, isAdmin)
}

func (s *PostService) ListByCommunity(communityTitle string, page, size int, isAdmin bool) ([]model.Post, error) {
	community, err := s.accessor.Community(communityTitle, isAdmin)
	if err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	return s.repo.ListByCommunity(community.ID, offset, size)
}

// ListByCommunityCursor 游标分页：首次不传 lastID/lastCreatedAt（或传 0）
func (s *PostService) ListByCommunityCursor(communityTitle string, lastID uint64, lastCreatedAt int64, size int, isAdmin bool) ([]model.Post, uint64, int64, error) {
	community, err := s.accessor.Community(communityTitle, isAdmin)
	if err != nil {
		return nil, 0, 0, err
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.repo.ListByCommunityCursor(community.ID, lastID, lastCreatedAt, size)
	if err != nil {
		return nil, 0, 0, err
	}
	var nextID uint64
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}

// UpdatePost 作者或版主更新帖子，经 patch 清洗
func (s *PostService) UpdatePost(user *model.User, id uint64, updates map[string]any) (*model.Post, error) {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	if post.CreatorID != user.ID {
		caps, err := s.authz.Capabilities(user, post.CommunityID)
		if err != nil {
			return nil, err
		}
		if !caps.CanModerate() {
			return nil, pkg.Forbidden("only the author or a moderator can update this post")
		}
	}

	current := map[string]any{
		"title":   post.Title,
		"message": post.Message,
	}
	fields, err := pkg.SanitizePatch(updates, current, postProtectedFields)
	if err != nil {
		return nil, err
	}
	if err = s.repo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	return s.accessor.Post(id, user.IsAdmin())
}

// DeletePost 软删除，级联评论并回减参与度
func (s *PostService) DeletePost(ctx context.Context, user *model.User, id uint64) error {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return err
	}
	if post.CreatorID != user.ID {
		caps, err := s.authz.Capabilities(user, post.CommunityID)
		if err != nil {
			return err
		}
		if !caps.CanModerate() {
			return pkg.Forbidden("only the author or a moderator can delete this post")
		}
	}
	if err := s.repo.SoftDelete(post); err != nil {
		return err
	}
	return s.adjustEngagement(ctx, post.CommunityID, post.CreatorID, -1)
}

// PurgePost 管理员硬删除
func (s *PostService) PurgePost(actor *model.User, id uint64) error {
	post, err := s.accessor.Post(id, true)
	if err != nil {
		return err
	}
	if err := s.repo.Purge(id); err != nil {
		return err
	}
	return s.flagRepo.InsertEvent(s.repo.DB, model.EventContentPurged, actor.Username, model.TargetPost, post.ID, nil)
}

// SetPinned 版主置顶/取消置顶；每个社区最多 3 帖
func (s *PostService) SetPinned(user *model.User, id uint64, pinned bool) error {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(user, post.CommunityID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can pin posts")
	}
	if pinned && !post.Pinned {
		if err := s.checkPinLimit(post.CommunityID); err != nil {
			return err
		}
	}
	return s.repo.SetPinned(id, pinned)
}

// SetHidden 版主隐藏/恢复显示
func (s *PostService) SetHidden(user *model.User, id uint64, hidden bool) error {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(user, post.CommunityID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can hide posts")
	}
	if err := s.repo.SetHidden(id, hidden); err != nil {
		return err
	}
	event := model.EventContentHidden
	if !hidden {
		event = model.EventContentShown
	}
	return s.flagRepo.InsertEvent(s.repo.DB, event, user.Username, model.TargetPost, id, nil)
}

/*
帖子标签
*/

// TagPost 标签必须在社区词表内；每用户每帖最多一个
func (s *PostService) TagPost(user *model.User, id uint64, tag string) error {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return err
	}
	isMember, err := s.memberRepo.IsMember(post.CommunityID, user.ID)
	if err != nil {
		return err
	}
	if !isMember {
		return pkg.Forbidden("user is not a member of this community")
	}
	if _, err := s.tagRepo.FindCommunityTag(post.CommunityID, tag); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.Forbidden("tag %q is not in the community tag list", tag)
		}
		return err
	}
	err = s.tagRepo.TagPost(id, user.ID, post.CommunityID, tag)
	if mysql.IsTagExists(err) {
		return pkg.Forbidden("user has already tagged this post")
	}
	return err
}

func (s *PostService) UntagPost(user *model.User, id uint64) error {
	post, err := s.accessor.Post(id, user.IsAdmin())
	if err != nil {
		return err
	}
	err = s.tagRepo.UntagPost(id, user.ID, post.CommunityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFound("user has not tagged this post")
	}
	return err
}

func (s *PostService) ListTags(id uint64, isAdmin bool) ([]model.PostTag, error) {
	if _, err := s.accessor.Post(id, isAdmin); err != nil {
		return nil, err
	}
	return s.tagRepo.ListPostTags(id)
}

func (s *PostService) checkPinLimit(communityID uint64) error {
	count, err := s.repo.CountPinned(communityID)
	if err != nil {
		return err
	}
	if count >= model.MaxPinnedPosts {
		return pkg.Forbidden("Community can't have more than %d pinned posts", model.MaxPinnedPosts)
	}
	return nil
}

// adjustEngagement 按帖子权重增减参与度；无成员记录时静默不生效
func (s *PostService) adjustEngagement(ctx context.Context, communityID, userID uint64, sign int64) error {
	weights, err := s.opts.EngagementWeights(ctx)
	if err != nil {
		return err
	}
	return s.memberRepo.AdjustEngagement(s.memberRepo.DB, communityID, userID, sign*weights.Post)
}
