package service

import (
	"context"
	"errors"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

type FlagService struct {
	repo        *mysql.FlagRepository
	postRepo    *mysql.PostRepository
	commentRepo *mysql.CommentRepository
	accessor    *Accessor
	authz       *AuthzService
	opts        *OptionsService
}

// FlaggedContent 管理面板条目：待处理对象及其标记
type FlaggedContent struct {
	TargetType string         `json:"target_type"`
	Post       *model.Post    `json:"post,omitempty"`
	Comment    *model.Comment `json:"comment,omitempty"`
	Flags      []model.Flag   `json:"flags"`
}

func NewFlagService(db *gorm.DB, opts *OptionsService) *FlagService {
	return &FlagService{
		repo:        &mysql.FlagRepository{DB: db},
		postRepo:    &mysql.PostRepository{DB: db},
		commentRepo: &mysql.CommentRepository{DB: db},
		accessor:    NewAccessor(db),
		authz:       NewAuthzService(db),
		opts:        opts,
	}
}

// Flag 打标记。标签必须在管理员配置的词表内；
// 同一用户对同一 (对象, 标签) 重复打标为幂等
func (s *FlagService) Flag(ctx context.Context, user *model.User, targetType string, targetID uint64, label string) error {
	if err := s.checkLabel(ctx, label); err != nil {
		return err
	}
	if _, err := s.target(targetType, targetID, user.IsAdmin()); err != nil {
		return err
	}
	return s.repo.Flag(targetType, targetID, label, user.Username)
}

// Unflag 撤销本人的举报：标签不存在返回 NotFound，
// 用户不在 flaggedBy 中返回 Forbidden
func (s *FlagService) Unflag(user *model.User, targetType string, targetID uint64, label string) error {
	if _, err := s.target(targetType, targetID, user.IsAdmin()); err != nil {
		return err
	}
	err := s.repo.Unflag(targetType, targetID, label, user.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFound("flag %q not found", label)
	}
	if errors.Is(err, mysql.ErrNotReporter) {
		return pkg.Forbidden("user has not flagged this content with %q", label)
	}
	return err
}

// Resolve 版主清空对象上的全部标记；show=true 时同时取消隐藏
func (s *FlagService) Resolve(user *model.User, targetType string, targetID uint64, show bool) error {
	communityID, err := s.communityOf(targetType, targetID, user.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(user, communityID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can resolve flags")
	}

	if err := s.repo.Resolve(targetType, targetID, user.Username); err != nil {
		return err
	}
	if show {
		switch targetType {
		case model.TargetPost:
			return s.postRepo.SetHidden(targetID, false)
		case model.TargetComment:
			return s.commentRepo.SetHidden(targetID, false)
		}
	}
	return nil
}

func (s *FlagService) ListForTarget(targetType string, targetID uint64, isAdmin bool) ([]model.Flag, error) {
	if _, err := s.target(targetType, targetID, isAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListForTarget(targetType, targetID)
}

// Dashboard 管理面板：当前有标记的帖子与评论
func (s *FlagService) Dashboard(limit int) ([]FlaggedContent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var result []FlaggedContent
	postIDs, err := s.repo.ListFlaggedTargets(model.TargetPost, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range postIDs {
		post, err := s.postRepo.FindByID(id)
		if err != nil {
			continue
		}
		flags, err := s.repo.ListForTarget(model.TargetPost, id)
		if err != nil {
			return nil, err
		}
		result = append(result, FlaggedContent{TargetType: model.TargetPost, Post: post, Flags: flags})
	}

	commentIDs, err := s.repo.ListFlaggedTargets(model.TargetComment, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range commentIDs {
		comment, err := s.commentRepo.FindByID(id)
		if err != nil {
			continue
		}
		flags, err := s.repo.ListForTarget(model.TargetComment, id)
		if err != nil {
			return nil, err
		}
		result = append(result, FlaggedContent{TargetType: model.TargetComment, Comment: comment, Flags: flags})
	}
	return result, nil
}

func (s *FlagService) checkLabel(ctx context.Context, label string) error {
	vocabulary, err := s.opts.FlagVocabulary(ctx)
	if err != nil {
		return err
	}
	for _, v := range vocabulary {
		if v == label {
			return nil
		}
	}
	return pkg.Forbidden("flag %q is not in the configured vocabulary", label)
}

// target 解析标记对象，套用统一的存在性与软删除可见性规则
func (s *FlagService) target(targetType string, targetID uint64, isAdmin bool) (any, error) {
	switch targetType {
	case model.TargetPost:
		return s.accessor.Post(targetID, isAdmin)
	case model.TargetComment:
		return s.accessor.Comment(targetID, isAdmin)
	case model.TargetCommunity:
		return s.accessor.CommunityByID(targetID, isAdmin)
	default:
		return nil, pkg.BadRequest("invalid flag target type %q", targetType)
	}
}

// communityOf 标记对象所属的社区
func (s *FlagService) communityOf(targetType string, targetID uint64, isAdmin bool) (uint64, error) {
	switch targetType {
	case model.TargetPost:
		post, err := s.accessor.Post(targetID, isAdmin)
		if err != nil {
			return 0, err
		}
		return post.CommunityID, nil
	case model.TargetComment:
		comment, err := s.accessor.Comment(targetID, isAdmin)
		if err != nil {
			return 0, err
		}
		return comment.CommunityID, nil
	case model.TargetCommunity:
		community, err := s.accessor.CommunityByID(targetID, isAdmin)
		if err != nil {
			return 0, err
		}
		return community.ID, nil
	default:
		return 0, pkg.BadRequest("invalid flag target type %q", targetType)
	}
}
