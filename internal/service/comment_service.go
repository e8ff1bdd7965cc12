package service

import (
	"context"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommentService struct {
	repo       *mysql.CommentRepository
	voteRepo   *mysql.CommentVoteRepository
	memberRepo *mysql.CommunityMemberRepository
	accessor   *Accessor
	authz      *AuthzService
	opts       *OptionsService
}

func NewCommentService(db *gorm.DB, opts *OptionsService) *CommentService {
	return &CommentService{
		repo:       &mysql.CommentRepository{DB: db},
		voteRepo:   &mysql.CommentVoteRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		accessor:   NewAccessor(db),
		authz:      NewAuthzService(db),
		opts:       opts,
	}
}

// CreateComment 社区成员评论；replyTo 只能指向顶层评论（单层回复）
func (s *CommentService) CreateComment(ctx context.Context, user *model.User, postID uint64, message string, replyTo *uint64) (*model.Comment, error) {
	post, err := s.accessor.Post(postID, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	isMember, err := s.memberRepo.IsMember(post.CommunityID, user.ID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkg.Forbidden("user is not a member of this community")
	}
	if message == "" {
		return nil, pkg.BadRequest("comment message required")
	}

	if replyTo != nil {
		parent, err := s.accessor.Comment(*replyTo, user.IsAdmin())
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, pkg.BadRequest("reply target belongs to a different post")
		}
		if parent.ReplyTo != nil {
			return nil, pkg.Forbidden("replies cannot be replied to")
		}
	}

	comment := &model.Comment{
		PostID:      postID,
		CommunityID: post.CommunityID,
		CreatorID:   user.ID,
		Message:     message,
		ReplyTo:     replyTo,
	}
	if err := s.repo.Create(comment); err != nil {
		return nil, err
	}

	if err := s.adjustEngagement(ctx, post.CommunityID, user.ID, +1); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetComment(id uint64, isAdmin bool) (*model.Comment, error) {
	return s.accessor.Comment(id, isAdmin)
}

func (s *CommentService) ListByPost(postID uint64, page, size int, isAdmin bool) ([]model.Comment, error) {
	if _, err := s.accessor.Post(postID, isAdmin); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size
	return s.repo.ListByPost(postID, offset, size)
}

// EditComment 仅作者可编辑；编辑前内容进入只追加的编辑历史
func (s *CommentService) EditComment(user *model.User, id uint64, newMessage string) (*model.Comment, error) {
	comment, err := s.accessor.Comment(id, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	if comment.CreatorID != user.ID {
		return nil, pkg.Forbidden("only the author can edit this comment")
	}
	if newMessage == "" {
		return nil, pkg.BadRequest("comment message required")
	}
	if err := s.repo.Edit(comment, newMessage); err != nil {
		return nil, err
	}
	return s.accessor.Comment(id, user.IsAdmin())
}

func (s *CommentService) ListEdits(user *model.User, id uint64) ([]model.CommentEdit, error) {
	if _, err := s.accessor.Comment(id, user.IsAdmin()); err != nil {
		return nil, err
	}
	return s.repo.ListEdits(id)
}

// DeleteComment 作者或版主删除；级联回复并回减参与度
func (s *CommentService) DeleteComment(ctx context.Context, user *model.User, id uint64) error {
	comment, err := s.accessor.Comment(id, user.IsAdmin())
	if err != nil {
		return err
	}
	if comment.CreatorID != user.ID {
		caps, err := s.authz.Capabilities(user, comment.CommunityID)
		if err != nil {
			return err
		}
		if !caps.CanModerate() {
			return pkg.Forbidden("only the author or a moderator can delete this comment")
		}
	}
	if err := s.repo.SoftDelete(comment); err != nil {
		return err
	}
	return s.adjustEngagement(ctx, comment.CommunityID, comment.CreatorID, -1)
}

// Vote 赞/踩互斥切换；direction 取 up / down
func (s *CommentService) Vote(user *model.User, id uint64, direction string) (bool, error) {
	comment, err := s.accessor.Comment(id, user.IsAdmin())
	if err != nil {
		return false, err
	}
	var value int8
	switch direction {
	case "up":
		value = model.VoteUp
	case "down":
		value = model.VoteDown
	default:
		return false, pkg.BadRequest("invalid vote direction %q", direction)
	}
	return s.voteRepo.Vote(comment.ID, user.ID, value)
}

// Unvote 撤销投票，幂等
func (s *CommentService) Unvote(user *model.User, id uint64) (bool, error) {
	comment, err := s.accessor.Comment(id, user.IsAdmin())
	if err != nil {
		return false, err
	}
	return s.voteRepo.Unvote(comment.ID, user.ID)
}

// SetHidden 版主隐藏/恢复显示
func (s *CommentService) SetHidden(user *model.User, id uint64, hidden bool) error {
	comment, err := s.accessor.Comment(id, user.IsAdmin())
	if err != nil {
		return err
	}
	caps, err := s.authz.Capabilities(user, comment.CommunityID)
	if err != nil {
		return err
	}
	if !caps.CanModerate() {
		return pkg.Forbidden("only moderators can hide comments")
	}
	return s.repo.SetHidden(id, hidden)
}

// adjustEngagement 按评论权重增减参与度；无成员记录时静默不生效
func (s *CommentService) adjustEngagement(ctx context.Context, communityID, userID uint64, sign int64) error {
	weights, err := s.opts.EngagementWeights(ctx)
	if err != nil {
		return err
	}
	return s.memberRepo.AdjustEngagement(s.memberRepo.DB, communityID, userID, sign*weights.Comment)
}
