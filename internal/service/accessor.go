package service

import (
	"errors"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"gorm.io/gorm"
)

// Accessor 实体读取的统一入口：不存在返回 NotFound，
// 已软删除的实体对非管理员返回 Forbidden
type Accessor struct {
	userRepo    *mysql.UserRepository
	commRepo    *mysql.CommunityRepository
	postRepo    *mysql.PostRepository
	commentRepo *mysql.CommentRepository
}

func NewAccessor(db *gorm.DB) *Accessor {
	return &Accessor{
		userRepo:    &mysql.UserRepository{DB: db},
		commRepo:    &mysql.CommunityRepository{DB: db},
		postRepo:    &mysql.PostRepository{DB: db},
		commentRepo: &mysql.CommentRepository{DB: db},
	}
}

func (a *Accessor) User(id uint64) (*model.User, error) {
	user, err := a.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("user not found")
	}
	return user, err
}

func (a *Accessor) UserByUsername(username string) (*model.User, error) {
	user, err := a.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("user %s not found", username)
	}
	return user, err
}

func (a *Accessor) Community(title string, isAdmin bool) (*model.Community, error) {
	community, err := a.commRepo.FindByTitle(title)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("community %s not found", title)
	}
	if err != nil {
		return nil, err
	}
	if community.Removed && !isAdmin {
		return nil, pkg.Forbidden("community %s has been removed", title)
	}
	return community, nil
}

func (a *Accessor) CommunityByID(id uint64, isAdmin bool) (*model.Community, error) {
	community, err := a.commRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("community not found")
	}
	if err != nil {
		return nil, err
	}
	if community.Removed && !isAdmin {
		return nil, pkg.Forbidden("community %s has been removed", community.Title)
	}
	return community, nil
}

func (a *Accessor) Post(id uint64, isAdmin bool) (*model.Post, error) {
	post, err := a.postRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("post not found")
	}
	if err != nil {
		return nil, err
	}
	if post.Removed && !isAdmin {
		return nil, pkg.Forbidden("post has been removed")
	}
	return post, nil
}

func (a *Accessor) Comment(id uint64, isAdmin bool) (*model.Comment, error) {
	comment, err := a.commentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("comment not found")
	}
	if err != nil {
		return nil, err
	}
	if comment.Removed && !isAdmin {
		return nil, pkg.Forbidden("comment has been removed")
	}
	return comment, nil
}
