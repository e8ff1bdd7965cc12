package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"neighbourhood/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个用例独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.CommunityModerator{},
		&model.CommunityTag{},
		&model.CommunityRule{},
		&model.KickedMember{},
		&model.Post{},
		&model.PostTag{},
		&model.Comment{},
		&model.CommentVote{},
		&model.CommentEdit{},
		&model.Flag{},
		&model.FlagReporter{},
		&model.Options{},
		&model.ModerationOutbox{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role int) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Password: "x",
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedCommunity 走正式创建路径，创建者成为持有全部权限的版主
func seedCommunity(t *testing.T, db *gorm.DB, creator *model.User, title string) *model.Community {
	t.Helper()
	svc := NewCommunityService(db, NewOptionsService(db, nil))
	community, err := svc.CreateCommunity(context.Background(), creator, title, "test community")
	require.NoError(t, err)
	return community
}

func seedMember(t *testing.T, db *gorm.DB, community *model.Community, user *model.User) {
	t.Helper()
	svc := NewCommunityService(db, NewOptionsService(db, nil))
	require.NoError(t, svc.Join(user, community.Title))
}

func seedPost(t *testing.T, db *gorm.DB, community *model.Community, creator *model.User, title string) *model.Post {
	t.Helper()
	svc := NewPostService(db, NewOptionsService(db, nil))
	post, err := svc.CreatePost(context.Background(), creator, community.Title, title, "body", false)
	require.NoError(t, err)
	return post
}
