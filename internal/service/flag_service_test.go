package service

import (
	"context"
	"net/http"
	"testing"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagIdempotent(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewFlagService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	require.NoError(t, svc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Spam"))
	// 重复标记幂等
	require.NoError(t, svc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Spam"))

	flags, err := svc.ListForTarget(model.TargetPost, post.ID, false)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Len(t, flags[0].Reporters, 1)
	assert.Equal(t, "bob", flags[0].Reporters[0].Username)

	// 第二个举报人并入同一标记
	require.NoError(t, svc.Flag(context.Background(), alice, model.TargetPost, post.ID, "Spam"))
	flags, err = svc.ListForTarget(model.TargetPost, post.ID, false)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Len(t, flags[0].Reporters, 2)

	// outbox 只记两次新增举报
	var count int64
	require.NoError(t, db.Model(&model.ModerationOutbox{}).
		Where("event_type = ?", model.EventFlagRaised).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestFlagLabelMustBeInVocabulary(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewFlagService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	err := svc.Flag(context.Background(), alice, model.TargetPost, post.ID, "I just dislike it")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
}

func TestUnflag(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewFlagService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	// 标签不存在
	err := svc.Unflag(alice, model.TargetPost, post.ID, "Spam")
	assert.True(t, pkg.IsStatus(err, http.StatusNotFound))

	require.NoError(t, svc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Spam"))

	// 不是举报人
	err = svc.Unflag(alice, model.TargetPost, post.ID, "Spam")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	require.NoError(t, svc.Unflag(bob, model.TargetPost, post.ID, "Spam"))

	// flaggedBy 清空后标记行保留
	flags, err := svc.ListForTarget(model.TargetPost, post.ID, false)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Empty(t, flags[0].Reporters)
}

func TestResolveRequiresModerator(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	svc := NewFlagService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")
	require.NoError(t, svc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Spam"))

	err := svc.Resolve(bob, model.TargetPost, post.ID, false)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
}

func TestResolveClearsFlagsAndUnhides(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	flagSvc := NewFlagService(db, NewOptionsService(db, nil))
	postSvc := NewPostService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	require.NoError(t, flagSvc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Spam"))
	require.NoError(t, flagSvc.Flag(context.Background(), bob, model.TargetPost, post.ID, "Misinformation"))
	require.NoError(t, postSvc.SetHidden(alice, post.ID, true))

	require.NoError(t, flagSvc.Resolve(alice, model.TargetPost, post.ID, true))

	flags, err := flagSvc.ListForTarget(model.TargetPost, post.ID, false)
	require.NoError(t, err)
	assert.Empty(t, flags)

	got, err := postSvc.GetPost(post.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Hidden)

	var count int64
	require.NoError(t, db.Model(&model.ModerationOutbox{}).
		Where("event_type = ?", model.EventFlagsResolved).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolveAdminBypassesModeratorCheck(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	admin := seedUser(t, db, "root", model.RoleAdmin)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewFlagService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")
	require.NoError(t, svc.Flag(context.Background(), alice, model.TargetPost, post.ID, "Spam"))

	require.NoError(t, svc.Resolve(admin, model.TargetPost, post.ID, false))
}

func TestDashboardListsFlaggedContent(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	flagSvc := NewFlagService(db, NewOptionsService(db, nil))
	commentSvc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")
	clean := seedPost(t, db, community, alice, "nothing wrong here")
	comment, err := commentSvc.CreateComment(context.Background(), alice, post.ID, "rude remark", nil)
	require.NoError(t, err)

	require.NoError(t, flagSvc.Flag(context.Background(), alice, model.TargetPost, post.ID, "Spam"))
	require.NoError(t, flagSvc.Flag(context.Background(), alice, model.TargetComment, comment.ID, "Hate"))

	entries, err := flagSvc.Dashboard(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var sawPost, sawComment bool
	for _, e := range entries {
		switch e.TargetType {
		case model.TargetPost:
			sawPost = true
			require.NotNil(t, e.Post)
			assert.Equal(t, post.ID, e.Post.ID)
			assert.NotEqual(t, clean.ID, e.Post.ID)
		case model.TargetComment:
			sawComment = true
			require.NotNil(t, e.Comment)
			assert.Equal(t, comment.ID, e.Comment.ID)
		}
		assert.NotEmpty(t, e.Flags)
	}
	assert.True(t, sawPost)
	assert.True(t, sawComment)
}
