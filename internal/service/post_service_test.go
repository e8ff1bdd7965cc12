package service

import (
	"context"
	"net/http"
	"testing"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	seedCommunity(t, db, alice, "Gardening")
	svc := NewPostService(db, NewOptionsService(db, nil))

	_, err := svc.CreatePost(context.Background(), bob, "Gardening", "My tomatoes", "look", false)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
}

func TestCreatePostEngagementAndPostCount(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewPostService(db, NewOptionsService(db, nil))

	_, err := svc.CreatePost(context.Background(), alice, "Gardening", "My tomatoes", "look", false)
	require.NoError(t, err)

	// 参与度：建社区 10 + 发帖 5
	member, err := (&mysql.CommunityMemberRepository{DB: db}).Find(community.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), member.Engagement)

	var user model.User
	require.NoError(t, db.First(&user, alice.ID).Error)
	assert.Equal(t, int64(1), user.PostCount)
}

func TestPinnedPostCap(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	seedCommunity(t, db, alice, "Gardening")
	svc := NewPostService(db, NewOptionsService(db, nil))

	for i := 0; i < model.MaxPinnedPosts; i++ {
		_, err := svc.CreatePost(context.Background(), alice, "Gardening", "pinned post", "x", true)
		require.NoError(t, err)
	}
	_, err := svc.CreatePost(context.Background(), alice, "Gardening", "one too many", "x", true)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
	assert.EqualError(t, err, "Community can't have more than 3 pinned posts")

	// 第 4 帖不落库
	var count int64
	require.NoError(t, db.Model(&model.Post{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestSetPinnedCapAndToggle(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewPostService(db, NewOptionsService(db, nil))

	var posts []*model.Post
	for i := 0; i < 4; i++ {
		posts = append(posts, seedPost(t, db, community, alice, "post number"))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.SetPinned(alice, posts[i].ID, true))
	}
	err := svc.SetPinned(alice, posts[3].ID, true)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 已置顶的帖子重复置顶不受上限影响
	require.NoError(t, svc.SetPinned(alice, posts[0].ID, true))

	require.NoError(t, svc.SetPinned(alice, posts[0].ID, false))
	require.NoError(t, svc.SetPinned(alice, posts[3].ID, true))
}

func TestPinRequiresModerator(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	svc := NewPostService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, bob, "my post")

	err := svc.SetPinned(bob, post.ID, true)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
}

func TestUpdatePostPatch(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	carol := seedUser(t, db, "carol", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	seedMember(t, db, community, carol)
	svc := NewPostService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, bob, "original title")

	// 禁改字段直接拒绝
	_, err := svc.UpdatePost(bob, post.ID, map[string]any{"pinned": true})
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 他人不能改
	_, err = svc.UpdatePost(carol, post.ID, map[string]any{"title": "hijacked"})
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 作者可以改
	got, err := svc.UpdatePost(bob, post.ID, map[string]any{"title": "updated title"})
	require.NoError(t, err)
	assert.Equal(t, "updated title", got.Title)

	// 版主也可以改
	got, err = svc.UpdatePost(alice, post.ID, map[string]any{"message": "moderated"})
	require.NoError(t, err)
	assert.Equal(t, "moderated", got.Message)
}

func TestDeletePostCascadesAndEngagement(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	postSvc := NewPostService(db, NewOptionsService(db, nil))
	commentSvc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "soon gone")

	_, err := commentSvc.CreateComment(context.Background(), alice, post.ID, "nice", nil)
	require.NoError(t, err)

	require.NoError(t, postSvc.DeletePost(context.Background(), alice, post.ID))

	// 非管理员不可见
	_, err = postSvc.GetPost(post.ID, false)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 管理员可见
	got, err := postSvc.GetPost(post.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Removed)

	// 评论级联软删除
	var comment model.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&comment).Error)
	assert.True(t, comment.Removed)

	// 参与度：10 + 5(发帖) + 1(评论) - 5(删帖) = 11
	member, err := (&mysql.CommunityMemberRepository{DB: db}).Find(community.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), member.Engagement)
}

func TestDeletePostWithoutMembershipSilentEngagement(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	commSvc := NewCommunityService(db, NewOptionsService(db, nil))
	svc := NewPostService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, bob, "orphaned post")

	// 作者退出后由版主删除：作者已无成员记录，参与度更新静默匹配零行
	require.NoError(t, commSvc.Leave(bob, "Gardening"))
	require.NoError(t, svc.DeletePost(context.Background(), alice, post.ID))

	got, err := svc.GetPost(post.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Removed)
}

func TestHiddenPostsExcludedFromList(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewPostService(db, NewOptionsService(db, nil))
	visible := seedPost(t, db, community, alice, "stays visible")
	hidden := seedPost(t, db, community, alice, "gets hidden")

	require.NoError(t, svc.SetHidden(alice, hidden.ID, true))

	list, err := svc.ListByCommunity("Gardening", 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)

	// 隐藏事件进 outbox
	var outbox model.ModerationOutbox
	require.NoError(t, db.Where("event_type = ?", model.EventContentHidden).First(&outbox).Error)
	assert.Equal(t, hidden.ID, outbox.TargetID)
}

func TestTagPost(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	commSvc := NewCommunityService(db, NewOptionsService(db, nil))
	svc := NewPostService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	require.NoError(t, commSvc.AddTag(alice, "Gardening", "vegetables", ""))

	// 词表外标签拒绝
	err := svc.TagPost(alice, post.ID, "fruit")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	require.NoError(t, svc.TagPost(alice, post.ID, "vegetables"))

	// 每用户每帖只能打一个
	err = svc.TagPost(alice, post.ID, "vegetables")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 不同用户可以打
	require.NoError(t, svc.TagPost(bob, post.ID, "vegetables"))

	tags, err := svc.ListTags(post.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// 词表计数同步
	communityTags, err := commSvc.ListTags("Gardening", false)
	require.NoError(t, err)
	require.Len(t, communityTags, 1)
	assert.Equal(t, int64(2), communityTags[0].Count)

	// 取消标签
	require.NoError(t, svc.UntagPost(bob, post.ID))
	err = svc.UntagPost(bob, post.ID)
	assert.True(t, pkg.IsStatus(err, http.StatusNotFound))
}
