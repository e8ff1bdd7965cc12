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

func TestCreateCommentSingleLevelReply(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	top, err := svc.CreateComment(context.Background(), alice, post.ID, "looks great", nil)
	require.NoError(t, err)

	reply, err := svc.CreateComment(context.Background(), bob, post.ID, "agreed", &top.ID)
	require.NoError(t, err)

	// 回复不能再被回复
	_, err = svc.CreateComment(context.Background(), alice, post.ID, "nested", &reply.ID)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 回复目标必须属于同一帖子
	other := seedPost(t, db, community, alice, "another post")
	_, err = svc.CreateComment(context.Background(), alice, other.ID, "cross post", &top.ID)
	assert.True(t, pkg.IsStatus(err, http.StatusBadRequest))

	// 帖子评论计数
	got, err := NewPostService(db, NewOptionsService(db, nil)).GetPost(post.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CommentCount)
}

func TestCreateCommentRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	_, err := svc.CreateComment(context.Background(), bob, post.ID, "outsider", nil)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))
}

func TestEditCommentKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	comment, err := svc.CreateComment(context.Background(), alice, post.ID, "first draft", nil)
	require.NoError(t, err)

	// 只有作者能编辑
	_, err = svc.EditComment(bob, comment.ID, "hijack")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	got, err := svc.EditComment(alice, comment.ID, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", got.Message)

	_, err = svc.EditComment(alice, comment.ID, "third draft")
	require.NoError(t, err)

	edits, err := svc.ListEdits(alice, comment.ID)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, "first draft", edits[0].Precursor)
	assert.Equal(t, "second draft", edits[1].Precursor)
}

func TestVoteSwitch(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")
	comment, err := svc.CreateComment(context.Background(), alice, post.ID, "vote on me", nil)
	require.NoError(t, err)

	changed, err := svc.Vote(alice, comment.ID, "up")
	require.NoError(t, err)
	assert.True(t, changed)

	// 同方向重复投票幂等
	changed, err = svc.Vote(alice, comment.ID, "up")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := svc.GetComment(comment.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UpvoteCount)
	assert.Equal(t, int64(0), got.DownvoteCount)

	// 反方向投票切换
	changed, err = svc.Vote(alice, comment.ID, "down")
	require.NoError(t, err)
	assert.True(t, changed)

	got, err = svc.GetComment(comment.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UpvoteCount)
	assert.Equal(t, int64(1), got.DownvoteCount)

	// 撤销投票
	changed, err = svc.Unvote(alice, comment.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Unvote(alice, comment.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err = svc.GetComment(comment.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.DownvoteCount)

	_, err = svc.Vote(alice, comment.ID, "sideways")
	assert.True(t, pkg.IsStatus(err, http.StatusBadRequest))
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	carol := seedUser(t, db, "carol", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	seedMember(t, db, community, carol)
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")

	top, err := svc.CreateComment(context.Background(), bob, post.ID, "top", nil)
	require.NoError(t, err)
	_, err = svc.CreateComment(context.Background(), carol, post.ID, "reply", &top.ID)
	require.NoError(t, err)

	// 既非作者也非版主
	err = svc.DeleteComment(context.Background(), carol, top.ID)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	// 版主可删，回复级联
	require.NoError(t, svc.DeleteComment(context.Background(), alice, top.ID))

	list, err := svc.ListByPost(post.ID, 1, 50, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := NewPostService(db, NewOptionsService(db, nil)).GetPost(post.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CommentCount)
}

func TestHideCommentModeratorOnly(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	seedMember(t, db, community, bob)
	svc := NewCommentService(db, NewOptionsService(db, nil))
	post := seedPost(t, db, community, alice, "tomato harvest")
	comment, err := svc.CreateComment(context.Background(), bob, post.ID, "borderline", nil)
	require.NoError(t, err)

	err = svc.SetHidden(bob, comment.ID, true)
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	require.NoError(t, svc.SetHidden(alice, comment.ID, true))
	list, err := svc.ListByPost(post.ID, 1, 50, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}
