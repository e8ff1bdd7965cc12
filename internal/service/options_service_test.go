package service

import (
	"context"
	"testing"

	"neighbourhood/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaultsWithoutSeed(t *testing.T) {
	db := newTestDB(t)
	svc := NewOptionsService(db, nil)

	// 库里没有配置时回落到内置默认值
	weights, err := svc.EngagementWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), weights.Post)
	assert.Equal(t, int64(1), weights.Comment)
	assert.Equal(t, int64(10), weights.Community)

	vocabulary, err := svc.FlagVocabulary(context.Background())
	require.NoError(t, err)
	assert.Contains(t, vocabulary, "Spam")
	assert.Contains(t, vocabulary, "Harassment or Bullying")

	rules, err := svc.Validation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rules.MinTitleLength)
	assert.Equal(t, 200, rules.MaxTitleLength)
	assert.Contains(t, rules.DisallowedStrings, "<script")
}

func TestOptionsSeedAndUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewOptionsService(db, nil)
	require.NoError(t, svc.SeedDefaults())

	// 重复播种不覆盖
	require.NoError(t, svc.SeedDefaults())

	require.NoError(t, svc.Update(context.Background(), model.OptionsEngagement, map[string]any{
		"post": 7, "comment": 2, "community": 20,
	}))

	weights, err := svc.EngagementWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), weights.Post)
	assert.Equal(t, int64(2), weights.Comment)

	settings, err := svc.Get(context.Background(), model.OptionsEngagement)
	require.NoError(t, err)
	assert.EqualValues(t, 7, settings["post"])
}

func TestOptionsUnknownComponent(t *testing.T) {
	db := newTestDB(t)
	svc := NewOptionsService(db, nil)

	_, err := svc.Get(context.Background(), "no-such-component")
	require.Error(t, err)
}

func TestUpdatedWeightsAffectEngagement(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	opts := NewOptionsService(db, nil)
	require.NoError(t, opts.Update(context.Background(), model.OptionsEngagement, map[string]any{
		"post": 100, "comment": 1, "community": 10,
	}))

	community := seedCommunity(t, db, alice, "Gardening")
	seedPost(t, db, community, alice, "heavy post")

	var member model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", community.ID, alice.ID).
		First(&member).Error)
	assert.Equal(t, int64(110), member.Engagement)
}
