package service

import (
	"testing"

	"neighbourhood/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesAdminImpliesAll(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	admin := seedUser(t, db, "root", model.RoleAdmin)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewAuthzService(db)

	caps, err := svc.Capabilities(admin, community.ID)
	require.NoError(t, err)
	assert.True(t, caps.CanModerate())
	assert.True(t, caps.Has(PermRemoveCommunity))

	caps, err = svc.Capabilities(alice, community.ID)
	require.NoError(t, err)
	assert.True(t, caps.Moderator)
	assert.True(t, caps.Has(PermSetPermissions))
}

func TestCapabilitiesNonMember(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	community := seedCommunity(t, db, alice, "Gardening")
	svc := NewAuthzService(db)

	caps, err := svc.Capabilities(bob, community.ID)
	require.NoError(t, err)
	assert.False(t, caps.CanModerate())
	assert.False(t, caps.Has(PermSetModerators))
}

func TestIsModerator(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	bob := seedUser(t, db, "bob", model.RoleUser)
	seedCommunity(t, db, alice, "Gardening")
	commSvc := NewCommunityService(db, NewOptionsService(db, nil))
	require.NoError(t, commSvc.Join(bob, "Gardening"))
	require.NoError(t, commSvc.AddModerator(alice, "Gardening", "bob", []string{PermSetModerators}))
	svc := NewAuthzService(db)

	ok, err := svc.IsModerator("alice", "Gardening")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsModerator("alice", "Gardening", PermSetPermissions, PermRemoveCommunity)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsModerator("bob", "Gardening", PermSetPermissions)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsModerator("bob", "Gardening", PermSetModerators)
	require.NoError(t, err)
	assert.True(t, ok)

	// 不存在的社区不报错，直接 false
	ok, err = svc.IsModerator("alice", "NoSuchPlace")
	require.NoError(t, err)
	assert.False(t, ok)
}
