package service

import (
	"context"
	"net/http"
	"testing"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewOptionsService(db, nil), nil)

	err := svc.Register(context.Background(), "ab", "pass", "ab@example.com", "")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	err = svc.Register(context.Background(), "evil<script>", "pass", "evil@example.com", "")
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	require.NoError(t, svc.Register(context.Background(), "alice", "pass", "alice@example.com", ""))

	var user model.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	// 密码落库为 bcrypt 哈希
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pass")))
}

func TestUpdateProfilePatch(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", model.RoleUser)
	svc := NewUserService(db, NewOptionsService(db, nil), nil)

	// 禁改字段直接拒绝，且不产生任何写入
	_, err := svc.UpdateProfile(alice.ID, map[string]any{
		"bio":  "new bio",
		"role": model.RoleAdmin,
	})
	assert.True(t, pkg.IsStatus(err, http.StatusForbidden))

	var unchanged model.User
	require.NoError(t, db.First(&unchanged, alice.ID).Error)
	assert.Equal(t, model.RoleUser, unchanged.Role)
	assert.Empty(t, unchanged.Bio)

	got, err := svc.UpdateProfile(alice.ID, map[string]any{
		"bio":   "gardener",
		"title": "Plant Lead",
	})
	require.NoError(t, err)
	assert.Equal(t, "gardener", got.Bio)
	assert.Equal(t, "Plant Lead", got.Title)

	// 与当前值相同的字段不产生写入
	got, err = svc.UpdateProfile(alice.ID, map[string]any{"bio": "gardener"})
	require.NoError(t, err)
	assert.Equal(t, "gardener", got.Bio)
}

func TestProfileNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewOptionsService(db, nil), nil)

	_, err := svc.Profile(12345)
	assert.True(t, pkg.IsStatus(err, http.StatusNotFound))
}
