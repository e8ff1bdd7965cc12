package service

import (
	"context"
	"errors"
	"testing"

	"neighbourhood/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRelayerDrain(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.ModerationOutbox{
		EventType:  model.EventFlagRaised,
		Actor:      "alice",
		TargetType: model.TargetPost,
		TargetID:   1,
		Payload:    `{"label":"Spam"}`,
	}).Error)
	require.NoError(t, db.Create(&model.ModerationOutbox{
		EventType:  model.EventFlagsResolved,
		Actor:      "root",
		TargetType: model.TargetPost,
		TargetID:   1,
		Payload:    `{}`,
	}).Error)

	var sent []string
	relayer := NewOutboxRelayer(db, func(ctx context.Context, ob *model.ModerationOutbox) error {
		sent = append(sent, ob.EventType)
		return nil
	})
	relayer.drainOnce(context.Background())

	assert.Equal(t, []string{model.EventFlagRaised, model.EventFlagsResolved}, sent)

	var pending int64
	require.NoError(t, db.Model(&model.ModerationOutbox{}).Where("status = 0").Count(&pending).Error)
	assert.Equal(t, int64(0), pending)

	// 已投递的不会再被取出
	relayer.drainOnce(context.Background())
	assert.Len(t, sent, 2)
}

func TestOutboxRelayerRetryOnFailure(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.ModerationOutbox{
		EventType:  model.EventContentHidden,
		Actor:      "root",
		TargetType: model.TargetComment,
		TargetID:   7,
		Payload:    `{}`,
	}).Error)

	relayer := NewOutboxRelayer(db, func(ctx context.Context, ob *model.ModerationOutbox) error {
		return errors.New("broker down")
	})
	relayer.drainOnce(context.Background())

	var ob model.ModerationOutbox
	require.NoError(t, db.First(&ob).Error)
	assert.Equal(t, int8(2), ob.Status)
	assert.Equal(t, 1, ob.Retry)
}
