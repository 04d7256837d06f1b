package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
	notifRepo "octofit.app/tracker/internal/modules/notification/repository"
	"octofit.app/tracker/internal/testutil"
)

func TestNotifyPersistsAndPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	user := testutil.CreateUser(t, db, "octo", nil)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, Channel(user.ID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)
	svc.Notify(ctx, user.ID, entity.NotificationBadge, "You earned a badge")

	select {
	case msg := <-sub.Channel():
		var got entity.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "You earned a badge", got.Message)
		assert.Equal(t, entity.NotificationBadge, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}

	unread, err := svc.GetUnread(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
}

func TestMarkAsReadIsScopedToOwner(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner", nil)
	other := testutil.CreateUser(t, db, "other", nil)
	ctx := context.Background()

	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	svc.Notify(ctx, owner.ID, entity.NotificationInfo, "one")
	svc.Notify(ctx, owner.ID, entity.NotificationInfo, "two")

	unread, err := svc.GetUnread(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	updated, err := svc.MarkAsRead(ctx, other.ID, []uuid.UUID{unread[0].ID})
	require.NoError(t, err)
	assert.Zero(t, updated)

	updated, err = svc.MarkAsRead(ctx, owner.ID, []uuid.UUID{unread[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	count, err := svc.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = svc.MarkAsRead(ctx, owner.ID, nil)
	require.NoError(t, err)
	count, err = svc.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
