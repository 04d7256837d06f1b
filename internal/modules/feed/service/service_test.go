package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
	feedDto "octofit.app/tracker/internal/modules/feed/dto"
	feedRepo "octofit.app/tracker/internal/modules/feed/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
)

type sent struct {
	userID uuid.UUID
	kind   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{userID: userID, kind: kind})
}

func TestGetFeedShowsOnlyOwnHouse(t *testing.T) {
	db := testutil.NewDB(t)
	kraken := testutil.CreateHouse(t, db, "Kraken")
	razor := testutil.CreateHouse(t, db, "Razor")
	alice := testutil.CreateUser(t, db, "alice", kraken)
	bob := testutil.CreateUser(t, db, "bob", razor)
	loner := testutil.CreateUser(t, db, "loner", nil)

	svc := NewFeedService(feedRepo.NewFeedRepository(db), profileRepo.NewProfileRepository(db), nil)
	ctx := context.Background()

	svc.Record(ctx, alice.ID, &kraken.ID, entity.FeedActionLoggedActivity, "logged 30 minutes of Swim")
	svc.Record(ctx, bob.ID, &razor.ID, entity.FeedActionJoinedHouse, "joined Razor")

	items, err := svc.GetFeed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].Username)
	assert.Equal(t, entity.FeedActionLoggedActivity, items[0].Action)

	items, err = svc.GetFeed(ctx, loner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddCommentSanitizesAndNotifiesOwner(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Serene")
	owner := testutil.CreateUser(t, db, "owner", house)
	fan := testutil.CreateUser(t, db, "fan", house)

	notifier := &recordingNotifier{}
	repo := feedRepo.NewFeedRepository(db)
	svc := NewFeedService(repo, profileRepo.NewProfileRepository(db), notifier)
	ctx := context.Background()

	item := &entity.ActivityFeedItem{UserID: owner.ID, HouseID: &house.ID, Action: entity.FeedActionLoggedActivity}
	require.NoError(t, repo.Create(ctx, item))

	comment, err := svc.AddComment(ctx, fan.ID, item.ID, feedDto.CreateCommentInput{Text: "<b>nice</b> work<script>x</script>"})
	require.NoError(t, err)
	assert.Equal(t, "nice work", comment.Text)

	_, err = svc.AddComment(ctx, owner.ID, item.ID, feedDto.CreateCommentInput{Text: "thanks"})
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, owner.ID, notifier.sent[0].userID)
	assert.Equal(t, entity.NotificationComment, notifier.sent[0].kind)

	comments, err := svc.ListComments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "fan", comments[0].Username)
}

func TestAddCommentRejectsUnknownItemAndEmptyText(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	user := testutil.CreateUser(t, db, "octo", house)
	repo := feedRepo.NewFeedRepository(db)
	svc := NewFeedService(repo, profileRepo.NewProfileRepository(db), nil)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, user.ID, testutil.NewID(), feedDto.CreateCommentInput{Text: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	item := &entity.ActivityFeedItem{UserID: user.ID, HouseID: &house.ID, Action: entity.FeedActionJoinedHouse}
	require.NoError(t, repo.Create(ctx, item))

	_, err = svc.AddComment(ctx, user.ID, item.ID, feedDto.CreateCommentInput{Text: "<script></script>"})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}
