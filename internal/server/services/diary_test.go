package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type diaryFixture struct {
	svc    *DiaryService
	store  *memStore
	repos  *fakeRepoManager
	bucket *fakeBucket
	logs   *observer.ObservedLogs
}

func newDiaryFixture(t *testing.T, userID string, cfg *config.Config) *diaryFixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{SignedURLTTL: time.Hour}
	}
	core, logs := observer.New(zapcore.DebugLevel)
	store := newMemStore()
	repos := newFakeRepoManager(store)
	bucket := newFakeBucket()
	svc := NewDiaryService(nil, repos, bucket, fakeSession{userID: userID}, logging.NewZapLogger(zap.New(core)), cfg)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return &diaryFixture{svc: svc, store: store, repos: repos, bucket: bucket, logs: logs}
}

func TestCreateEntry_ReturnsStoredRow(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)

	e, err := f.svc.CreateEntry(context.Background(), "Monday", "rain all day")
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "Monday", e.Title)
	assert.Equal(t, "rain all day", e.Body)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Nil(t, e.UpdatedAt)
}

func TestCreateEntry_Unauthenticated(t *testing.T) {
	f := newDiaryFixture(t, "", nil)

	_, err := f.svc.CreateEntry(context.Background(), "t", "b")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Zero(t, f.repos.entries.calls["Create"], "no insert without a caller")
}

func TestCaller_WrapsForeignSessionErrors(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	f.svc.session = fakeSession{err: errors.New("token store offline")}

	_, err := f.svc.ListEntries(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.ErrorContains(t, err, "token store offline")
}

func TestCreateEntry_QueryFailed(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	f.repos.entries.createErr = errors.New("db is down")

	_, err := f.svc.CreateEntry(context.Background(), "t", "b")
	require.ErrorIs(t, err, common.ErrQueryFailed)
	assert.ErrorContains(t, err, "db is down")
}

func TestListEntries_NewestFirstAndOwnerScoped(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	first := f.store.addEntry("u1", "first")
	f.store.addEntry("u2", "someone else")
	second := f.store.addEntry("u1", "second")

	list, err := f.svc.ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestGetEntry(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	mine := f.store.addEntry("u1", "mine")
	theirs := f.store.addEntry("u2", "theirs")
	ctx := context.Background()

	got, err := f.svc.GetEntry(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	got, err = f.svc.GetEntry(ctx, theirs.ID)
	require.NoError(t, err, "invisible rows are not an error")
	assert.Nil(t, got)

	got, err = f.svc.GetEntry(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.GetEntry(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.GetEntry(ctx, strings.ToUpper(mine.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mine.ID, got.ID)
}

func TestGetEntry_OtherFailuresPropagate(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	e := f.store.addEntry("u1", "x")
	f.repos.entries.getErr = errors.New("permission denied for table entries")

	got, err := f.svc.GetEntry(context.Background(), e.ID)
	require.ErrorIs(t, err, common.ErrQueryFailed)
	assert.Nil(t, got)

	f.svc.session = fakeSession{}
	_, err = f.svc.GetEntry(context.Background(), e.ID)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestDeleteEntry_IdempotentAndLeavesMedia(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	e := f.store.addEntry("u1", "x")
	f.store.addMedia(e.ID, "image", e.ID+"/1-a.jpg")
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteEntry(ctx, e.ID))
	require.NoError(t, f.svc.DeleteEntry(ctx, e.ID))
	require.NoError(t, f.svc.DeleteEntry(ctx, "garbage"))

	got, err := f.svc.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Len(t, f.store.media, 1, "media rows survive without cascade")
	assert.Empty(t, f.bucket.removed)
}

func TestDeleteEntry_ForeignEntryUntouched(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	theirs := f.store.addEntry("u2", "theirs")

	require.NoError(t, f.svc.DeleteEntry(context.Background(), theirs.ID))
	assert.Contains(t, f.store.entries, theirs.ID)
}

func TestDeleteEntry_QueryFailed(t *testing.T) {
	f := newDiaryFixture(t, "u1", nil)
	f.repos.entries.deleteErr = errors.New("db down")

	err := f.svc.DeleteEntry(context.Background(), "00000000-0000-0000-0000-000000000001")
	require.ErrorIs(t, err, common.ErrQueryFailed)
}

func TestDeleteEntry_Cascade(t *testing.T) {
	f := newDiaryFixture(t, "u1", &config.Config{CascadeDelete: true})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	f.svc.db = db

	e := f.store.addEntry("u1", "x")
	other := f.store.addEntry("u1", "y")
	ctx := context.Background()
	for _, p := range []string{e.ID + "/1-a.jpg", e.ID + "/2-b.m4a", other.ID + "/3-c.mp4"} {
		require.NoError(t, f.bucket.Upload(ctx, p, []byte("x"), "", false))
	}
	f.store.addMedia(e.ID, "image", e.ID+"/1-a.jpg")
	f.store.addMedia(e.ID, "audio", e.ID+"/2-b.m4a")
	f.store.addMedia(other.ID, "video", other.ID+"/3-c.mp4")

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, f.svc.DeleteEntry(ctx, e.ID))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotContains(t, f.store.entries, e.ID)
	require.Len(t, f.store.media, 1)
	assert.Equal(t, other.ID, f.store.media[0].EntryID)
	assert.ElementsMatch(t, []string{e.ID + "/1-a.jpg", e.ID + "/2-b.m4a"}, f.bucket.removed)
}

func TestDeleteEntry_CascadeRollsBack(t *testing.T) {
	f := newDiaryFixture(t, "u1", &config.Config{CascadeDelete: true})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	f.svc.db = db

	e := f.store.addEntry("u1", "x")
	f.repos.media.deleteErr = errors.New("lock timeout")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = f.svc.DeleteEntry(context.Background(), e.ID)
	require.ErrorIs(t, err, common.ErrQueryFailed)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, f.store.entries, e.ID)
	assert.Empty(t, f.bucket.removed)
}

func TestDeleteEntry_CascadeBlobFailureIsLogged(t *testing.T) {
	f := newDiaryFixture(t, "u1", &config.Config{CascadeDelete: true})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	f.svc.db = db

	e := f.store.addEntry("u1", "x")
	f.store.addMedia(e.ID, "image", e.ID+"/1-a.jpg")
	f.bucket.removeErr = errors.New("bucket unreachable")

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, f.svc.DeleteEntry(context.Background(), e.ID))
	assert.Equal(t, 1, f.logs.FilterMessage("media blobs left behind after entry delete").Len())
}

func TestNewDiaryService_DefaultTTL(t *testing.T) {
	f := newDiaryFixture(t, "u1", &config.Config{})
	assert.Equal(t, DefaultSignedURLTTL, f.svc.signedURLTTL)
}
