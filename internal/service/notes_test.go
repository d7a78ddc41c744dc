package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ilka-yus/task15/internal/cache"
	"github.com/ilka-yus/task15/internal/db"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*NoteService, *store.UserStore) {
	t.Helper()

	conn, err := db.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	mr := miniredis.RunT(t)
	c, err := cache.New(mr.Addr(), 600*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return NewNoteService(store.NewNoteStore(conn), c), store.NewUserStore(conn)
}

func newTestUser(t *testing.T, users *store.UserStore, username string) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), username, "hash", "user")
	require.NoError(t, err)
	return u
}

func TestList_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	_, err := svc.List(ctx, alice, "", -1, 100)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.List(ctx, alice, "", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_EmptyText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	_, err := svc.Create(ctx, alice, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdate_EmptyText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	note, err := svc.Create(ctx, alice, "keep me")
	require.NoError(t, err)

	// A note can never become empty, not even through an update.
	for _, text := range []string{"", "   "} {
		upd := text
		_, err = svc.Update(ctx, alice, note.ID, models.NoteUpdate{Text: &upd})
		assert.ErrorIs(t, err, ErrValidation)
	}

	got, err := svc.Get(ctx, alice, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Text)
}

func TestList_NoStaleReadAfterCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	_, err := svc.Create(ctx, alice, "first")
	require.NoError(t, err)

	// Populate the cache.
	notes, err := svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	// The write must invalidate the snapshot before it returns.
	_, err = svc.Create(ctx, alice, "second")
	require.NoError(t, err)

	notes, err = svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[1].Text)
}

func TestList_CacheHitServesSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	created, err := svc.Create(ctx, alice, "buy milk")
	require.NoError(t, err)

	first, err := svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)
	second, err := svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, created.ID, second[0].ID)
	assert.Equal(t, first[0].Text, second[0].Text)
	assert.True(t, first[0].CreatedAt.Equal(second[0].CreatedAt))
}

func TestUpdateAndDelete_InvalidateCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	note, err := svc.Create(ctx, alice, "draft")
	require.NoError(t, err)

	_, err = svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)

	newText := "final"
	_, err = svc.Update(ctx, alice, note.ID, models.NoteUpdate{Text: &newText})
	require.NoError(t, err)

	notes, err := svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "final", notes[0].Text)

	require.NoError(t, svc.Delete(ctx, alice, note.ID))

	notes, err = svc.List(ctx, alice, "", 0, 100)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")
	bob := newTestUser(t, users, "bob")

	note, err := svc.Create(ctx, alice, "private")
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	text := "hijack"
	_, err = svc.Update(ctx, bob, note.ID, models.NoteUpdate{Text: &text})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, bob, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Alice still sees her note, unchanged.
	got, err := svc.Get(ctx, alice, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Text)
}

func TestDelete_IsTerminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestService(t)
	alice := newTestUser(t, users, "alice")

	note, err := svc.Create(ctx, alice, "gone soon")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, alice, note.ID))

	_, err = svc.Get(ctx, alice, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, alice, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
