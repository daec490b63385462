package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/user-admin/internal/core/domain"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client), mr
}

func testSession(id, userID string, role domain.Role) domain.Session {
	now := time.Now().UTC()
	return domain.Session{
		ID:        id,
		User:      &domain.User{ID: userID, Email: userID + "@example.com", Role: role},
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := testSession("s-1", "u-1", domain.RoleUser)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.User.ID, got.User.ID)
	assert.Equal(t, sess.User.Role, got.User.Role)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)

	ttl := mr.TTL("session:s-1")
	assert.True(t, ttl > 29*time.Minute && ttl <= 30*time.Minute, "unexpected ttl %s", ttl)
	assert.True(t, mr.Exists("user_sessions:u-1"))
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_SaveRejectsExpired(t *testing.T) {
	store, _ := newTestStore(t)

	sess := testSession("s-old", "u-1", domain.RoleUser)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	assert.Error(t, store.Save(context.Background(), sess))

	sess = testSession("", "u-1", domain.RoleUser)
	assert.Error(t, store.Save(context.Background(), sess))
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s-ttl", "u-1", domain.RoleUser)))
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "s-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s-del", "u-1", domain.RoleUser)))
	require.NoError(t, store.Delete(ctx, "s-del"))
	require.NoError(t, store.Delete(ctx, "s-del"))

	_, err := store.Get(ctx, "s-del")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	members, _ := mr.Members("user_sessions:u-1")
	assert.NotContains(t, members, "s-del")
}

func TestSessionStore_ListByUser(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s-a", "u-1", domain.RoleUser)))
	require.NoError(t, store.Save(ctx, testSession("s-b", "u-1", domain.RoleUser)))
	require.NoError(t, store.Save(ctx, testSession("s-c", "u-2", domain.RoleAdmin)))

	// A dangling index entry is pruned on read.
	_, err := mr.SAdd("user_sessions:u-1", "s-gone")
	require.NoError(t, err)

	list, err := store.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	ids := []string{}
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"s-a", "s-b"}, ids)

	members, _ := mr.Members("user_sessions:u-1")
	assert.NotContains(t, members, "s-gone")
}

func TestSessionStore_SaveOverwritesRole(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := testSession("s-role", "u-1", domain.RoleUser)
	require.NoError(t, store.Save(ctx, sess))

	sess.User.Role = domain.RoleAdmin
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-role")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.User.Role)
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s-a", "u-1", domain.RoleUser)))
	require.NoError(t, store.Save(ctx, testSession("s-b", "u-1", domain.RoleUser)))
	require.NoError(t, store.Save(ctx, testSession("s-c", "u-2", domain.RoleUser)))

	require.NoError(t, store.DeleteByUser(ctx, "u-1"))

	for _, id := range []string{"s-a", "s-b"} {
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	}
	assert.False(t, mr.Exists("user_sessions:u-1"))

	_, err := store.Get(ctx, "s-c")
	assert.NoError(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestSessionStore_IndexOutlivesResavedShorterSession(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	short := testSession("s-short", "u-1", domain.RoleAdmin)
	short.ExpiresAt = time.Now().Add(10 * time.Minute)
	long := testSession("s-long", "u-1", domain.RoleAdmin)
	long.ExpiresAt = time.Now().Add(60 * time.Minute)

	require.NoError(t, store.Save(ctx, short))
	require.NoError(t, store.Save(ctx, long))

	// Role propagation re-saves every session; the shorter one lands last.
	long.User.Role = domain.RoleUser
	short.User.Role = domain.RoleUser
	require.NoError(t, store.Save(ctx, long))
	require.NoError(t, store.Save(ctx, short))

	ttl := mr.TTL("user_sessions:u-1")
	assert.True(t, ttl > 59*time.Minute, "index ttl shrank to %s", ttl)

	mr.FastForward(15 * time.Minute)

	list, err := store.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s-long", list[0].ID)

	require.NoError(t, store.DeleteByUser(ctx, "u-1"))
	assert.False(t, mr.Exists("session:s-long"))
	_, err = store.Get(ctx, "s-long")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
