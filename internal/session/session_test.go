package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EstablishAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, NewMemoryStore())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	id := Identity{Token: "t1", Name: "Alice", Role: RoleUser}
	require.NoError(t, s.Establish(ctx, id))

	assert.True(t, s.Authenticated())
	assert.Equal(t, id, s.Current())
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "t1", tok)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.Authenticated())
	assert.True(t, s.Current().IsZero())
}

func TestSession_EstablishRejectsIncompleteIdentity(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, nil)
	require.NoError(t, err)

	assert.Error(t, s.Establish(ctx, Identity{Name: "Alice", Role: RoleUser}))
	assert.Error(t, s.Establish(ctx, Identity{Token: "t", Role: "superuser"}))
	assert.False(t, s.Authenticated())
}

func TestSession_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Identity{Token: "t2", Name: "Root", Role: RoleAdmin}))

	s, err := New(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, s.Current().Role)
	assert.Equal(t, "Root", s.Current().Name)
}

func TestSession_DiscardsUnknownRole(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Identity{Token: "t", Role: "ghost"}))

	s, err := New(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, persisted.IsZero())
}

func TestSession_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Establish(ctx, Identity{Token: "t1", Name: "Alice", Role: RoleUser}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok, ok := s.Token()
				if ok && tok != "t1" {
					t.Errorf("unexpected token %q", tok)
				}
			}
		}()
	}
	wg.Wait()
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	s, err := New(ctx, store)
	require.NoError(t, err)
	require.NoError(t, s.Establish(ctx, Identity{Token: "t1", Name: "Alice", Role: RoleUser, UserID: "u1"}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	restored, err := New(ctx, reopened)
	require.NoError(t, err)
	assert.Equal(t, Identity{Token: "t1", Name: "Alice", Role: RoleUser, UserID: "u1"}, restored.Current())

	require.NoError(t, restored.Clear(ctx))
	id, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestSQLiteStore_KeyValue(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "theme", "dark"))
	require.NoError(t, store.Set(ctx, "theme", "light"))
	v, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	require.NoError(t, store.Delete(ctx, "theme"))
	require.NoError(t, store.Delete(ctx, "theme"))
	_, ok, err = store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_ClearKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "theme", "dark"))
	require.NoError(t, store.Save(ctx, Identity{Token: "t", Name: "n", Role: RoleUser}))
	require.NoError(t, store.Clear(ctx))

	v, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}
