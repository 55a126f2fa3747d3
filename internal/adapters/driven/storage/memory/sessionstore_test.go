package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

func TestSessionStore_GetMissing(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Get(context.Background(), "chat-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := NewSessionStore()

	sess := domain.NewSession("chat-1")
	sess.State = domain.StateNameSearch
	sess.Query = domain.NameQuery{Text: "greek salad"}
	sess.Cursor = domain.Cursor{Chunk: 2, Offset: 17}
	sess.Emitted = 3
	require.NoError(t, store.Save(context.Background(), sess))

	got, err := store.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateNameSearch, got.State)
	assert.Equal(t, domain.NameQuery{Text: "greek salad"}, got.Query)
	assert.Equal(t, domain.Cursor{Chunk: 2, Offset: 17}, got.Cursor)
	assert.Equal(t, 3, got.Emitted)
}

func TestSessionStore_GetReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	require.NoError(t, store.Save(context.Background(), domain.NewSession("chat-1")))

	first, err := store.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	first.Emitted = 99

	second, err := store.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Zero(t, second.Emitted)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	require.NoError(t, store.Save(context.Background(), domain.NewSession("chat-1")))

	require.NoError(t, store.Delete(context.Background(), "chat-1"))
	_, err := store.Get(context.Background(), "chat-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(context.Background(), "chat-1"))
}
