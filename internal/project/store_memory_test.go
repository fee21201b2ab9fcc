package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Settings{ProjectID: "17", APIToken: "abc", Enabled: true})

	settings, err := store.Get(ctx, "17")
	require.NoError(t, err)
	assert.Equal(t, "abc", settings.APIToken)
	assert.True(t, settings.Enabled)
	assert.False(t, settings.ForceUpdate)

	_, err = store.Get(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListEnabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		Settings{ProjectID: "30", Enabled: true},
		Settings{ProjectID: "17", Enabled: true, ForceUpdate: true},
		Settings{ProjectID: "22", Enabled: false},
	)

	enabled, err := store.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "17", enabled[0].ProjectID, "stable order")
	assert.Equal(t, "30", enabled[1].ProjectID)
}

func TestMemoryStorePutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Settings{ProjectID: "17", Enabled: true})

	store.Put(Settings{ProjectID: "17", Enabled: true, ForceUpdate: true})

	settings, err := store.Get(ctx, "17")
	require.NoError(t, err)
	assert.True(t, settings.ForceUpdate)
}
