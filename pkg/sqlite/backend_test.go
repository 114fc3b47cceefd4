package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

func TestNewBackend(t *testing.T) {
	store := NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })

	key, err := store.GenerateKey("activities")
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), "activities/"+key, types.Record{"title": "Board meeting"}))

	err = store.Remove(context.Background(), "activities/missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
