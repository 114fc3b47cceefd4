package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/internal/modules"
	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/internal/sqlite"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

func TestDump(t *testing.T) {
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "fees/a", types.Record{"date": "2024-01-05", "member": "Acme", "amount": 100.0}))
	require.NoError(t, store.Write(ctx, "fees/b", types.Record{"date": "2024-02-05", "member": "Beta", "amount": 50.0}))

	fees, err := modules.Lookup(modules.Fees)
	require.NoError(t, err)
	donations, err := modules.Lookup(modules.Donations)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	files, err := Dump(ctx, store, []*shell.Module{fees, donations}, DumpOptions{Dir: dir, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "fees-2024-03-01.csv"),
		filepath.Join(dir, "donations-2024-03-01.csv"),
	}, files)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "column.date", rows[0][0])
	assert.Equal(t, "2024-02-05", rows[1][0], "default sort is newest first")
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler("every tuesday", func(context.Context) error { return nil }, nil)
	assert.Error(t, err)
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	s, err := NewScheduler("@every 10ms", func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// cron schedules @every at whole-second resolution.
	require.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
