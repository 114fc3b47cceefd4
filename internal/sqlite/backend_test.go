// Tests for the backend attach/detach lifecycle.
package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

func attach(t *testing.T, dir string, opts ...Option) *Backend {
	t.Helper()
	b := NewBackend(opts...)
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	// Verify database file created
	if _, err := os.Stat(filepath.Join(tmpDir, dbFile)); os.IsNotExist(err) {
		t.Errorf("%s not created", dbFile)
	}

	// Verify double attach fails
	if err := b.Attach(config); !errors.Is(err, types.ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
	if b.DataDir() != tmpDir {
		t.Errorf("DataDir = %q, want %q", b.DataDir(), tmpDir)
	}
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	attach(t, dir)

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "dolt", DataDir: t.TempDir()}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackend().Attach(tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	// Verify operations fail after detach
	err := b.Write(context.Background(), "activities/a", types.Record{})
	if !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("Write: expected ErrStoreDetached, got %v", err)
	}
	err = b.Remove(context.Background(), "activities/a")
	if !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("Remove: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.List(context.Background(), "activities"); !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("List: expected ErrStoreDetached, got %v", err)
	}
}

func TestBackend_ReattachReloadsFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := b.Write(ctx, "donations/d1", types.Record{"amount": 25.0}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	defer b.Detach()

	rec, err := b.Get(ctx, "donations/d1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec["amount"] != 25.0 {
		t.Errorf("amount = %v, want 25", rec["amount"])
	}
}

func TestGenerateUUID(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 100 {
		id := generateUUID()
		if len(id) != 36 {
			t.Fatalf("unexpected UUID %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate UUID %q", id)
		}
		if id <= prev {
			t.Fatalf("UUID v7 keys must sort in creation order: %q after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}
