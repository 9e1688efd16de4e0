package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

func TestSnapshotStore_LoadMissing(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "reservations.json"))
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotStore_SaveReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reservations.json")
	store, err := NewSnapshotStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`[{"clientName":"Ana","numOfGuests":2,"time":"18:00"}]`)))
	require.NoError(t, store.Save(ctx, []byte(`[]`)))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "[]", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	require.Equal(t, "reservations.json", entries[0].Name())
}

func TestSnapshotStore_SaveFailureKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reservations.json")
	store, err := NewSnapshotStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`[]`)))

	// Путь к снимку занят каталогом: rename не сможет его заменить.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	require.Error(t, store.Save(ctx, []byte(`[{"clientName":"Ana"}]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "failed save must clean up its temp file")
}

func TestSnapshotStore_SaveCanceledContext(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "reservations.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Save(ctx, []byte(`[]`)), context.Canceled)
	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotStore_Ping(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "reservations.json"))
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))
}

func TestNewSnapshotStore_EmptyPath(t *testing.T) {
	_, err := NewSnapshotStore("")
	require.Error(t, err)
}
