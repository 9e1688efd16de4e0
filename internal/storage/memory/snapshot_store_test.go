package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/memory"
)

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := memory.NewSnapshotStore()

	_, err := store.Load(context.Background())
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	store := memory.NewSnapshotStore()
	ctx := context.Background()

	payload := []byte(`[{"clientName":"Ana","numOfGuests":2,"time":"18:00"}]`)
	if err := store.Save(ctx, payload); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	payload[0] = 'x'

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got[0] != '[' {
		t.Fatalf("stored snapshot was mutated through caller slice: %s", got)
	}

	got[0] = 'y'
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if again[0] != '[' {
		t.Fatalf("stored snapshot was mutated through returned slice: %s", again)
	}
}

func TestSnapshotStore_SaveEmptySnapshot(t *testing.T) {
	store := memory.NewSnapshotStore()
	ctx := context.Background()

	if err := store.Save(ctx, []byte{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("empty snapshot should still be found, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %q", got)
	}
}

func TestSnapshotStore_WithData(t *testing.T) {
	store := memory.NewSnapshotStoreWithData([]byte(`[]`))

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected snapshot %q", got)
	}
}
