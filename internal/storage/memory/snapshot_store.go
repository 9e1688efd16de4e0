package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

// snapshotStoreInMemory хранит снимок броней в памяти процесса (для разработки/тестов).
type snapshotStoreInMemory struct {
	mu   sync.RWMutex
	data []byte
}

// NewSnapshotStore возвращает пустое in-memory хранилище снимка.
func NewSnapshotStore() domain.SnapshotStore {
	return &snapshotStoreInMemory{}
}

// NewSnapshotStoreWithData возвращает хранилище с уже записанным снимком.
func NewSnapshotStoreWithData(data []byte) domain.SnapshotStore {
	return &snapshotStoreInMemory{data: append([]byte(nil), data...)}
}

// Load возвращает копию снимка или ErrSnapshotNotFound, если запись не выполнялась.
func (s *snapshotStoreInMemory) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// Save заменяет снимок целиком.
func (s *snapshotStoreInMemory) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Сохраняем копию, чтобы вызывающий код не мог изменить снимок.
	s.data = append(make([]byte, 0, len(data)), data...)
	return nil
}

var _ domain.SnapshotStore = (*snapshotStoreInMemory)(nil)
