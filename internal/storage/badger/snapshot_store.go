// Package badger хранит снимок броней во встраиваемом key-value хранилище Badger.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

// SnapshotStore держит снимок под фиксированным ключом domain.SnapshotKey.
type SnapshotStore struct {
	db  *badgerdb.DB
	key []byte
}

// Open открывает (или создаёт) базу в каталоге dir.
// Пустой dir открывает базу в памяти, это удобно для тестов.
func Open(dir string, logger *log.Entry) (*SnapshotStore, error) {
	if logger == nil {
		logger = log.WithField("component", "badger")
	}

	var opts badgerdb.Options
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(dir).WithSyncWrites(true)
	}
	opts = opts.WithLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &SnapshotStore{db: db, key: []byte(domain.SnapshotKey)}, nil
}

// Load читает снимок.
func (s *SnapshotStore) Load(_ context.Context) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot from badger: %w", err)
	}
	return data, nil
}

// Save заменяет снимок в одной транзакции.
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value := append([]byte(nil), data...)
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(s.key, value)
	}); err != nil {
		return fmt.Errorf("write snapshot to badger: %w", err)
	}
	return nil
}

// Ping проверяет, что база открыта.
func (s *SnapshotStore) Ping(_ context.Context) error {
	if s == nil || s.db == nil || s.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// Close закрывает базу.
func (s *SnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var (
	_ domain.SnapshotStore = (*SnapshotStore)(nil)
	_ domain.Pinger        = (*SnapshotStore)(nil)
)
