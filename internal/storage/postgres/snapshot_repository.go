package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	pgUndefinedTable  = "42P01"
	pgCheckViolation  = "23514"
	pgInvalidTextRepr = "22P02"
)

// ErrSchemaMissing сигнализирует, что миграции ещё не применены.
var ErrSchemaMissing = errors.New("reservation_snapshots table is missing, run migrations")

type snapshotRepository struct {
	store *Store
	db    *sql.DB
	key   string
}

// NewSnapshotRepository создаёт PostgreSQL-реализацию SnapshotStore.
// Снимок хранится одной строкой таблицы reservation_snapshots.
// Репозиторий владеет store: Close закрывает подключение.
func NewSnapshotRepository(store *Store) domain.SnapshotStore {
	return &snapshotRepository{store: store, db: store.DB(), key: domain.SnapshotKey}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload::text FROM reservation_snapshots WHERE key = $1
	`, r.key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, classify("select snapshot", err)
	}
	return payload, nil
}

func (r *snapshotRepository) Save(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservation_snapshots (key, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    updated_at = EXCLUDED.updated_at
	`, r.key, string(data))
	if err != nil {
		return classify("upsert snapshot", err)
	}
	return nil
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *snapshotRepository) Close() error {
	return r.store.Close()
}

// classify добавляет к ошибке драйвера понятную причину по коду PostgreSQL.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			return fmt.Errorf("%s: %w", op, ErrSchemaMissing)
		case pgCheckViolation, pgInvalidTextRepr:
			return fmt.Errorf("%s: payload rejected by database: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var (
	_ domain.SnapshotStore = (*snapshotRepository)(nil)
	_ domain.Pinger        = (*snapshotRepository)(nil)
)
