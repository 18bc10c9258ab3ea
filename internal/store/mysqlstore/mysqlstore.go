// Package mysqlstore implements the record store contract on MySQL. The
// full-snapshot discipline is kept: Update rewrites the whole table inside
// one transaction while holding a named advisory lock, so it offers the
// same serializable-operation guarantee as the file backend.
package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"
	"chaintrack/internal/store"

	"go.uber.org/zap"
)

// lockName is the advisory lock guarding the snapshot. GET_LOCK is
// per-server, which matches the single shared collection the ledger owns.
const lockName = "chaintrack.inventory_records"

type MySQLStore struct {
	db          *sql.DB
	lockTimeout time.Duration
	logger      *zap.Logger
}

func New(db *sql.DB, lockTimeout time.Duration, logger *zap.Logger) *MySQLStore {
	return &MySQLStore{db: db, lockTimeout: lockTimeout, logger: logger}
}

// lockSeconds converts the configured timeout to the whole seconds
// GET_LOCK expects, rounding up so a sub-second timeout still waits
// instead of degrading to an immediate try-lock.
func lockSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func (s *MySQLStore) LoadAll(ctx context.Context) ([]domain.ProductRecord, error) {
	return s.load(ctx, s.db)
}

func (s *MySQLStore) Update(ctx context.Context, fn func([]domain.ProductRecord) ([]domain.ProductRecord, error)) error {
	// The advisory lock must be taken and released on the same
	// connection, so pin one for the whole critical section.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return apperrors.NewStorageUnavailableError(fmt.Errorf("acquiring connection: %w", err))
	}
	defer conn.Close()

	var got sql.NullInt64
	err = conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", lockName, lockSeconds(s.lockTimeout)).Scan(&got)
	if err != nil {
		return apperrors.NewStorageUnavailableError(fmt.Errorf("acquiring advisory lock: %w", err))
	}
	if !got.Valid || got.Int64 != 1 {
		return apperrors.NewStorageBusyError(s.lockTimeout)
	}
	defer func() {
		var released sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", lockName).Scan(&released); err != nil {
			s.logger.Warn("releasing advisory lock", zap.Error(err))
		}
	}()

	records, err := s.load(ctx, conn)
	if err != nil {
		return err
	}

	next, err := fn(records)
	if err != nil {
		return err
	}

	return s.replace(ctx, conn, next)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *MySQLStore) load(ctx context.Context, q querier) ([]domain.ProductRecord, error) {
	query := `
		SELECT recordId, productId, name, description, batchId, creator,
		       price, quantity, status, owner, txRef, correlationId,
		       createdAt, updatedAt
		FROM inventory_records
		ORDER BY position ASC
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError(fmt.Errorf("querying records: %w", err))
	}
	defer rows.Close()

	records := []domain.ProductRecord{}
	for rows.Next() {
		var r domain.ProductRecord
		var status string
		if err := rows.Scan(
			&r.RecordID, &r.ProductID, &r.Name, &r.Description, &r.BatchID, &r.Creator,
			&r.Price, &r.Quantity, &status, &r.Owner, &r.TxRef, &r.CorrelationID,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewStorageUnavailableError(fmt.Errorf("scanning record: %w", err))
		}
		r.Status = domain.Status(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageUnavailableError(fmt.Errorf("iterating records: %w", err))
	}

	return store.Normalize(records), nil
}

// replace rewrites the whole table in one transaction. Insertion order is
// made explicit through the position column so "most recently created"
// stays well-defined across round-trips.
func (s *MySQLStore) replace(ctx context.Context, conn *sql.Conn, records []domain.ProductRecord) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM inventory_records"); err != nil {
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("clearing records: %w", err))
	}

	insert := `
		INSERT INTO inventory_records
			(position, recordId, productId, name, description, batchId, creator,
			 price, quantity, status, owner, txRef, correlationId, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, r := range records {
		if _, err := tx.ExecContext(ctx, insert,
			i, r.RecordID, r.ProductID, r.Name, r.Description, r.BatchID, r.Creator,
			r.Price, r.Quantity, string(r.Status), r.Owner, r.TxRef, r.CorrelationID,
			r.CreatedAt, r.UpdatedAt,
		); err != nil {
			return apperrors.NewStorageWriteFailedError(fmt.Errorf("inserting record %s: %w", r.RecordID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("committing snapshot: %w", err))
	}

	s.logger.Debug("snapshot persisted", zap.Int("records", len(records)))
	return nil
}
