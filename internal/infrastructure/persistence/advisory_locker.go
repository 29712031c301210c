package persistence

import (
	"context"
	"fmt"

	"github.com/comfort/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// PostgresAdvisoryLocker takes transaction-scoped advisory locks. It must be
// bound to a transaction; the locks are released when it ends.
type PostgresAdvisoryLocker struct {
	tx *gorm.DB
}

// NewPostgresAdvisoryLocker creates a locker bound to tx
func NewPostgresAdvisoryLocker(tx *gorm.DB) *PostgresAdvisoryLocker {
	return &PostgresAdvisoryLocker{tx: tx}
}

// Lock acquires the locks for keys in sorted order, waiting for holders to finish
func (l *PostgresAdvisoryLocker) Lock(ctx context.Context, keys ...string) error {
	for _, key := range shared.SortedUniqueKeys(keys) {
		if err := l.tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
	}
	return nil
}

// lockerFor picks the locker matching the dialect of tx
func lockerFor(tx *gorm.DB) shared.Locker {
	if tx.Dialector.Name() == "postgres" {
		return NewPostgresAdvisoryLocker(tx)
	}
	return shared.NoopLocker{}
}

var _ shared.Locker = (*PostgresAdvisoryLocker)(nil)
