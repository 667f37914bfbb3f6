package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nikhilpunky/manaja2/internal/domain/port"
	pgutil "github.com/nikhilpunky/manaja2/pkg/postgres"
)

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// mapNotFound converts pgx.ErrNoRows into port.ErrNotFound.
func mapNotFound(what string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// checkVersioned reports a lost optimistic version check as a concurrent update.
func checkVersioned(what string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, port.ErrConcurrentUpdate)
	}
	return nil
}

// mapConflict reports a write that lost to a concurrent transaction as
// port.ErrConcurrentUpdate. Other errors pass through unchanged.
func mapConflict(what string, err error) error {
	if pgutil.IsConflict(err) {
		return fmt.Errorf("%s: %w: %w", what, port.ErrConcurrentUpdate, err)
	}
	return err
}

// isUUID reports whether id can be compared with a uuid column. Anything
// else cannot match a row.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
