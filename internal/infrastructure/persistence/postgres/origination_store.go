package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	pgutil "github.com/nikhilpunky/manaja2/pkg/postgres"
)

// OriginationStore implements port.OriginationStore over the application and
// loan tables.
type OriginationStore struct {
	pool *pgxpool.Pool
}

// NewOriginationStore creates an origination store on pool.
func NewOriginationStore(pool *pgxpool.Pool) *OriginationStore {
	return &OriginationStore{pool: pool}
}

// SaveOrigination writes the decided application and, if present, the new
// loan in a single transaction. A lost version check or a second loan for
// the same application rolls both back and reports port.ErrConcurrentUpdate.
func (s *OriginationStore) SaveOrigination(ctx context.Context, app model.LoanApplication, loan *model.Loan) error {
	err := pgutil.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		if err := saveLoanApplication(ctx, tx, app); err != nil {
			return err
		}
		if loan == nil {
			return nil
		}
		return saveLoan(ctx, tx, *loan)
	}, pgutil.RetryTransient(3))
	return mapConflict("save origination", err)
}
