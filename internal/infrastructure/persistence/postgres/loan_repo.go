package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
	pgutil "github.com/nikhilpunky/manaja2/pkg/postgres"
)

const loanColumns = `
	id, application_id, user_id, loan_type, principal, interest_rate, tenure_months,
	start_date, end_date, emi_amount, total_interest, total_amount,
	status, disbursement_ref, version, created_at, updated_at`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save persists a loan and its repayment schedule in one transaction.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return saveLoan(ctx, tx, loan)
	}, pgutil.RetryTransient(3))
	return mapConflict("save loan", err)
}

// saveLoan writes the loan row and its installments through q. The loan row
// is version-checked; installment rows are upserted so payments recorded on
// the aggregate reach the table.
func saveLoan(ctx context.Context, q pgutil.Querier, loan model.Loan) error {
	s := loan.Snapshot()

	loanQuery := `
		INSERT INTO loans (` + loanColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			status           = EXCLUDED.status,
			disbursement_ref = EXCLUDED.disbursement_ref,
			version          = loans.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE loans.version = $15
	`
	tag, err := q.Exec(ctx, loanQuery,
		s.ID, s.ApplicationID, s.UserID, s.LoanType.String(), s.Principal, s.InterestRate, s.TenureMonths,
		s.StartDate, s.EndDate, s.EMIAmount, s.TotalInterest, s.TotalAmount,
		s.Status.String(), s.DisbursementRef, s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if err := checkVersioned("save loan", tag); err != nil {
		return err
	}

	installmentQuery := `
		INSERT INTO repayment_installments (
			loan_id, sequence_number, due_date, emi_amount, principal_component,
			interest_component, remaining_balance, status, paid_at, transaction_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (loan_id, sequence_number) DO UPDATE SET
			status         = EXCLUDED.status,
			paid_at        = EXCLUDED.paid_at,
			transaction_id = EXCLUDED.transaction_id
	`
	batch := &pgx.Batch{}
	for _, inst := range s.Schedule {
		batch.Queue(installmentQuery,
			s.ID, inst.SequenceNumber, inst.DueDate, inst.EMIAmount, inst.PrincipalComponent,
			inst.InterestComponent, inst.RemainingBalanceAfter, inst.Status.String(),
			inst.PaidAt, inst.TransactionID,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save repayment schedule: %w", err)
	}
	return nil
}

// FindByID retrieves a loan and its repayment schedule by ID.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	return r.findOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

// FindByApplicationID retrieves a loan by its originating application.
func (r *LoanRepo) FindByApplicationID(ctx context.Context, applicationID string) (model.Loan, error) {
	return r.findOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE application_id = $1`, applicationID)
}

// FindByUserID retrieves a user's loans, newest first, with schedules. Loans
// and installments are read from one snapshot.
func (r *LoanRepo) FindByUserID(ctx context.Context, userID string) ([]model.Loan, error) {
	var loans []model.Loan
	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		loans, err = findLoansByUser(ctx, tx, userID)
		return err
	}, pgutil.ReadOnlySnapshot())
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func findLoansByUser(ctx context.Context, q pgutil.Querier, userID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC, id`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	var snaps []model.LoanSnapshot
	for rows.Next() {
		s, err := scanLoanRow(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		snaps = append(snaps, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}

	ids := make([]string, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID
	}
	schedules, err := loadSchedules(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	loans := make([]model.Loan, 0, len(snaps))
	for _, s := range snaps {
		s.Schedule = schedules[s.ID]
		loans = append(loans, model.ReconstructLoan(s))
	}
	return loans, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func (r *LoanRepo) findOne(ctx context.Context, query string, id string) (model.Loan, error) {
	if !isUUID(id) {
		return model.Loan{}, mapNotFound("find loan", pgx.ErrNoRows)
	}
	var loan model.Loan
	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanLoanRow(tx.QueryRow(ctx, query, id))
		if err != nil {
			return mapNotFound("find loan", err)
		}
		schedules, err := loadSchedules(ctx, tx, []string{s.ID})
		if err != nil {
			return err
		}
		s.Schedule = schedules[s.ID]
		loan = model.ReconstructLoan(s)
		return nil
	}, pgutil.ReadOnlySnapshot())
	if err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

func scanLoanRow(row scannable) (model.LoanSnapshot, error) {
	var (
		s           model.LoanSnapshot
		loanTypeStr string
		statusStr   string
	)
	err := row.Scan(
		&s.ID, &s.ApplicationID, &s.UserID, &loanTypeStr, &s.Principal, &s.InterestRate, &s.TenureMonths,
		&s.StartDate, &s.EndDate, &s.EMIAmount, &s.TotalInterest, &s.TotalAmount,
		&statusStr, &s.DisbursementRef, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.LoanSnapshot{}, err
	}
	if s.LoanType, err = valueobject.NewLoanType(loanTypeStr); err != nil {
		return model.LoanSnapshot{}, fmt.Errorf("parse loan type: %w", err)
	}
	if s.Status, err = valueobject.NewLoanStatus(statusStr); err != nil {
		return model.LoanSnapshot{}, fmt.Errorf("parse loan status: %w", err)
	}
	s.StartDate, s.EndDate = s.StartDate.UTC(), s.EndDate.UTC()
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return s, nil
}

// loadSchedules fetches the installments of several loans in one query.
func loadSchedules(ctx context.Context, q pgutil.Querier, loanIDs []string) (map[string][]model.RepaymentInstallment, error) {
	out := make(map[string][]model.RepaymentInstallment, len(loanIDs))
	if len(loanIDs) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(loanIDs))
	for _, id := range loanIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("load repayment schedule: loan id %q: %w", id, err)
		}
		ids = append(ids, parsed)
	}

	query := `
		SELECT loan_id, sequence_number, due_date, emi_amount, principal_component,
		       interest_component, remaining_balance, status, paid_at, transaction_id
		FROM repayment_installments
		WHERE loan_id = ANY($1)
		ORDER BY loan_id, sequence_number
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query repayment schedule: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			loanID    string
			inst      model.RepaymentInstallment
			statusStr string
			paidAt    *time.Time
		)
		if err := rows.Scan(
			&loanID, &inst.SequenceNumber, &inst.DueDate, &inst.EMIAmount, &inst.PrincipalComponent,
			&inst.InterestComponent, &inst.RemainingBalanceAfter, &statusStr, &paidAt, &inst.TransactionID,
		); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		if inst.Status, err = valueobject.NewInstallmentStatus(statusStr); err != nil {
			return nil, fmt.Errorf("parse installment status: %w", err)
		}
		inst.DueDate = inst.DueDate.UTC()
		if paidAt != nil {
			t := paidAt.UTC()
			inst.PaidAt = &t
		}
		out[loanID] = append(out[loanID], inst)
	}
	return out, rows.Err()
}
