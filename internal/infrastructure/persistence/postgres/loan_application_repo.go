package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
	pgutil "github.com/nikhilpunky/manaja2/pkg/postgres"
)

const loanApplicationColumns = `
	id, user_id, loan_type, amount, tenure_months, annual_income,
	employment_type, employment_duration_months, has_existing_loans,
	purpose, folio_numbers, status, credit_score, interest_rate,
	rejection_reason, assessment, version, created_at, updated_at`

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewLoanApplicationRepo creates a new repository backed by PostgreSQL.
func NewLoanApplicationRepo(pool *pgxpool.Pool) *LoanApplicationRepo {
	return &LoanApplicationRepo{pool: pool}
}

// Save persists a loan application (upsert by ID with optimistic locking).
// Only the decision columns change after the first insert.
func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	return mapConflict("save loan application", saveLoanApplication(ctx, r.pool, app))
}

func saveLoanApplication(ctx context.Context, q pgutil.Querier, app model.LoanApplication) error {
	s := app.Snapshot()

	var assessment []byte
	if s.Assessment != nil {
		var err error
		if assessment, err = json.Marshal(s.Assessment); err != nil {
			return fmt.Errorf("encode assessment: %w", err)
		}
	}
	folios := s.Params.FolioNumbers
	if folios == nil {
		folios = []string{}
	}

	query := `
		INSERT INTO loan_applications (` + loanApplicationColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			status           = EXCLUDED.status,
			credit_score     = EXCLUDED.credit_score,
			interest_rate    = EXCLUDED.interest_rate,
			rejection_reason = EXCLUDED.rejection_reason,
			assessment       = EXCLUDED.assessment,
			version          = loan_applications.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE loan_applications.version = $17
	`
	tag, err := q.Exec(ctx, query,
		s.ID, s.Params.UserID, s.Params.LoanType.String(),
		s.Params.Amount, s.Params.TenureMonths, s.Params.AnnualIncome,
		s.Params.EmploymentType.String(), s.Params.EmploymentDurationMonths, s.Params.HasExistingLoans,
		s.Params.Purpose, folios, s.Status.String(), s.CreditScore, s.InterestRate,
		s.RejectionReason, assessment, s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save loan application: %w", err)
	}
	return checkVersioned("save loan application", tag)
}

// FindByID retrieves a single loan application.
func (r *LoanApplicationRepo) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	if !isUUID(id) {
		return model.LoanApplication{}, mapNotFound("find loan application", pgx.ErrNoRows)
	}
	query := `SELECT ` + loanApplicationColumns + ` FROM loan_applications WHERE id = $1`
	app, err := scanLoanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.LoanApplication{}, mapNotFound("find loan application", err)
	}
	return app, nil
}

// FindByUserID retrieves a user's applications, newest first.
func (r *LoanApplicationRepo) FindByUserID(ctx context.Context, userID string) ([]model.LoanApplication, error) {
	query := `SELECT ` + loanApplicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query loan applications: %w", err)
	}
	defer rows.Close()

	apps := []model.LoanApplication{}
	for rows.Next() {
		app, err := scanLoanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanLoanApplication(s scannable) (model.LoanApplication, error) {
	var (
		id, userID, loanTypeStr, employmentStr string
		amount, annualIncome, interestRate     decimal.Decimal
		tenureMonths, employmentDuration       int
		hasExistingLoans                       bool
		purpose, statusStr, rejectionReason    string
		folios                                 []string
		creditScore, version                   int
		assessmentJSON                         []byte
		createdAt, updatedAt                   time.Time
	)
	err := s.Scan(
		&id, &userID, &loanTypeStr, &amount, &tenureMonths, &annualIncome,
		&employmentStr, &employmentDuration, &hasExistingLoans,
		&purpose, &folios, &statusStr, &creditScore, &interestRate,
		&rejectionReason, &assessmentJSON, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.LoanApplication{}, err
	}

	loanType, err := valueobject.NewLoanType(loanTypeStr)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse loan type: %w", err)
	}
	employment, err := valueobject.NewEmploymentType(employmentStr)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse employment type: %w", err)
	}
	status, err := valueobject.NewLoanApplicationStatus(statusStr)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse application status: %w", err)
	}

	var assessment *model.RiskAssessment
	if len(assessmentJSON) > 0 {
		assessment = &model.RiskAssessment{}
		if err := json.Unmarshal(assessmentJSON, assessment); err != nil {
			return model.LoanApplication{}, fmt.Errorf("decode assessment: %w", err)
		}
	}

	return model.ReconstructLoanApplication(model.LoanApplicationSnapshot{
		ID: id,
		Params: model.LoanApplicationParams{
			UserID:                   userID,
			LoanType:                 loanType,
			Amount:                   amount,
			TenureMonths:             tenureMonths,
			AnnualIncome:             annualIncome,
			EmploymentType:           employment,
			EmploymentDurationMonths: employmentDuration,
			HasExistingLoans:         hasExistingLoans,
			Purpose:                  purpose,
			FolioNumbers:             folios,
		},
		Status:          status,
		CreditScore:     creditScore,
		InterestRate:    interestRate,
		RejectionReason: rejectionReason,
		Assessment:      assessment,
		Version:         version,
		CreatedAt:       createdAt.UTC(),
		UpdatedAt:       updatedAt.UTC(),
	}), nil
}
