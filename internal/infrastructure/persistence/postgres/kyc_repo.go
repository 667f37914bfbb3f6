package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

// KYCRepo implements port.KYCRepository.
type KYCRepo struct {
	pool *pgxpool.Pool
}

// NewKYCRepo creates a new PostgreSQL-backed KYC repository.
func NewKYCRepo(pool *pgxpool.Pool) *KYCRepo {
	return &KYCRepo{pool: pool}
}

// Save stores the record, replacing any previous record for the user.
func (r *KYCRepo) Save(ctx context.Context, rec model.KYCRecord) error {
	s := rec.Snapshot()
	query := `
		INSERT INTO kyc_records (
			user_id, aadhaar_last4, pan,
			aadhaar_verified, aadhaar_message, pan_verified, pan_message,
			bank_verified, bank_message, account_number, ifsc, holder_name, verified_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (user_id) DO UPDATE SET
			aadhaar_last4    = EXCLUDED.aadhaar_last4,
			pan              = EXCLUDED.pan,
			aadhaar_verified = EXCLUDED.aadhaar_verified,
			aadhaar_message  = EXCLUDED.aadhaar_message,
			pan_verified     = EXCLUDED.pan_verified,
			pan_message      = EXCLUDED.pan_message,
			bank_verified    = EXCLUDED.bank_verified,
			bank_message     = EXCLUDED.bank_message,
			account_number   = EXCLUDED.account_number,
			ifsc             = EXCLUDED.ifsc,
			holder_name      = EXCLUDED.holder_name,
			verified_at      = EXCLUDED.verified_at
	`
	_, err := r.pool.Exec(ctx, query,
		s.UserID, s.AadhaarLast4, s.PAN,
		s.AadhaarResult.Verified, s.AadhaarResult.Message, s.PANResult.Verified, s.PANResult.Message,
		s.BankResult.Verified, s.BankResult.Message, s.Bank.AccountNumber, s.Bank.IFSC, s.Bank.HolderName,
		s.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("save kyc record: %w", err)
	}
	return nil
}

// FindByUserID retrieves the user's latest KYC record.
func (r *KYCRepo) FindByUserID(ctx context.Context, userID string) (model.KYCRecord, error) {
	query := `
		SELECT user_id, aadhaar_last4, pan,
		       aadhaar_verified, aadhaar_message, pan_verified, pan_message,
		       bank_verified, bank_message, account_number, ifsc, holder_name, verified_at
		FROM kyc_records
		WHERE user_id = $1
	`
	var s model.KYCRecordSnapshot
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.AadhaarLast4, &s.PAN,
		&s.AadhaarResult.Verified, &s.AadhaarResult.Message, &s.PANResult.Verified, &s.PANResult.Message,
		&s.BankResult.Verified, &s.BankResult.Message, &s.Bank.AccountNumber, &s.Bank.IFSC, &s.Bank.HolderName,
		&s.VerifiedAt,
	)
	if err != nil {
		return model.KYCRecord{}, mapNotFound("find kyc record", err)
	}
	s.VerifiedAt = s.VerifiedAt.UTC()
	return model.ReconstructKYCRecord(s), nil
}
