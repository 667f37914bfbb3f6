package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// ErrVerificationRejected is returned when a verification provider refuses
// the submitted identity data. Resubmitting the same data will not succeed.
var ErrVerificationRejected = errors.New("verification provider rejected request")

// IdentityVerifier runs the individual eKYC checks. A returned error means the
// check could not be performed; a failed check is a result with Verified=false.
type IdentityVerifier interface {
	VerifyAadhaar(ctx context.Context, aadhaar string) (model.VerificationResult, error)
	VerifyPAN(ctx context.Context, pan string) (model.VerificationResult, error)
	VerifyBankAccount(ctx context.Context, account model.BankAccount) (model.VerificationResult, error)
}

// HoldingsRegistry looks up the mutual fund holdings pledged as collateral.
type HoldingsRegistry interface {
	LookupHoldings(ctx context.Context, pan string, folios []string) ([]model.MutualFundHolding, error)
}

// Disburser pays the sanctioned principal out to the borrower's bank account
// and returns the payout reference.
type Disburser interface {
	Disburse(ctx context.Context, loan model.Loan, account model.BankAccount) (string, error)
}

// PaymentGateway collects an installment and returns the transaction ID.
type PaymentGateway interface {
	Collect(ctx context.Context, loan model.Loan, installment model.RepaymentInstallment) (string, error)
}

// DecisionMetrics records underwriting outcomes and collaborator latency.
type DecisionMetrics interface {
	RecordDecision(category valueobject.RiskCategory, approved bool, riskScore decimal.Decimal)
	RecordCollaboratorCall(collaborator string, d time.Duration, err error)
}
