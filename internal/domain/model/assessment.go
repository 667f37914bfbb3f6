package model

import (
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// RiskFactors records the normalised sub-scores behind a risk score.
type RiskFactors struct {
	NormalizedCreditScore decimal.Decimal `json:"normalized_credit_score"`
	IncomeAdequacy        decimal.Decimal `json:"income_adequacy"`
	LoanToValue           decimal.Decimal `json:"loan_to_value"`
	LTVScore              decimal.Decimal `json:"ltv_score"`
	EmploymentStability   decimal.Decimal `json:"employment_stability"`
	WeightedScore         decimal.Decimal `json:"weighted_score"`
	Penalty               decimal.Decimal `json:"penalty"`
}

// RiskAssessment is the immutable underwriting decision attached to a loan
// application. RejectionReasons is non-nil (possibly empty) exactly when the
// application was declined; ApprovalConditions is only set on approvals in
// the medium and high categories.
type RiskAssessment struct {
	Approved              bool                     `json:"approved"`
	CreditScore           int                      `json:"credit_score"`
	RiskScore             decimal.Decimal          `json:"risk_score"`
	RiskCategory          valueobject.RiskCategory `json:"risk_category"`
	PortfolioValue        decimal.Decimal          `json:"portfolio_value"`
	EquityRatio           decimal.Decimal          `json:"equity_ratio"`
	MaxLoanAmount         decimal.Decimal          `json:"max_loan_amount"`
	SuggestedInterestRate decimal.Decimal          `json:"suggested_interest_rate"`
	MaxTenureMonths       int                      `json:"max_tenure_months"`
	RejectionReasons      []string                 `json:"rejection_reasons"`
	ApprovalConditions    []string                 `json:"approval_conditions,omitempty"`
	Factors               RiskFactors              `json:"factors"`
}
