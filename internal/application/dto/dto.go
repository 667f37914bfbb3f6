package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// UserID fields are never decoded from the payload; the transport layer fills
// them from the authenticated caller.

// VerifyKYCRequest carries the identity documents for eKYC.
type VerifyKYCRequest struct {
	UserID            string `json:"-" validate:"required"`
	AadhaarNumber     string `json:"aadhaar_number" validate:"required"`
	PAN               string `json:"pan" validate:"required"`
	AccountNumber     string `json:"account_number" validate:"required"`
	IFSC              string `json:"ifsc" validate:"required"`
	AccountHolderName string `json:"account_holder_name" validate:"required,max=200"`
}

// SubmitLoanApplicationRequest carries a new loan application.
// EmploymentDurationMonths is optional; nil means unknown.
type SubmitLoanApplicationRequest struct {
	UserID                   string          `json:"-" validate:"required"`
	LoanType                 string          `json:"loan_type" validate:"omitempty,oneof=short_term_mf medium_term_mf long_term_mf"`
	Amount                   decimal.Decimal `json:"amount" validate:"gt=0"`
	TenureMonths             int             `json:"tenure_months" validate:"gt=0,lte=600"`
	AnnualIncome             decimal.Decimal `json:"annual_income" validate:"gt=0"`
	EmploymentType           string          `json:"employment_type" validate:"required"`
	EmploymentDurationMonths *int            `json:"employment_duration_months,omitempty" validate:"omitempty,gte=0"`
	HasExistingLoans         bool            `json:"has_existing_loans"`
	Purpose                  string          `json:"purpose" validate:"max=500"`
	FolioNumbers             []string        `json:"folio_numbers" validate:"omitempty,dive,required"`
}

// CheckEligibilityRequest asks for a pre-qualification quote.
type CheckEligibilityRequest struct {
	UserID           string          `json:"-" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	TenureMonths     int             `json:"tenure_months" validate:"gt=0,lte=600"`
	AnnualIncome     decimal.Decimal `json:"annual_income" validate:"gt=0"`
	EmploymentType   string          `json:"employment_type" validate:"required"`
	HasExistingLoans bool            `json:"has_existing_loans"`
	FolioNumbers     []string        `json:"folio_numbers" validate:"omitempty,dive,required"`
}

// MakeRepaymentRequest pays one installment. SequenceNumber 0 pays the next
// installment due.
type MakeRepaymentRequest struct {
	UserID         string `json:"-" validate:"required"`
	LoanID         string `json:"loan_id" validate:"required"`
	SequenceNumber int    `json:"sequence_number" validate:"gte=0"`
}

// GetLoanApplicationRequest identifies a loan application to retrieve.
type GetLoanApplicationRequest struct {
	UserID        string `json:"-" validate:"required"`
	ApplicationID string `json:"application_id" validate:"required"`
}

// ListLoanApplicationsRequest lists the caller's applications.
type ListLoanApplicationsRequest struct {
	UserID string `json:"-" validate:"required"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	UserID string `json:"-" validate:"required"`
	LoanID string `json:"loan_id" validate:"required"`
}

// ListLoansRequest lists the caller's loans.
type ListLoansRequest struct {
	UserID string `json:"-" validate:"required"`
}

// DisburseLoanRequest retries the payout of a sanctioned loan.
type DisburseLoanRequest struct {
	UserID string `json:"-" validate:"required"`
	LoanID string `json:"loan_id" validate:"required"`
}

// ListRepaymentsRequest lists the installments across the caller's loans.
// An empty Status returns every installment.
type ListRepaymentsRequest struct {
	UserID string `json:"-" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING PAID"`
}

// ListLoanProductsRequest lists the product catalogue.
type ListLoanProductsRequest struct{}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// KYCResponse is the external representation of an eKYC record.
type KYCResponse struct {
	UserID              string    `json:"user_id"`
	AadhaarVerified     bool      `json:"aadhaar_verified"`
	AadhaarMessage      string    `json:"aadhaar_message"`
	PANVerified         bool      `json:"pan_verified"`
	PANMessage          string    `json:"pan_message"`
	BankVerified        bool      `json:"bank_verified"`
	BankMessage         string    `json:"bank_message"`
	MaskedAccountNumber string    `json:"masked_account_number"`
	IFSC                string    `json:"ifsc"`
	Complete            bool      `json:"complete"`
	VerifiedAt          time.Time `json:"verified_at"`
}

// RiskFactorsResponse exposes the sub-scores behind a decision.
type RiskFactorsResponse struct {
	NormalizedCreditScore decimal.Decimal `json:"normalized_credit_score"`
	IncomeAdequacy        decimal.Decimal `json:"income_adequacy"`
	LoanToValue           decimal.Decimal `json:"loan_to_value"`
	EmploymentStability   decimal.Decimal `json:"employment_stability"`
	Penalty               decimal.Decimal `json:"penalty"`
}

// AssessmentResponse is the external representation of an underwriting
// decision.
type AssessmentResponse struct {
	Approved              bool                `json:"approved"`
	CreditScore           int                 `json:"credit_score"`
	RiskScore             decimal.Decimal     `json:"risk_score"`
	RiskCategory          string              `json:"risk_category"`
	PortfolioValue        decimal.Decimal     `json:"portfolio_value"`
	MaxLoanAmount         decimal.Decimal     `json:"max_loan_amount"`
	SuggestedInterestRate decimal.Decimal     `json:"suggested_interest_rate"`
	MaxTenureMonths       int                 `json:"max_tenure_months"`
	RejectionReasons      []string            `json:"rejection_reasons,omitempty"`
	ApprovalConditions    []string            `json:"approval_conditions,omitempty"`
	Factors               RiskFactorsResponse `json:"factors"`
}

// LoanProductResponse describes a loan product and its advertised limits.
type LoanProductResponse struct {
	LoanType         string          `json:"loan_type"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	BaseInterestRate decimal.Decimal `json:"base_interest_rate"`
	MinAmount        decimal.Decimal `json:"min_amount"`
	MaxAmount        decimal.Decimal `json:"max_amount"`
	MinTenureMonths  int             `json:"min_tenure_months"`
	MaxTenureMonths  int             `json:"max_tenure_months"`
}

// LoanApplicationResponse is the external representation of a loan
// application. WithinProductLimits is advisory.
type LoanApplicationResponse struct {
	ID                       string               `json:"id"`
	UserID                   string               `json:"user_id"`
	LoanType                 string               `json:"loan_type"`
	Product                  *LoanProductResponse `json:"product,omitempty"`
	WithinProductLimits      bool                 `json:"within_product_limits"`
	Amount                   decimal.Decimal      `json:"amount"`
	TenureMonths             int                  `json:"tenure_months"`
	AnnualIncome             decimal.Decimal      `json:"annual_income"`
	EmploymentType           string               `json:"employment_type"`
	EmploymentDurationMonths int                  `json:"employment_duration_months"`
	HasExistingLoans         bool                 `json:"has_existing_loans"`
	Purpose                  string               `json:"purpose"`
	FolioNumbers             []string             `json:"folio_numbers,omitempty"`
	Status                   string               `json:"status"`
	CreditScore              int                  `json:"credit_score,omitempty"`
	InterestRate             decimal.Decimal      `json:"interest_rate"`
	RejectionReason          string               `json:"rejection_reason,omitempty"`
	Assessment               *AssessmentResponse  `json:"assessment,omitempty"`
	CreatedAt                time.Time            `json:"created_at"`
	UpdatedAt                time.Time            `json:"updated_at"`
}

// InstallmentResponse represents a single repayment schedule entry.
type InstallmentResponse struct {
	SequenceNumber        int             `json:"sequence_number"`
	DueDate               time.Time       `json:"due_date"`
	EMIAmount             decimal.Decimal `json:"emi_amount"`
	PrincipalComponent    decimal.Decimal `json:"principal_component"`
	InterestComponent     decimal.Decimal `json:"interest_component"`
	RemainingBalanceAfter decimal.Decimal `json:"remaining_balance_after"`
	Status                string          `json:"status"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
	TransactionID         string          `json:"transaction_id,omitempty"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID                   string                `json:"id"`
	UserID               string                `json:"user_id"`
	ApplicationID        string                `json:"application_id"`
	LoanType             string                `json:"loan_type"`
	Product              *LoanProductResponse  `json:"product,omitempty"`
	Principal            decimal.Decimal       `json:"principal"`
	InterestRate         decimal.Decimal       `json:"interest_rate"`
	TenureMonths         int                   `json:"tenure_months"`
	StartDate            time.Time             `json:"start_date"`
	EndDate              time.Time             `json:"end_date"`
	EMIAmount            decimal.Decimal       `json:"emi_amount"`
	TotalInterest        decimal.Decimal       `json:"total_interest"`
	TotalAmount          decimal.Decimal       `json:"total_amount"`
	OutstandingPrincipal decimal.Decimal       `json:"outstanding_principal"`
	Status               string                `json:"status"`
	DisbursementRef      string                `json:"disbursement_ref,omitempty"`
	NextDue              *InstallmentResponse  `json:"next_due,omitempty"`
	Schedule             []InstallmentResponse `json:"schedule,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// SubmitLoanApplicationResponse carries the decided application and, when
// approved, the loan created from it.
type SubmitLoanApplicationResponse struct {
	Application LoanApplicationResponse `json:"application"`
	Loan        *LoanResponse           `json:"loan,omitempty"`
}

// EligibilityResponse is a pre-qualification quote.
type EligibilityResponse struct {
	CreditScore       int             `json:"credit_score"`
	PortfolioValue    decimal.Decimal `json:"portfolio_value"`
	EquityRatio       decimal.Decimal `json:"equity_ratio"`
	LTVCap            decimal.Decimal `json:"ltv_cap"`
	MaxEligibleAmount decimal.Decimal `json:"max_eligible_amount"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	WithinLimit       bool            `json:"within_limit"`
}

// RepaymentResponse is the outcome of paying one installment.
type RepaymentResponse struct {
	LoanID               string               `json:"loan_id"`
	SequenceNumber       int                  `json:"sequence_number"`
	AmountPaid           decimal.Decimal      `json:"amount_paid"`
	TransactionID        string               `json:"transaction_id"`
	OutstandingPrincipal decimal.Decimal      `json:"outstanding_principal"`
	LoanStatus           string               `json:"loan_status"`
	NextDue              *InstallmentResponse `json:"next_due,omitempty"`
}

// LoanApplicationListResponse wraps a list of applications.
type LoanApplicationListResponse struct {
	Applications []LoanApplicationResponse `json:"applications"`
}

// LoanListResponse wraps a list of loans.
type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
}

// RepaymentEntryResponse is one installment of one of the caller's loans.
type RepaymentEntryResponse struct {
	LoanID             string          `json:"loan_id"`
	ProductName        string          `json:"product_name,omitempty"`
	SequenceNumber     int             `json:"sequence_number"`
	DueDate            time.Time       `json:"due_date"`
	EMIAmount          decimal.Decimal `json:"emi_amount"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	Status             string          `json:"status"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	TransactionID      string          `json:"transaction_id,omitempty"`
}

// RepaymentListResponse wraps the caller's installments, earliest due first.
type RepaymentListResponse struct {
	Repayments []RepaymentEntryResponse `json:"repayments"`
}

// LoanProductListResponse wraps the product catalogue.
type LoanProductListResponse struct {
	Products []LoanProductResponse `json:"products"`
}
