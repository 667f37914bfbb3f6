package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateLoanApplication = "LoanApplication"
	aggregateLoan            = "Loan"
	aggregateKYC             = "KYCRecord"
)

// ---------------------------------------------------------------------------
// Loan Application Events
// ---------------------------------------------------------------------------

// LoanApplicationSubmitted is raised when a new application enters the system.
type LoanApplicationSubmitted struct {
	events.BaseEvent
	Amount         decimal.Decimal `json:"amount"`
	TenureMonths   int             `json:"tenure_months"`
	EmploymentType string          `json:"employment_type"`
	Purpose        string          `json:"purpose"`
}

func NewLoanApplicationSubmitted(
	applicationID, userID string,
	amount decimal.Decimal, tenureMonths int,
	employmentType, purpose string, now time.Time,
) LoanApplicationSubmitted {
	return LoanApplicationSubmitted{
		BaseEvent:      events.NewBaseEvent("lending.loan_application.submitted", applicationID, aggregateLoanApplication, userID, now),
		Amount:         amount,
		TenureMonths:   tenureMonths,
		EmploymentType: employmentType,
		Purpose:        purpose,
	}
}

// LoanApplicationApproved is raised when the underwriting decision approves
// an application.
type LoanApplicationApproved struct {
	events.BaseEvent
	CreditScore   int             `json:"credit_score"`
	RiskScore     decimal.Decimal `json:"risk_score"`
	RiskCategory  string          `json:"risk_category"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	MaxLoanAmount decimal.Decimal `json:"max_loan_amount"`
}

func NewLoanApplicationApproved(
	applicationID, userID string,
	creditScore int, riskScore decimal.Decimal, riskCategory string,
	interestRate, maxLoanAmount decimal.Decimal, now time.Time,
) LoanApplicationApproved {
	return LoanApplicationApproved{
		BaseEvent:     events.NewBaseEvent("lending.loan_application.approved", applicationID, aggregateLoanApplication, userID, now),
		CreditScore:   creditScore,
		RiskScore:     riskScore,
		RiskCategory:  riskCategory,
		InterestRate:  interestRate,
		MaxLoanAmount: maxLoanAmount,
	}
}

// LoanApplicationRejected is raised when the underwriting decision declines
// an application. Reasons may legitimately be empty.
type LoanApplicationRejected struct {
	events.BaseEvent
	CreditScore  int             `json:"credit_score"`
	RiskScore    decimal.Decimal `json:"risk_score"`
	RiskCategory string          `json:"risk_category"`
	Reasons      []string        `json:"reasons"`
}

func NewLoanApplicationRejected(
	applicationID, userID string,
	creditScore int, riskScore decimal.Decimal, riskCategory string,
	reasons []string, now time.Time,
) LoanApplicationRejected {
	return LoanApplicationRejected{
		BaseEvent:    events.NewBaseEvent("lending.loan_application.rejected", applicationID, aggregateLoanApplication, userID, now),
		CreditScore:  creditScore,
		RiskScore:    riskScore,
		RiskCategory: riskCategory,
		Reasons:      reasons,
	}
}

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanSanctioned is raised when a loan is created from an approved application.
type LoanSanctioned struct {
	events.BaseEvent
	ApplicationID string          `json:"application_id"`
	Principal     decimal.Decimal `json:"principal"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	TenureMonths  int             `json:"tenure_months"`
	EMIAmount     decimal.Decimal `json:"emi_amount"`
	EndDate       time.Time       `json:"end_date"`
}

func NewLoanSanctioned(
	loanID, userID, applicationID string,
	principal, interestRate decimal.Decimal, tenureMonths int,
	emi decimal.Decimal, endDate, now time.Time,
) LoanSanctioned {
	return LoanSanctioned{
		BaseEvent:     events.NewBaseEvent("lending.loan.sanctioned", loanID, aggregateLoan, userID, now),
		ApplicationID: applicationID,
		Principal:     principal,
		InterestRate:  interestRate,
		TenureMonths:  tenureMonths,
		EMIAmount:     emi,
		EndDate:       endDate,
	}
}

// LoanDisbursed is raised when the principal has been paid out to the
// borrower's verified bank account.
type LoanDisbursed struct {
	events.BaseEvent
	Amount          decimal.Decimal `json:"amount"`
	DisbursementRef string          `json:"disbursement_ref"`
}

func NewLoanDisbursed(loanID, userID string, amount decimal.Decimal, ref string, now time.Time) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:       events.NewBaseEvent("lending.loan.disbursed", loanID, aggregateLoan, userID, now),
		Amount:          amount,
		DisbursementRef: ref,
	}
}

// InstallmentPaid is raised when a scheduled installment is collected.
type InstallmentPaid struct {
	events.BaseEvent
	SequenceNumber int             `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionID  string          `json:"transaction_id"`
}

func NewInstallmentPaid(loanID, userID string, seq int, amount decimal.Decimal, txnID string, now time.Time) InstallmentPaid {
	return InstallmentPaid{
		BaseEvent:      events.NewBaseEvent("lending.loan.installment_paid", loanID, aggregateLoan, userID, now),
		SequenceNumber: seq,
		Amount:         amount,
		TransactionID:  txnID,
	}
}

// LoanClosed is raised when the final installment has been paid.
type LoanClosed struct {
	events.BaseEvent
}

func NewLoanClosed(loanID, userID string, now time.Time) LoanClosed {
	return LoanClosed{
		BaseEvent: events.NewBaseEvent("lending.loan.closed", loanID, aggregateLoan, userID, now),
	}
}

// ---------------------------------------------------------------------------
// KYC Events
// ---------------------------------------------------------------------------

// KYCVerified is raised after every verification attempt, successful or not.
type KYCVerified struct {
	events.BaseEvent
	AadhaarVerified bool `json:"aadhaar_verified"`
	PANVerified     bool `json:"pan_verified"`
	BankVerified    bool `json:"bank_verified"`
}

func NewKYCVerified(userID string, aadhaar, pan, bank bool, now time.Time) KYCVerified {
	return KYCVerified{
		BaseEvent:       events.NewBaseEvent("lending.kyc.verified", userID, aggregateKYC, userID, now),
		AadhaarVerified: aadhaar,
		PANVerified:     pan,
		BankVerified:    bank,
	}
}
