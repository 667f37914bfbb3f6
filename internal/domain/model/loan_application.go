package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// RejectionReasonSeparator joins rejection reasons into the single stored
// rejection reason string.
const RejectionReasonSeparator = "; "

// ---------------------------------------------------------------------------
// LoanApplication aggregate root
// ---------------------------------------------------------------------------

// LoanApplicationParams carries the applicant-supplied fields of a new
// application.
type LoanApplicationParams struct {
	UserID                   string
	LoanType                 valueobject.LoanType
	Amount                   decimal.Decimal
	TenureMonths             int
	AnnualIncome             decimal.Decimal
	EmploymentType           valueobject.EmploymentType
	EmploymentDurationMonths int
	HasExistingLoans         bool
	Purpose                  string
	FolioNumbers             []string
}

// LoanApplication is an immutable aggregate. Every mutation returns a new copy.
// The applicant fields never change after creation; only the decision outcome
// is attached, once.
type LoanApplication struct {
	id                       string
	userID                   string
	loanType                 valueobject.LoanType
	amount                   decimal.Decimal
	tenureMonths             int
	annualIncome             decimal.Decimal
	employmentType           valueobject.EmploymentType
	employmentDurationMonths int
	hasExistingLoans         bool
	purpose                  string
	folioNumbers             []string
	status                   valueobject.LoanApplicationStatus
	creditScore              int
	interestRate             decimal.Decimal
	rejectionReason          string
	assessment               *RiskAssessment
	version                  int
	createdAt                time.Time
	updatedAt                time.Time
	domainEvents             []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanApplication creates a brand-new application in PENDING status.
func NewLoanApplication(p LoanApplicationParams, now time.Time) (LoanApplication, error) {
	if p.UserID == "" {
		return LoanApplication{}, errors.New("user ID is required")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return LoanApplication{}, errors.New("amount must be positive")
	}
	if p.TenureMonths <= 0 {
		return LoanApplication{}, errors.New("tenure months must be positive")
	}
	if p.AnnualIncome.LessThanOrEqual(decimal.Zero) {
		return LoanApplication{}, errors.New("annual income must be positive")
	}
	if p.EmploymentType.IsZero() {
		return LoanApplication{}, errors.New("employment type is required")
	}
	if p.EmploymentDurationMonths < 0 {
		return LoanApplication{}, errors.New("employment duration must not be negative")
	}
	loanType := p.LoanType
	if loanType.IsZero() {
		loanType = valueobject.LoanTypeShortTerm
	}

	id := uuid.New().String()
	app := LoanApplication{
		id:                       id,
		userID:                   p.UserID,
		loanType:                 loanType,
		amount:                   p.Amount,
		tenureMonths:             p.TenureMonths,
		annualIncome:             p.AnnualIncome,
		employmentType:           p.EmploymentType,
		employmentDurationMonths: p.EmploymentDurationMonths,
		hasExistingLoans:         p.HasExistingLoans,
		purpose:                  p.Purpose,
		folioNumbers:             copyStrings(p.FolioNumbers),
		status:                   valueobject.LoanApplicationStatusPending,
		version:                  1,
		createdAt:                now,
		updatedAt:                now,
	}

	app.domainEvents = append(app.domainEvents, event.NewLoanApplicationSubmitted(
		id, p.UserID, p.Amount, p.TenureMonths, p.EmploymentType.String(), p.Purpose, now,
	))
	return app, nil
}

// LoanApplicationSnapshot is the persisted state of an application.
type LoanApplicationSnapshot struct {
	ID              string
	Params          LoanApplicationParams
	Status          valueobject.LoanApplicationStatus
	CreditScore     int
	InterestRate    decimal.Decimal
	RejectionReason string
	Assessment      *RiskAssessment
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructLoanApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructLoanApplication(s LoanApplicationSnapshot) LoanApplication {
	return LoanApplication{
		id:                       s.ID,
		userID:                   s.Params.UserID,
		loanType:                 s.Params.LoanType,
		amount:                   s.Params.Amount,
		tenureMonths:             s.Params.TenureMonths,
		annualIncome:             s.Params.AnnualIncome,
		employmentType:           s.Params.EmploymentType,
		employmentDurationMonths: s.Params.EmploymentDurationMonths,
		hasExistingLoans:         s.Params.HasExistingLoans,
		purpose:                  s.Params.Purpose,
		folioNumbers:             copyStrings(s.Params.FolioNumbers),
		status:                   s.Status,
		creditScore:              s.CreditScore,
		interestRate:             s.InterestRate,
		rejectionReason:          s.RejectionReason,
		assessment:               s.Assessment,
		version:                  s.Version,
		createdAt:                s.CreatedAt,
		updatedAt:                s.UpdatedAt,
	}
}

// Snapshot exports the persisted state of the aggregate.
func (a LoanApplication) Snapshot() LoanApplicationSnapshot {
	return LoanApplicationSnapshot{
		ID:              a.id,
		Params:          a.Params(),
		Status:          a.status,
		CreditScore:     a.creditScore,
		InterestRate:    a.interestRate,
		RejectionReason: a.rejectionReason,
		Assessment:      a.assessment,
		Version:         a.version,
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// Approve transitions PENDING -> APPROVED and emits LoanApplicationApproved.
func (a LoanApplication) Approve(assessment RiskAssessment, now time.Time) (LoanApplication, error) {
	if !a.status.Equal(valueobject.LoanApplicationStatusPending) {
		return a, valueobject.ErrInvalidStatusTransition
	}
	if !assessment.Approved {
		return a, errors.New("cannot approve with a declined assessment")
	}
	next := a.withDecision(valueobject.LoanApplicationStatusApproved, assessment, now)
	next.domainEvents = append(next.domainEvents, event.NewLoanApplicationApproved(
		a.id, a.userID, assessment.CreditScore, assessment.RiskScore,
		assessment.RiskCategory.String(), assessment.SuggestedInterestRate,
		assessment.MaxLoanAmount, now,
	))
	return next, nil
}

// Reject transitions PENDING -> REJECTED and emits LoanApplicationRejected.
// The stored rejection reason is the assessment's reasons joined in order,
// which is empty when no individual predicate fired.
func (a LoanApplication) Reject(assessment RiskAssessment, now time.Time) (LoanApplication, error) {
	if !a.status.Equal(valueobject.LoanApplicationStatusPending) {
		return a, valueobject.ErrInvalidStatusTransition
	}
	if assessment.Approved {
		return a, errors.New("cannot reject with an approved assessment")
	}
	next := a.withDecision(valueobject.LoanApplicationStatusRejected, assessment, now)
	next.rejectionReason = strings.Join(assessment.RejectionReasons, RejectionReasonSeparator)
	next.domainEvents = append(next.domainEvents, event.NewLoanApplicationRejected(
		a.id, a.userID, assessment.CreditScore, assessment.RiskScore,
		assessment.RiskCategory.String(), copyStrings(assessment.RejectionReasons), now,
	))
	return next, nil
}

func (a LoanApplication) withDecision(
	status valueobject.LoanApplicationStatus,
	assessment RiskAssessment,
	now time.Time,
) LoanApplication {
	next := a
	next.status = status
	next.creditScore = assessment.CreditScore
	next.interestRate = assessment.SuggestedInterestRate
	next.assessment = &assessment
	next.updatedAt = now
	next.domainEvents = copyEvents(a.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a LoanApplication) ID() string                                 { return a.id }
func (a LoanApplication) UserID() string                             { return a.userID }
func (a LoanApplication) LoanType() valueobject.LoanType             { return a.loanType }
func (a LoanApplication) Amount() decimal.Decimal                    { return a.amount }
func (a LoanApplication) TenureMonths() int                          { return a.tenureMonths }
func (a LoanApplication) AnnualIncome() decimal.Decimal              { return a.annualIncome }
func (a LoanApplication) EmploymentType() valueobject.EmploymentType { return a.employmentType }
func (a LoanApplication) EmploymentDurationMonths() int              { return a.employmentDurationMonths }
func (a LoanApplication) HasExistingLoans() bool                     { return a.hasExistingLoans }
func (a LoanApplication) Purpose() string                            { return a.purpose }
func (a LoanApplication) FolioNumbers() []string                     { return copyStrings(a.folioNumbers) }
func (a LoanApplication) Status() valueobject.LoanApplicationStatus  { return a.status }
func (a LoanApplication) CreditScore() int                           { return a.creditScore }
func (a LoanApplication) InterestRate() decimal.Decimal              { return a.interestRate }
func (a LoanApplication) RejectionReason() string                    { return a.rejectionReason }
func (a LoanApplication) Version() int                               { return a.version }
func (a LoanApplication) CreatedAt() time.Time                       { return a.createdAt }
func (a LoanApplication) UpdatedAt() time.Time                       { return a.updatedAt }
func (a LoanApplication) DomainEvents() []event.DomainEvent          { return a.domainEvents }

// Assessment returns the underwriting decision, or false while pending.
func (a LoanApplication) Assessment() (RiskAssessment, bool) {
	if a.assessment == nil {
		return RiskAssessment{}, false
	}
	return *a.assessment, true
}

// Params returns the applicant-supplied fields.
func (a LoanApplication) Params() LoanApplicationParams {
	return LoanApplicationParams{
		UserID:                   a.userID,
		LoanType:                 a.loanType,
		Amount:                   a.amount,
		TenureMonths:             a.tenureMonths,
		AnnualIncome:             a.annualIncome,
		EmploymentType:           a.employmentType,
		EmploymentDurationMonths: a.employmentDurationMonths,
		HasExistingLoans:         a.hasExistingLoans,
		Purpose:                  a.purpose,
		FolioNumbers:             copyStrings(a.folioNumbers),
	}
}

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a LoanApplication) ClearEvents() LoanApplication {
	next := a
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
