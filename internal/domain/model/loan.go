package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

var (
	ErrLoanNotActive          = errors.New("loan is not active")
	ErrInstallmentNotFound    = errors.New("installment not found")
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")
	ErrInstallmentOutOfOrder  = errors.New("earlier installments are still due")
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate created from an approved application.
// Invariants: totalAmount = emi × tenure, rounded to paise, and
// totalInterest = totalAmount − principal.
type Loan struct {
	id              string
	userID          string
	applicationID   string
	loanType        valueobject.LoanType
	principal       decimal.Decimal
	interestRate    decimal.Decimal
	tenureMonths    int
	startDate       time.Time
	endDate         time.Time
	emiAmount       decimal.Decimal
	totalInterest   decimal.Decimal
	totalAmount     decimal.Decimal
	status          valueobject.LoanStatus
	disbursementRef string
	schedule        []RepaymentInstallment
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan sanctions a loan and generates its repayment schedule. The loan
// starts on startDate, ends tenureMonths calendar months later and sits in
// SANCTIONED status until disbursed.
func NewLoan(
	userID, applicationID string,
	loanType valueobject.LoanType,
	principal, annualRatePercent decimal.Decimal,
	tenureMonths int,
	startDate time.Time,
) (Loan, error) {
	if userID == "" {
		return Loan{}, errors.New("user ID is required")
	}
	if applicationID == "" {
		return Loan{}, errors.New("application ID is required")
	}
	if loanType.IsZero() {
		loanType = valueobject.LoanTypeShortTerm
	}

	emi, err := CalculateEMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return Loan{}, fmt.Errorf("calculate EMI: %w", err)
	}
	sched, err := BuildRepaymentSchedule(principal, annualRatePercent, tenureMonths, startDate)
	if err != nil {
		return Loan{}, fmt.Errorf("build repayment schedule: %w", err)
	}

	// A zero-rate EMI is an unrounded even split; rounding the product brings
	// the total back to the principal.
	totalAmount := emi.Mul(decimal.NewFromInt(int64(tenureMonths))).Round(2)
	id := uuid.New().String()
	endDate := AddMonths(startDate, tenureMonths)

	loan := Loan{
		id:            id,
		userID:        userID,
		applicationID: applicationID,
		loanType:      loanType,
		principal:     principal,
		interestRate:  annualRatePercent,
		tenureMonths:  tenureMonths,
		startDate:     startDate,
		endDate:       endDate,
		emiAmount:     emi,
		totalAmount:   totalAmount,
		totalInterest: totalAmount.Sub(principal),
		status:        valueobject.LoanStatusSanctioned,
		schedule:      sched,
		version:       1,
		createdAt:     startDate,
		updatedAt:     startDate,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanSanctioned(
		id, userID, applicationID, principal, annualRatePercent, tenureMonths, emi, endDate, startDate,
	))
	return loan, nil
}

// LoanSnapshot is the persisted state of a loan.
type LoanSnapshot struct {
	ID              string
	UserID          string
	ApplicationID   string
	LoanType        valueobject.LoanType
	Principal       decimal.Decimal
	InterestRate    decimal.Decimal
	TenureMonths    int
	StartDate       time.Time
	EndDate         time.Time
	EMIAmount       decimal.Decimal
	TotalInterest   decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          valueobject.LoanStatus
	DisbursementRef string
	Schedule        []RepaymentInstallment
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(s LoanSnapshot) Loan {
	return Loan{
		id:              s.ID,
		userID:          s.UserID,
		applicationID:   s.ApplicationID,
		loanType:        s.LoanType,
		principal:       s.Principal,
		interestRate:    s.InterestRate,
		tenureMonths:    s.TenureMonths,
		startDate:       s.StartDate,
		endDate:         s.EndDate,
		emiAmount:       s.EMIAmount,
		totalInterest:   s.TotalInterest,
		totalAmount:     s.TotalAmount,
		status:          s.Status,
		disbursementRef: s.DisbursementRef,
		schedule:        copySchedule(s.Schedule),
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

// Snapshot exports the persisted state of the loan.
func (l Loan) Snapshot() LoanSnapshot {
	return LoanSnapshot{
		ID:              l.id,
		UserID:          l.userID,
		ApplicationID:   l.applicationID,
		LoanType:        l.loanType,
		Principal:       l.principal,
		InterestRate:    l.interestRate,
		TenureMonths:    l.tenureMonths,
		StartDate:       l.startDate,
		EndDate:         l.endDate,
		EMIAmount:       l.emiAmount,
		TotalInterest:   l.totalInterest,
		TotalAmount:     l.totalAmount,
		Status:          l.status,
		DisbursementRef: l.disbursementRef,
		Schedule:        l.Schedule(),
		Version:         l.version,
		CreatedAt:       l.createdAt,
		UpdatedAt:       l.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Disburse transitions SANCTIONED -> ACTIVE once the payout has been made.
func (l Loan) Disburse(ref string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusSanctioned) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	if ref == "" {
		return l, errors.New("disbursement reference is required")
	}
	next := l
	next.status = valueobject.LoanStatusActive
	next.disbursementRef = ref
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDisbursed(l.id, l.userID, l.principal, ref, now))
	return next, nil
}

// PayInstallment marks installment seq as paid. Installments are collected in
// order; paying the last one closes the loan.
func (l Loan) PayInstallment(seq int, transactionID string, now time.Time) (Loan, error) {
	if err := l.CheckPayable(seq); err != nil {
		return l, err
	}
	if transactionID == "" {
		return l, errors.New("transaction ID is required")
	}
	idx := seq - 1

	next := l
	next.schedule = copySchedule(l.schedule)
	paidAt := now
	inst := next.schedule[idx]
	inst.Status = valueobject.InstallmentStatusPaid
	inst.PaidAt = &paidAt
	inst.TransactionID = transactionID
	next.schedule[idx] = inst
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewInstallmentPaid(
		l.id, l.userID, seq, inst.EMIAmount, transactionID, now,
	))

	if idx == len(next.schedule)-1 {
		next.status = valueobject.LoanStatusClosed
		next.domainEvents = append(next.domainEvents, event.NewLoanClosed(l.id, l.userID, now))
	}
	return next, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// CheckPayable reports whether installment seq can be paid now.
func (l Loan) CheckPayable(seq int) error {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return ErrLoanNotActive
	}
	idx := seq - 1
	if idx < 0 || idx >= len(l.schedule) {
		return ErrInstallmentNotFound
	}
	if l.schedule[idx].IsPaid() {
		return ErrInstallmentAlreadyPaid
	}
	if idx > 0 && !l.schedule[idx-1].IsPaid() {
		return ErrInstallmentOutOfOrder
	}
	return nil
}

// NextDueInstallment returns the earliest unpaid installment.
func (l Loan) NextDueInstallment() (RepaymentInstallment, bool) {
	for _, inst := range l.schedule {
		if !inst.IsPaid() {
			return inst, true
		}
	}
	return RepaymentInstallment{}, false
}

// OutstandingPrincipal is the balance remaining after the last paid
// installment.
func (l Loan) OutstandingPrincipal() decimal.Decimal {
	outstanding := l.principal
	for _, inst := range l.schedule {
		if !inst.IsPaid() {
			break
		}
		outstanding = inst.RemainingBalanceAfter
	}
	return outstanding
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                        { return l.id }
func (l Loan) UserID() string                    { return l.userID }
func (l Loan) ApplicationID() string             { return l.applicationID }
func (l Loan) LoanType() valueobject.LoanType    { return l.loanType }
func (l Loan) Principal() decimal.Decimal        { return l.principal }
func (l Loan) InterestRate() decimal.Decimal     { return l.interestRate }
func (l Loan) TenureMonths() int                 { return l.tenureMonths }
func (l Loan) StartDate() time.Time              { return l.startDate }
func (l Loan) EndDate() time.Time                { return l.endDate }
func (l Loan) EMIAmount() decimal.Decimal        { return l.emiAmount }
func (l Loan) TotalInterest() decimal.Decimal    { return l.totalInterest }
func (l Loan) TotalAmount() decimal.Decimal      { return l.totalAmount }
func (l Loan) Status() valueobject.LoanStatus    { return l.status }
func (l Loan) DisbursementRef() string           { return l.disbursementRef }
func (l Loan) Version() int                      { return l.version }
func (l Loan) CreatedAt() time.Time              { return l.createdAt }
func (l Loan) UpdatedAt() time.Time              { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// Schedule returns a copy of the repayment schedule.
func (l Loan) Schedule() []RepaymentInstallment {
	return copySchedule(l.schedule)
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copySchedule(src []RepaymentInstallment) []RepaymentInstallment {
	if src == nil {
		return nil
	}
	dst := make([]RepaymentInstallment, len(src))
	copy(dst, src)
	return dst
}
