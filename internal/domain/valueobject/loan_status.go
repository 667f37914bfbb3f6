package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanApplicationStatus is an immutable value object.
// ---------------------------------------------------------------------------

// LoanApplicationStatus is the decision state of a loan application. An
// application leaves PENDING exactly once.
type LoanApplicationStatus struct {
	value string
}

const (
	loanAppStatusPending  = "PENDING"
	loanAppStatusApproved = "APPROVED"
	loanAppStatusRejected = "REJECTED"
)

var (
	LoanApplicationStatusPending  = LoanApplicationStatus{value: loanAppStatusPending}
	LoanApplicationStatusApproved = LoanApplicationStatus{value: loanAppStatusApproved}
	LoanApplicationStatusRejected = LoanApplicationStatus{value: loanAppStatusRejected}
)

var validLoanApplicationStatuses = map[string]LoanApplicationStatus{
	loanAppStatusPending:  LoanApplicationStatusPending,
	loanAppStatusApproved: LoanApplicationStatusApproved,
	loanAppStatusRejected: LoanApplicationStatusRejected,
}

// NewLoanApplicationStatus creates a LoanApplicationStatus from a raw string.
func NewLoanApplicationStatus(s string) (LoanApplicationStatus, error) {
	v, ok := validLoanApplicationStatuses[s]
	if !ok {
		return LoanApplicationStatus{}, fmt.Errorf("invalid loan application status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanApplicationStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanApplicationStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanApplicationStatus) Equal(other LoanApplicationStatus) bool {
	return s.value == other.value
}

// ---------------------------------------------------------------------------
// LoanStatus is an immutable value object.
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a sanctioned loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusSanctioned = "SANCTIONED"
	loanStatusActive     = "ACTIVE"
	loanStatusClosed     = "CLOSED"
)

var (
	LoanStatusSanctioned = LoanStatus{value: loanStatusSanctioned}
	LoanStatusActive     = LoanStatus{value: loanStatusActive}
	LoanStatusClosed     = LoanStatus{value: loanStatusClosed}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusSanctioned: LoanStatusSanctioned,
	loanStatusActive:     LoanStatusActive,
	loanStatusClosed:     LoanStatusClosed,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// InstallmentStatus is an immutable value object.
// ---------------------------------------------------------------------------

// InstallmentStatus tracks whether a scheduled repayment has been collected.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending = "PENDING"
	installmentStatusPaid    = "PAID"
)

var (
	InstallmentStatusPending = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPaid    = InstallmentStatus{value: installmentStatusPaid}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending: InstallmentStatusPending,
	installmentStatusPaid:    InstallmentStatusPaid,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool {
	return s.value == other.value
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
