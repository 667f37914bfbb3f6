package model

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

var (
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrNonPositiveTenure    = errors.New("tenure must be at least one month")
	ErrNegativeInterestRate = errors.New("interest rate must not be negative")
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// RepaymentInstallment is one period of a fixed-EMI repayment schedule.
type RepaymentInstallment struct {
	SequenceNumber        int
	DueDate               time.Time
	EMIAmount             decimal.Decimal
	PrincipalComponent    decimal.Decimal
	InterestComponent     decimal.Decimal
	RemainingBalanceAfter decimal.Decimal
	Status                valueobject.InstallmentStatus
	PaidAt                *time.Time
	TransactionID         string
}

// IsPaid reports whether the installment has been collected.
func (i RepaymentInstallment) IsPaid() bool {
	return i.Status.Equal(valueobject.InstallmentStatusPaid)
}

// CalculateEMI returns the equal monthly installment for a loan:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1),  r = annualRatePercent / 12 / 100
//
// A zero rate degenerates to P / n. The result is rounded to paise except in
// the zero-rate case, where the even split is returned unrounded.
func CalculateEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if err := validateLoanTerms(principal, annualRatePercent, tenureMonths); err != nil {
		return decimal.Zero, err
	}
	if annualRatePercent.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(tenureMonths))), nil
	}

	// The power term is computed in float64 and brought back into decimal for
	// all monetary arithmetic.
	r := monthlyRate(annualRatePercent).InexactFloat64()
	factor := math.Pow(1+r, float64(tenureMonths))
	emi := principal.InexactFloat64() * r * factor / (factor - 1)
	return decimal.NewFromFloat(emi).Round(2), nil
}

// BuildRepaymentSchedule computes the amortization schedule for a loan that
// starts on startDate. Installment i falls due i calendar months after
// startDate, on the same day of the month or on the last day of shorter
// months. Interest is charged on the outstanding balance and rounded to
// paise; the final installment absorbs accumulated rounding so the balance
// closes at exactly zero.
func BuildRepaymentSchedule(
	principal, annualRatePercent decimal.Decimal,
	tenureMonths int,
	startDate time.Time,
) ([]RepaymentInstallment, error) {
	emi, err := CalculateEMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}

	rate := monthlyRate(annualRatePercent)
	remaining := principal
	schedule := make([]RepaymentInstallment, 0, tenureMonths)

	for seq := 1; seq <= tenureMonths; seq++ {
		interest := remaining.Mul(rate).Round(2)
		principalPart := emi.Sub(interest)

		if seq == tenureMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, RepaymentInstallment{
			SequenceNumber:        seq,
			DueDate:               AddMonths(startDate, seq),
			EMIAmount:             principalPart.Add(interest),
			PrincipalComponent:    principalPart,
			InterestComponent:     interest,
			RemainingBalanceAfter: remaining,
			Status:                valueobject.InstallmentStatusPending,
		})
	}

	return schedule, nil
}

// AddMonths moves t forward by n calendar months, keeping the day of the month
// but clamping it to the last day of the target month. time.AddDate would
// normalise Jan 31 + 1 month to Mar 3.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func monthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(monthsPerYear).Div(hundred)
}

func validateLoanTerms(principal, annualRatePercent decimal.Decimal, tenureMonths int) error {
	if tenureMonths <= 0 {
		return ErrNonPositiveTenure
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositivePrincipal
	}
	if annualRatePercent.IsNegative() {
		return ErrNegativeInterestRate
	}
	return nil
}
