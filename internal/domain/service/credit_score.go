package service

import (
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

const (
	baseCreditScore = 650
	minCreditScore  = 300
	maxCreditScore  = 900
)

// CreditProfile is the applicant data a synthetic credit score is derived
// from. Callers are expected to pass validated, positive amounts.
type CreditProfile struct {
	AnnualIncome     decimal.Decimal
	EmploymentType   valueobject.EmploymentType
	HasExistingLoans bool
	LoanAmount       decimal.Decimal
	TenureMonths     int
}

type bracket struct {
	floor decimal.Decimal
	delta int
}

// Evaluated highest-first; a bracket applies when the value is >= floor.
var incomeBrackets = []bracket{
	{decimal.NewFromInt(1_500_000), 150},
	{decimal.NewFromInt(1_000_000), 120},
	{decimal.NewFromInt(700_000), 90},
	{decimal.NewFromInt(500_000), 60},
	{decimal.NewFromInt(300_000), 30},
}

// Evaluated highest-first; a tier applies when the ratio is strictly above floor.
var loanToIncomePenalties = []bracket{
	{decimal.NewFromInt(1), -100},
	{decimal.RequireFromString("0.7"), -70},
	{decimal.RequireFromString("0.5"), -40},
	{decimal.RequireFromString("0.3"), -20},
}

var tenureBonuses = []struct {
	minMonths int
	delta     int
}{
	{48, 50},
	{36, 40},
	{24, 30},
	{12, 20},
}

// Total over every employment type. The professional, business and retired
// sub-types only influence employment stability, not the credit score.
var employmentCreditAdjustment = map[valueobject.EmploymentType]int{
	valueobject.EmploymentSalaried:                 100,
	valueobject.EmploymentSelfEmployed:             70,
	valueobject.EmploymentBusinessOwner:            60,
	valueobject.EmploymentUnemployed:               -50,
	valueobject.EmploymentOther:                    0,
	valueobject.EmploymentSelfEmployedProfessional: 0,
	valueobject.EmploymentSelfEmployedBusiness:     0,
	valueobject.EmploymentRetired:                  0,
}

const existingLoanPenalty = -50

// EstimateCreditScore derives a deterministic credit score in [300, 900]
// from the applicant's profile.
func EstimateCreditScore(p CreditProfile) int {
	score := baseCreditScore

	for _, b := range incomeBrackets {
		if p.AnnualIncome.GreaterThanOrEqual(b.floor) {
			score += b.delta
			break
		}
	}

	score += employmentCreditAdjustment[p.EmploymentType]

	if p.HasExistingLoans {
		score += existingLoanPenalty
	}

	if p.AnnualIncome.IsPositive() {
		ratio := p.LoanAmount.Div(p.AnnualIncome)
		for _, b := range loanToIncomePenalties {
			if ratio.GreaterThan(b.floor) {
				score += b.delta
				break
			}
		}
	}

	for _, t := range tenureBonuses {
		if p.TenureMonths >= t.minMonths {
			score += t.delta
			break
		}
	}

	return clampInt(score, minCreditScore, maxCreditScore)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
