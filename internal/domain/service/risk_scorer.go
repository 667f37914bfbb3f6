package service

import (
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)

	creditScoreFloor = decimal.NewFromInt(minCreditScore)
	creditScoreSpan  = decimal.NewFromInt(maxCreditScore - minCreditScore)
)

// Evaluated highest-first; the income-to-loan ratio must be >= floor.
var incomeAdequacyTiers = []struct {
	floor decimal.Decimal
	score decimal.Decimal
}{
	{decimal.NewFromInt(3), decimal.NewFromInt(100)},
	{decimal.NewFromInt(2), decimal.NewFromInt(80)},
	{decimal.RequireFromString("1.5"), decimal.NewFromInt(60)},
	{decimal.NewFromInt(1), decimal.NewFromInt(40)},
}

var minIncomeAdequacy = decimal.NewFromInt(20)

// Base stability per employment type. Types not listed score
// defaultStabilityBase.
var stabilityBase = map[valueobject.EmploymentType]int64{
	valueobject.EmploymentSalaried:                 90,
	valueobject.EmploymentSelfEmployedProfessional: 80,
	valueobject.EmploymentSelfEmployedBusiness:     75,
	valueobject.EmploymentRetired:                  70,
}

const defaultStabilityBase = 60

// RiskInput is everything the risk scorer consumes.
type RiskInput struct {
	CreditScore              int
	LoanAmount               decimal.Decimal
	PortfolioValue           decimal.Decimal
	AnnualIncome             decimal.Decimal
	EmploymentType           valueobject.EmploymentType
	EmploymentDurationMonths int
	HasExistingLoans         bool
}

// RiskScore is the scored and categorised outcome of one evaluation.
type RiskScore struct {
	Score    decimal.Decimal
	Category valueobject.RiskCategory
	Approved bool
	Factors  model.RiskFactors
}

// RiskScorer combines weighted sub-scores into a 0-100 risk score, where a
// higher score means a safer borrower.
type RiskScorer struct {
	policy Policy
}

// NewRiskScorer returns a scorer for the given policy.
func NewRiskScorer(policy Policy) *RiskScorer {
	return &RiskScorer{policy: policy}
}

// Score computes the composite risk score. LoanAmount and PortfolioValue
// must be positive.
func (s *RiskScorer) Score(in RiskInput) (RiskScore, error) {
	if !in.LoanAmount.IsPositive() {
		return RiskScore{}, invalid("loan amount", "must be positive")
	}
	if !in.PortfolioValue.IsPositive() {
		return RiskScore{}, ErrZeroPortfolioValue
	}
	if !in.AnnualIncome.IsPositive() {
		return RiskScore{}, invalid("annual income", "must be positive")
	}

	credit := normalizeCreditScore(in.CreditScore)
	income := incomeAdequacyScore(in.AnnualIncome, in.LoanAmount)
	ltv := loanToValue(in.LoanAmount, in.PortfolioValue)
	ltvScore := decimal.Max(hundred.Sub(ltv), zero)
	stability := employmentStabilityScore(in.EmploymentType, in.EmploymentDurationMonths)

	w := s.policy.Weights
	weighted := credit.Mul(w.CreditScore).
		Add(income.Mul(w.IncomeAdequacy)).
		Add(ltvScore.Mul(w.LoanToValue)).
		Add(stability.Mul(w.EmploymentStability))

	pen, trig := s.policy.Penalties, s.policy.Triggers
	penalty := zero
	if in.HasExistingLoans {
		penalty = penalty.Add(pen.ExistingLoans)
	}
	if income.LessThan(trig.WeakSubScore) {
		penalty = penalty.Add(pen.LowIncomeAdequacy)
	}
	if ltv.GreaterThan(trig.PenaltyLTV) {
		penalty = penalty.Add(pen.HighLoanToValue)
	}
	if credit.LessThan(trig.WeakSubScore) {
		penalty = penalty.Add(pen.PoorCreditHistory)
	}

	score := clamp(weighted.Sub(penalty), zero, hundred)

	return RiskScore{
		Score:    score,
		Category: s.Categorize(score),
		Approved: s.IsApproved(score),
		Factors: model.RiskFactors{
			NormalizedCreditScore: credit,
			IncomeAdequacy:        income,
			LoanToValue:           ltv,
			LTVScore:              ltvScore,
			EmploymentStability:   stability,
			WeightedScore:         weighted,
			Penalty:               penalty,
		},
	}, nil
}

// Categorize maps a score to its risk category, checking the highest bound
// first.
func (s *RiskScorer) Categorize(score decimal.Decimal) valueobject.RiskCategory {
	t := s.policy.Thresholds
	switch {
	case score.GreaterThanOrEqual(t.Low):
		return valueobject.RiskLow
	case score.GreaterThanOrEqual(t.Medium):
		return valueobject.RiskMedium
	case score.GreaterThanOrEqual(t.High):
		return valueobject.RiskHigh
	default:
		return valueobject.RiskVeryHigh
	}
}

// IsApproved reports whether a score clears the approval cut-off, which is
// the lower bound of the high category.
func (s *RiskScorer) IsApproved(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(s.policy.Thresholds.High)
}

func normalizeCreditScore(score int) decimal.Decimal {
	n := decimal.NewFromInt(int64(score)).Sub(creditScoreFloor).Div(creditScoreSpan).Mul(hundred)
	return clamp(n, zero, hundred)
}

func incomeAdequacyScore(annualIncome, loanAmount decimal.Decimal) decimal.Decimal {
	ratio := annualIncome.Div(loanAmount)
	for _, t := range incomeAdequacyTiers {
		if ratio.GreaterThanOrEqual(t.floor) {
			return t.score
		}
	}
	return minIncomeAdequacy
}

// loanToValue is the loan as a percentage of portfolio value.
func loanToValue(loanAmount, portfolioValue decimal.Decimal) decimal.Decimal {
	return loanAmount.Div(portfolioValue).Mul(hundred)
}

func employmentStabilityScore(et valueobject.EmploymentType, durationMonths int) decimal.Decimal {
	base, ok := stabilityBase[et]
	if !ok {
		base = defaultStabilityBase
	}

	var v int64
	switch {
	case durationMonths >= 60:
		v = min(base+10, 100)
	case durationMonths >= 36:
		v = base
	case durationMonths >= 24:
		v = base - 10
	case durationMonths >= 12:
		v = base - 20
	default:
		v = base - 30
	}
	return decimal.NewFromInt(v)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}
