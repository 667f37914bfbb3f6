package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// Weights are the factor weights of the composite risk score.
//
// RepaymentHistory is carried for completeness but no input feeds it, so the
// consumed weights total 0.90 rather than 1.0.
type Weights struct {
	CreditScore         decimal.Decimal
	IncomeAdequacy      decimal.Decimal
	LoanToValue         decimal.Decimal
	EmploymentStability decimal.Decimal
	RepaymentHistory    decimal.Decimal
}

// ConsumedTotal is the sum of the weights that contribute to the score.
func (w Weights) ConsumedTotal() decimal.Decimal {
	return w.CreditScore.Add(w.IncomeAdequacy).Add(w.LoanToValue).Add(w.EmploymentStability)
}

// Penalties are subtracted from the weighted score when their trigger holds.
type Penalties struct {
	ExistingLoans     decimal.Decimal
	LowIncomeAdequacy decimal.Decimal
	HighLoanToValue   decimal.Decimal
	PoorCreditHistory decimal.Decimal
}

// Triggers are the levels at which individual factors count against the
// borrower. Sub-scores and LTV are both on a 0-100 scale.
type Triggers struct {
	// WeakSubScore is the sub-score below which the credit and income
	// penalties apply and a factor is named as a rejection reason.
	WeakSubScore decimal.Decimal
	// PenaltyLTV is the LTV above which the high LTV penalty applies.
	PenaltyLTV decimal.Decimal
	// RejectionLTV is the LTV above which LTV is named as a rejection reason.
	RejectionLTV decimal.Decimal
	// CollateralConditionLTV is the LTV above which approvals ask for more
	// pledged units.
	CollateralConditionLTV decimal.Decimal
}

// Thresholds are the lower bounds of the low, medium and high categories.
// Anything below High is very_high and is declined.
type Thresholds struct {
	Low    decimal.Decimal
	Medium decimal.Decimal
	High   decimal.Decimal
}

// PricingTerms are the lending terms offered for one risk category.
type PricingTerms struct {
	LTVCap          decimal.Decimal
	InterestRate    decimal.Decimal
	MaxTenureMonths int
}

// ReasonTexts are the human-readable rejection reasons and approval
// conditions, in display order.
type ReasonTexts struct {
	PoorCredit           string
	InsufficientIncome   string
	ExcessiveLoanToValue string
	UnstableEmployment   string
	AdditionalCollateral string
	BankStatements       string
	Guarantor            string
}

// Policy is the complete, tunable underwriting policy.
type Policy struct {
	Weights    Weights
	Penalties  Penalties
	Triggers   Triggers
	Thresholds Thresholds
	Pricing    map[valueobject.RiskCategory]PricingTerms
	Texts      ReasonTexts
}

// DefaultPolicy returns the production underwriting policy.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			CreditScore:         decimal.RequireFromString("0.35"),
			IncomeAdequacy:      decimal.RequireFromString("0.25"),
			LoanToValue:         decimal.RequireFromString("0.20"),
			EmploymentStability: decimal.RequireFromString("0.10"),
			RepaymentHistory:    decimal.RequireFromString("0.10"),
		},
		Penalties: Penalties{
			ExistingLoans:     decimal.NewFromInt(10),
			LowIncomeAdequacy: decimal.NewFromInt(15),
			HighLoanToValue:   decimal.NewFromInt(20),
			PoorCreditHistory: decimal.NewFromInt(25),
		},
		Triggers: Triggers{
			WeakSubScore:           decimal.NewFromInt(50),
			PenaltyLTV:             decimal.NewFromInt(70),
			RejectionLTV:           decimal.NewFromInt(75),
			CollateralConditionLTV: decimal.NewFromInt(60),
		},
		Thresholds: Thresholds{
			Low:    decimal.NewFromInt(80),
			Medium: decimal.NewFromInt(65),
			High:   decimal.NewFromInt(50),
		},
		Pricing: map[valueobject.RiskCategory]PricingTerms{
			valueobject.RiskLow:      {LTVCap: decimal.RequireFromString("0.80"), InterestRate: decimal.RequireFromString("8.99"), MaxTenureMonths: 60},
			valueobject.RiskMedium:   {LTVCap: decimal.RequireFromString("0.70"), InterestRate: decimal.RequireFromString("10.49"), MaxTenureMonths: 48},
			valueobject.RiskHigh:     {LTVCap: decimal.RequireFromString("0.60"), InterestRate: decimal.RequireFromString("11.99"), MaxTenureMonths: 36},
			valueobject.RiskVeryHigh: {LTVCap: decimal.RequireFromString("0.50"), InterestRate: decimal.RequireFromString("13.99"), MaxTenureMonths: 24},
		},
		Texts: ReasonTexts{
			PoorCredit:           "Poor credit history",
			InsufficientIncome:   "Insufficient income for requested loan amount",
			ExcessiveLoanToValue: "Requested loan amount too high relative to portfolio value",
			UnstableEmployment:   "Insufficient employment stability",
			AdditionalCollateral: "Additional mutual fund units to be pledged as collateral",
			BankStatements:       "6-month bank statements required for verification",
			Guarantor:            "Additional guarantor may be required",
		},
	}
}

// Validate checks the policy is internally consistent. Weights and penalties
// are non-negative, triggers lie in (0, 100] and thresholds strictly descend.
// Every category is priced, and moving to a more severe category strictly
// lowers the LTV cap and strictly raises the rate.
func (p Policy) Validate() error {
	for name, w := range map[string]decimal.Decimal{
		"credit score weight":         p.Weights.CreditScore,
		"income adequacy weight":      p.Weights.IncomeAdequacy,
		"loan to value weight":        p.Weights.LoanToValue,
		"employment stability weight": p.Weights.EmploymentStability,
		"repayment history weight":    p.Weights.RepaymentHistory,
		"existing loans penalty":      p.Penalties.ExistingLoans,
		"low income penalty":          p.Penalties.LowIncomeAdequacy,
		"high LTV penalty":            p.Penalties.HighLoanToValue,
		"poor credit penalty":         p.Penalties.PoorCreditHistory,
	} {
		if w.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPolicy, name)
		}
	}

	for name, level := range map[string]decimal.Decimal{
		"weak sub-score trigger":       p.Triggers.WeakSubScore,
		"penalty LTV trigger":          p.Triggers.PenaltyLTV,
		"rejection LTV trigger":        p.Triggers.RejectionLTV,
		"collateral condition trigger": p.Triggers.CollateralConditionLTV,
	} {
		if !level.IsPositive() || level.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s must be in (0, 100]", ErrInvalidPolicy, name)
		}
	}

	t := p.Thresholds
	if !(t.Low.GreaterThan(t.Medium) && t.Medium.GreaterThan(t.High) && t.High.IsPositive()) {
		return fmt.Errorf("%w: thresholds must satisfy low > medium > high > 0", ErrInvalidPolicy)
	}

	var prev *PricingTerms
	for _, cat := range valueobject.RiskCategories() {
		terms, ok := p.Pricing[cat]
		if !ok {
			return fmt.Errorf("%w: no pricing for category %s", ErrInvalidPolicy, cat)
		}
		if !terms.LTVCap.IsPositive() || terms.LTVCap.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: LTV cap for %s must be in (0, 1]", ErrInvalidPolicy, cat)
		}
		if terms.InterestRate.IsNegative() || terms.MaxTenureMonths <= 0 {
			return fmt.Errorf("%w: rate and tenure for %s must be positive", ErrInvalidPolicy, cat)
		}
		if prev != nil {
			if !terms.LTVCap.LessThan(prev.LTVCap) {
				return fmt.Errorf("%w: LTV cap must decrease with severity at %s", ErrInvalidPolicy, cat)
			}
			if !terms.InterestRate.GreaterThan(prev.InterestRate) {
				return fmt.Errorf("%w: interest rate must increase with severity at %s", ErrInvalidPolicy, cat)
			}
		}
		prev = &terms
	}
	return nil
}
