package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// LoanTerms are the lending terms resolved for a risk category.
type LoanTerms struct {
	Category        valueobject.RiskCategory
	LTVCap          decimal.Decimal
	MaxLoanAmount   decimal.Decimal
	InterestRate    decimal.Decimal
	MaxTenureMonths int
}

// ResolveTerms looks up the pricing for a category and sizes the maximum
// loan as portfolioValue × LTV cap, rounded to the nearest rupee.
func (p Policy) ResolveTerms(category valueobject.RiskCategory, portfolioValue decimal.Decimal) (LoanTerms, error) {
	terms, ok := p.Pricing[category]
	if !ok {
		return LoanTerms{}, fmt.Errorf("%w: no pricing for category %q", ErrInvalidPolicy, category)
	}
	return LoanTerms{
		Category:        category,
		LTVCap:          terms.LTVCap,
		MaxLoanAmount:   portfolioValue.Mul(terms.LTVCap).Round(0),
		InterestRate:    terms.InterestRate,
		MaxTenureMonths: terms.MaxTenureMonths,
	}, nil
}

// ---------------------------------------------------------------------------
// Credit-tier eligibility (pre-qualification)
// ---------------------------------------------------------------------------

// EligibilityQuote is a pre-qualification estimate based on credit score
// tiers alone, independent of the full risk evaluation.
type EligibilityQuote struct {
	CreditScore    int
	PortfolioValue decimal.Decimal
	EquityRatio    decimal.Decimal
	LTV            decimal.Decimal
	MaxLoanAmount  decimal.Decimal
}

var (
	eligibilityExcellentLTV = decimal.RequireFromString("0.80")
	eligibilityGoodLTV      = decimal.RequireFromString("0.70")
	eligibilityAverageLTV   = decimal.RequireFromString("0.60")
	eligibilityPoorLTV      = decimal.RequireFromString("0.50")
	equityHeavyRatio        = decimal.RequireFromString("0.7")
	equityBoost             = decimal.RequireFromString("0.05")
	eligibilityMaxLTV       = decimal.RequireFromString("0.80")
)

// MaxEligibleLoanAmount sizes a loan from the credit score tier and the
// portfolio mix. Equity-heavy portfolios (equity ratio above 0.7) get a five
// point LTV boost, capped at 80%.
func MaxEligibleLoanAmount(valuation PortfolioValuation, creditScore int) EligibilityQuote {
	var ltv decimal.Decimal
	switch {
	case creditScore >= 750:
		ltv = eligibilityExcellentLTV
	case creditScore >= 650:
		ltv = eligibilityGoodLTV
	case creditScore < 600:
		ltv = eligibilityPoorLTV
	default:
		ltv = eligibilityAverageLTV
	}

	if valuation.EquityRatio.GreaterThan(equityHeavyRatio) {
		ltv = ltv.Add(equityBoost)
	}
	ltv = decimal.Min(ltv, eligibilityMaxLTV)

	return EligibilityQuote{
		CreditScore:    creditScore,
		PortfolioValue: valuation.Value,
		EquityRatio:    valuation.EquityRatio,
		LTV:            ltv,
		MaxLoanAmount:  valuation.Value.Mul(ltv).Round(0),
	}
}
