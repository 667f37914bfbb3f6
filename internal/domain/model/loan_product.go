package model

import (
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// LoanProduct describes one of the mutual-fund-backed loan products. The
// amount and tenure ranges are advertised limits; underwriting decides on
// the collateral, not on these bounds.
type LoanProduct struct {
	Type             valueobject.LoanType
	Name             string
	Description      string
	BaseInterestRate decimal.Decimal
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
	MinTenureMonths  int
	MaxTenureMonths  int
}

var loanProducts = []LoanProduct{
	{
		Type:             valueobject.LoanTypeShortTerm,
		Name:             "Short-Term Mutual Fund Loan",
		Description:      "Quick loans against your mutual fund investments with flexible repayment options.",
		BaseInterestRate: decimal.RequireFromString("8.99"),
		MinAmount:        decimal.NewFromInt(20_000),
		MaxAmount:        decimal.NewFromInt(500_000),
		MinTenureMonths:  3,
		MaxTenureMonths:  12,
	},
	{
		Type:             valueobject.LoanTypeMediumTerm,
		Name:             "Medium-Term Mutual Fund Loan",
		Description:      "Leverage your mutual fund portfolio for medium-term financial needs with competitive rates.",
		BaseInterestRate: decimal.RequireFromString("9.49"),
		MinAmount:        decimal.NewFromInt(100_000),
		MaxAmount:        decimal.NewFromInt(1_000_000),
		MinTenureMonths:  12,
		MaxTenureMonths:  36,
	},
	{
		Type:             valueobject.LoanTypeLongTerm,
		Name:             "Long-Term Mutual Fund Loan",
		Description:      "Strategic financing against your long-term mutual fund investments with favorable terms.",
		BaseInterestRate: decimal.RequireFromString("9.99"),
		MinAmount:        decimal.NewFromInt(200_000),
		MaxAmount:        decimal.NewFromInt(2_000_000),
		MinTenureMonths:  36,
		MaxTenureMonths:  60,
	},
}

// LoanProducts returns the product catalogue, shortest tenure first.
func LoanProducts() []LoanProduct {
	out := make([]LoanProduct, len(loanProducts))
	copy(out, loanProducts)
	return out
}

// ProductFor returns the catalogue entry for t. A zero LoanType resolves to
// the short-term product.
func ProductFor(t valueobject.LoanType) (LoanProduct, bool) {
	if t.IsZero() {
		t = valueobject.LoanTypeShortTerm
	}
	for _, p := range loanProducts {
		if p.Type.Equal(t) {
			return p, true
		}
	}
	return LoanProduct{}, false
}

// Fits reports whether amount and tenure fall inside the product's ranges,
// bounds included.
func (p LoanProduct) Fits(amount decimal.Decimal, tenureMonths int) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount) &&
		tenureMonths >= p.MinTenureMonths && tenureMonths <= p.MaxTenureMonths
}
