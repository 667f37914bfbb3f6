package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

// PortfolioValuation summarises pledged holdings.
type PortfolioValuation struct {
	Value       decimal.Decimal
	EquityValue decimal.Decimal
	EquityRatio decimal.Decimal
	Holdings    int
}

// ValuePortfolio totals the current value of the holdings and the share held
// in equity funds. An empty portfolio, a non-positive holding or a zero total
// is rejected so that no downstream ratio divides by zero.
func ValuePortfolio(holdings []model.MutualFundHolding) (PortfolioValuation, error) {
	if len(holdings) == 0 {
		return PortfolioValuation{}, ErrEmptyPortfolio
	}

	total := decimal.Zero
	equity := decimal.Zero
	for i, h := range holdings {
		v := h.CurrentValue()
		if !v.IsPositive() {
			return PortfolioValuation{}, invalid(fmt.Sprintf("holdings[%d]", i), "current value must be positive")
		}
		total = total.Add(v)
		if h.FundType().IsEquity() {
			equity = equity.Add(v)
		}
	}
	if total.IsZero() {
		return PortfolioValuation{}, ErrZeroPortfolioValue
	}

	return PortfolioValuation{
		Value:       total,
		EquityValue: equity,
		EquityRatio: equity.Div(total),
		Holdings:    len(holdings),
	}, nil
}
