package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

func TestResolveTerms(t *testing.T) {
	policy := service.DefaultPolicy()
	tests := []struct {
		category valueobject.RiskCategory
		maxLoan  int64
		rate     string
		tenure   int
	}{
		{valueobject.RiskLow, 400_000, "8.99", 60},
		{valueobject.RiskMedium, 350_000, "10.49", 48},
		{valueobject.RiskHigh, 300_000, "11.99", 36},
		{valueobject.RiskVeryHigh, 250_000, "13.99", 24},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			terms, err := policy.ResolveTerms(tt.category, decimal.NewFromInt(500_000))
			require.NoError(t, err)
			assert.True(t, terms.MaxLoanAmount.Equal(decimal.NewFromInt(tt.maxLoan)), "got %s", terms.MaxLoanAmount)
			assert.True(t, terms.InterestRate.Equal(decimal.RequireFromString(tt.rate)))
			assert.Equal(t, tt.tenure, terms.MaxTenureMonths)
		})
	}
}

func TestResolveTerms_RoundsToWholeRupees(t *testing.T) {
	terms, err := service.DefaultPolicy().ResolveTerms(valueobject.RiskMedium, decimal.NewFromInt(333_333))
	require.NoError(t, err)
	assert.True(t, terms.MaxLoanAmount.Equal(decimal.NewFromInt(233_333)), "got %s", terms.MaxLoanAmount)
}

func TestResolveTerms_MonotonicInSeverity(t *testing.T) {
	policy := service.DefaultPolicy()
	value := decimal.NewFromInt(1_000_000)

	var prev *service.LoanTerms
	for _, cat := range valueobject.RiskCategories() {
		terms, err := policy.ResolveTerms(cat, value)
		require.NoError(t, err)
		if prev != nil {
			assert.True(t, terms.LTVCap.LessThan(prev.LTVCap), "LTV cap must fall at %s", cat)
			assert.True(t, terms.MaxLoanAmount.LessThan(prev.MaxLoanAmount), "max loan must fall at %s", cat)
			assert.True(t, terms.InterestRate.GreaterThan(prev.InterestRate), "rate must rise at %s", cat)
		}
		prev = &terms
	}
}

func TestMaxEligibleLoanAmount(t *testing.T) {
	tests := []struct {
		name        string
		creditScore int
		equityRatio string
		wantLTV     string
	}{
		{"excellent", 750, "0.5", "0.80"},
		{"good", 650, "0.5", "0.70"},
		{"average", 600, "0.5", "0.60"},
		{"average upper edge", 649, "0.5", "0.60"},
		{"poor", 599, "0.5", "0.50"},
		{"equity boost", 650, "0.8", "0.75"},
		{"equity boost capped", 800, "1", "0.80"},
		{"ratio of exactly 0.7 gets no boost", 600, "0.7", "0.60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := service.MaxEligibleLoanAmount(service.PortfolioValuation{
				Value:       decimal.NewFromInt(400_000),
				EquityRatio: decimal.RequireFromString(tt.equityRatio),
			}, tt.creditScore)

			want := decimal.RequireFromString(tt.wantLTV)
			assert.True(t, quote.LTV.Equal(want), "got LTV %s", quote.LTV)
			assert.True(t, quote.MaxLoanAmount.Equal(decimal.NewFromInt(400_000).Mul(want).Round(0)))
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, service.DefaultPolicy().Validate())

	t.Run("negative weight", func(t *testing.T) {
		p := service.DefaultPolicy()
		p.Weights.LoanToValue = decimal.NewFromInt(-1)
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)
	})

	t.Run("trigger out of range", func(t *testing.T) {
		p := service.DefaultPolicy()
		p.Triggers.RejectionLTV = decimal.NewFromInt(101)
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)

		p = service.DefaultPolicy()
		p.Triggers.WeakSubScore = decimal.Zero
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)
	})

	t.Run("thresholds out of order", func(t *testing.T) {
		p := service.DefaultPolicy()
		p.Thresholds.Medium = decimal.NewFromInt(85)
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)
	})

	t.Run("non-monotonic rate", func(t *testing.T) {
		p := service.DefaultPolicy()
		terms := p.Pricing[valueobject.RiskHigh]
		terms.InterestRate = decimal.RequireFromString("9.5")
		p.Pricing[valueobject.RiskHigh] = terms
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)
	})

	t.Run("missing category", func(t *testing.T) {
		p := service.DefaultPolicy()
		delete(p.Pricing, valueobject.RiskVeryHigh)
		assert.ErrorIs(t, p.Validate(), service.ErrInvalidPolicy)
	})
}
