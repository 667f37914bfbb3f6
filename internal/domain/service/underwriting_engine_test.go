package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

var (
	evalNow  = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	verified = model.VerifiedIdentity{AadhaarVerified: true, PANVerified: true, BankVerified: true}
)

func newEngine(t *testing.T) *service.UnderwritingEngine {
	t.Helper()
	engine, err := service.NewUnderwritingEngine(service.DefaultPolicy())
	require.NoError(t, err)
	return engine
}

func holding(t *testing.T, folio string, ft valueobject.FundType, nav, units int64) model.MutualFundHolding {
	t.Helper()
	h, err := model.NewMutualFundHolding(folio, "Test Fund "+folio, ft,
		decimal.NewFromInt(nav), decimal.NewFromInt(units), evalNow.AddDate(-1, 0, 0))
	require.NoError(t, err)
	return h
}

func application(t *testing.T, income, amount int64, emp valueobject.EmploymentType, existing bool, tenure int) model.LoanApplication {
	t.Helper()
	app, err := model.NewLoanApplication(model.LoanApplicationParams{
		UserID:           "user-1",
		Amount:           decimal.NewFromInt(amount),
		TenureMonths:     tenure,
		AnnualIncome:     decimal.NewFromInt(income),
		EmploymentType:   emp,
		HasExistingLoans: existing,
		Purpose:          "working capital",
	}, evalNow)
	require.NoError(t, err)
	return app
}

func TestUnderwritingEngine_Approval(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 1_200_000, 200_000, valueobject.EmploymentSalaried, false, 24)
	holdings := []model.MutualFundHolding{
		holding(t, "MF1", valueobject.FundTypeEquity, 250, 1_000),
		holding(t, "MF2", valueobject.FundTypeEquity, 250, 1_000),
	}

	result, err := engine.Evaluate(app, verified, holdings, 24)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.CreditScore, 800)
	assert.True(t, result.PortfolioValue.Equal(decimal.NewFromInt(500_000)))
	assert.True(t, result.EquityRatio.Equal(decimal.NewFromInt(1)))
	assert.True(t, result.Factors.LoanToValue.Equal(decimal.NewFromInt(40)))
	assert.True(t, result.Approved)
	assert.Equal(t, valueobject.RiskLow, result.RiskCategory)
	assert.True(t, result.MaxLoanAmount.Equal(decimal.NewFromInt(400_000)), "got %s", result.MaxLoanAmount)
	assert.True(t, result.SuggestedInterestRate.Equal(decimal.RequireFromString("8.99")))
	assert.Equal(t, 60, result.MaxTenureMonths)
	assert.Nil(t, result.RejectionReasons)
	assert.Nil(t, result.ApprovalConditions)
}

func TestUnderwritingEngine_Rejection(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 200_000, 900_000, valueobject.EmploymentUnemployed, true, 6)
	holdings := []model.MutualFundHolding{holding(t, "MF1", valueobject.FundTypeDebt, 300, 1_000)}

	result, err := engine.Evaluate(app, verified, holdings, 24)
	require.NoError(t, err)

	assert.False(t, result.Approved)
	assert.Equal(t, valueobject.RiskVeryHigh, result.RiskCategory)
	assert.True(t, result.Factors.LoanToValue.Equal(decimal.NewFromInt(300)))
	assert.True(t, result.Factors.LTVScore.IsZero())
	assert.True(t, result.RiskScore.IsZero())
	assert.Equal(t, []string{
		"Poor credit history",
		"Insufficient income for requested loan amount",
		"Requested loan amount too high relative to portfolio value",
	}, result.RejectionReasons)
	assert.Nil(t, result.ApprovalConditions)
}

func TestUnderwritingEngine_RejectionWithoutReasons(t *testing.T) {
	engine := newEngine(t)
	// Credit 610, income adequacy 60, LTV 50, stability 50: no individual
	// factor is weak, but the existing-loan penalty takes the score to ~38.
	app := application(t, 300_000, 200_000, valueobject.EmploymentOther, true, 12)
	holdings := []model.MutualFundHolding{
		holding(t, "MF1", valueobject.FundTypeEquity, 250, 800),
		holding(t, "MF2", valueobject.FundTypeHybrid, 250, 800),
	}

	result, err := engine.Evaluate(app, verified, holdings, 24)
	require.NoError(t, err)

	assert.Equal(t, 610, result.CreditScore)
	assert.False(t, result.Approved)
	assert.Equal(t, valueobject.RiskVeryHigh, result.RiskCategory)
	assert.NotNil(t, result.RejectionReasons)
	assert.Empty(t, result.RejectionReasons)
}

func TestUnderwritingEngine_HighRiskApprovalConditions(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 700_000, 400_000, valueobject.EmploymentOther, false, 12)
	holdings := []model.MutualFundHolding{
		holding(t, "MF1", valueobject.FundTypeIndex, 300, 1_000),
		holding(t, "MF2", valueobject.FundTypeLiquid, 300, 1_000),
	}

	result, err := engine.Evaluate(app, verified, holdings, 12)
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, valueobject.RiskHigh, result.RiskCategory)
	assert.True(t, result.MaxLoanAmount.Equal(decimal.NewFromInt(360_000)))
	assert.Equal(t, []string{
		"Additional mutual fund units to be pledged as collateral",
		"6-month bank statements required for verification",
		"Additional guarantor may be required",
	}, result.ApprovalConditions)
}

func TestUnderwritingEngine_MediumRiskWithoutCollateralCondition(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 300_000, 100_000, valueobject.EmploymentOther, false, 12)
	holdings := []model.MutualFundHolding{holding(t, "MF1", valueobject.FundTypeEquity, 400, 1_000)}

	result, err := engine.Evaluate(app, verified, holdings, 12)
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, valueobject.RiskMedium, result.RiskCategory)
	assert.Nil(t, result.ApprovalConditions)
}

func TestUnderwritingEngine_InputContract(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 1_200_000, 200_000, valueobject.EmploymentSalaried, false, 24)
	holdings := []model.MutualFundHolding{holding(t, "MF1", valueobject.FundTypeEquity, 250, 1_000)}

	t.Run("incomplete KYC", func(t *testing.T) {
		_, err := engine.Evaluate(app, model.VerifiedIdentity{AadhaarVerified: true, PANVerified: true}, holdings, 24)
		assert.ErrorIs(t, err, service.ErrKYCIncomplete)
	})

	t.Run("empty portfolio", func(t *testing.T) {
		_, err := engine.Evaluate(app, verified, nil, 24)
		assert.ErrorIs(t, err, service.ErrEmptyPortfolio)
	})

	t.Run("worthless holding", func(t *testing.T) {
		_, err := engine.Evaluate(app, verified, []model.MutualFundHolding{{}}, 24)
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("uninitialised application", func(t *testing.T) {
		_, err := engine.Evaluate(model.LoanApplication{}, verified, holdings, 24)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "amount", verr.Field)
	})

	t.Run("negative employment duration", func(t *testing.T) {
		_, err := engine.Evaluate(app, verified, holdings, -1)
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestUnderwritingEngine_Idempotent(t *testing.T) {
	engine := newEngine(t)
	app := application(t, 850_000, 300_000, valueobject.EmploymentSelfEmployedProfessional, true, 36)
	holdings := []model.MutualFundHolding{
		holding(t, "MF1", valueobject.FundTypeEquity, 312, 977),
		holding(t, "MF2", valueobject.FundTypeDebt, 143, 1_234),
	}

	first, err := engine.Evaluate(app, verified, holdings, 40)
	require.NoError(t, err)
	second, err := engine.Evaluate(app, verified, holdings, 40)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestUnderwritingEngine_InvalidPolicy(t *testing.T) {
	p := service.DefaultPolicy()
	p.Thresholds.High = decimal.NewFromInt(90)
	_, err := service.NewUnderwritingEngine(p)
	assert.ErrorIs(t, err, service.ErrInvalidPolicy)
}

func TestUnderwritingEngine_BuildRepaymentSchedule(t *testing.T) {
	engine := newEngine(t)
	schedule, err := engine.BuildRepaymentSchedule(decimal.NewFromInt(100_000), decimal.RequireFromString("10.5"), 12, evalNow)
	require.NoError(t, err)
	require.Len(t, schedule, 12)
	assert.True(t, schedule[11].RemainingBalanceAfter.IsZero())

	_, err = engine.BuildRepaymentSchedule(decimal.NewFromInt(100_000), decimal.RequireFromString("10.5"), 0, evalNow)
	assert.ErrorIs(t, err, model.ErrNonPositiveTenure)
}

func TestUnderwritingEngine_PreQualify(t *testing.T) {
	engine := newEngine(t)
	holdings := []model.MutualFundHolding{
		holding(t, "MF1", valueobject.FundTypeEquity, 250, 1_000),
		holding(t, "MF2", valueobject.FundTypeEquity, 250, 1_000),
	}

	quote, err := engine.PreQualify(service.CreditProfile{
		AnnualIncome:   decimal.NewFromInt(1_200_000),
		EmploymentType: valueobject.EmploymentSalaried,
		LoanAmount:     decimal.NewFromInt(200_000),
		TenureMonths:   24,
	}, holdings)
	require.NoError(t, err)

	assert.Equal(t, 900, quote.CreditScore)
	assert.True(t, quote.LTV.Equal(decimal.RequireFromString("0.80")))
	assert.True(t, quote.MaxLoanAmount.Equal(decimal.NewFromInt(400_000)))

	_, err = engine.PreQualify(service.CreditProfile{}, holdings)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}
