package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

// ---------------------------------------------------------------------------
// UnderwritingEngine is the domain service for portfolio-backed loan decisions.
// ---------------------------------------------------------------------------

// UnderwritingEngine runs the full decision pipeline: portfolio valuation,
// credit score estimation, risk scoring, pricing and explanation. It holds no
// mutable state and is safe for concurrent use.
type UnderwritingEngine struct {
	policy    Policy
	scorer    *RiskScorer
	explainer Explainer
}

// NewUnderwritingEngine validates the policy and returns an engine for it.
func NewUnderwritingEngine(policy Policy) (*UnderwritingEngine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &UnderwritingEngine{
		policy:    policy,
		scorer:    NewRiskScorer(policy),
		explainer: NewExplainer(policy.Texts, policy.Triggers),
	}, nil
}

// Policy returns the policy the engine was built with.
func (e *UnderwritingEngine) Policy() Policy { return e.policy }

// Evaluate decides a loan application. Declines are a normal outcome with
// Approved=false; an error is returned only when the inputs violate the
// engine's contract (incomplete KYC, an empty or worthless portfolio, or
// non-positive application amounts).
func (e *UnderwritingEngine) Evaluate(
	app model.LoanApplication,
	identity model.VerifiedIdentity,
	holdings []model.MutualFundHolding,
	employmentDurationMonths int,
) (model.RiskAssessment, error) {
	if !identity.IsComplete() {
		return model.RiskAssessment{}, ErrKYCIncomplete
	}
	if err := validateApplication(app, employmentDurationMonths); err != nil {
		return model.RiskAssessment{}, err
	}

	valuation, err := ValuePortfolio(holdings)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("value portfolio: %w", err)
	}

	creditScore := EstimateCreditScore(CreditProfile{
		AnnualIncome:     app.AnnualIncome(),
		EmploymentType:   app.EmploymentType(),
		HasExistingLoans: app.HasExistingLoans(),
		LoanAmount:       app.Amount(),
		TenureMonths:     app.TenureMonths(),
	})

	rs, err := e.scorer.Score(RiskInput{
		CreditScore:              creditScore,
		LoanAmount:               app.Amount(),
		PortfolioValue:           valuation.Value,
		AnnualIncome:             app.AnnualIncome(),
		EmploymentType:           app.EmploymentType(),
		EmploymentDurationMonths: employmentDurationMonths,
		HasExistingLoans:         app.HasExistingLoans(),
	})
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("score risk: %w", err)
	}

	terms, err := e.policy.ResolveTerms(rs.Category, valuation.Value)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("resolve terms: %w", err)
	}

	return model.RiskAssessment{
		Approved:              rs.Approved,
		CreditScore:           creditScore,
		RiskScore:             rs.Score,
		RiskCategory:          rs.Category,
		PortfolioValue:        valuation.Value,
		EquityRatio:           valuation.EquityRatio,
		MaxLoanAmount:         terms.MaxLoanAmount,
		SuggestedInterestRate: terms.InterestRate,
		MaxTenureMonths:       terms.MaxTenureMonths,
		RejectionReasons:      e.explainer.RejectionReasons(rs),
		ApprovalConditions:    e.explainer.ApprovalConditions(rs),
		Factors:               rs.Factors,
	}, nil
}

// BuildRepaymentSchedule produces the amortization schedule for an approved
// loan.
func (e *UnderwritingEngine) BuildRepaymentSchedule(
	principal, annualRatePercent decimal.Decimal,
	tenureMonths int,
	startDate time.Time,
) ([]model.RepaymentInstallment, error) {
	return model.BuildRepaymentSchedule(principal, annualRatePercent, tenureMonths, startDate)
}

// PreQualify estimates the credit score and the credit-tier loan ceiling for
// an applicant without running a full risk evaluation.
func (e *UnderwritingEngine) PreQualify(
	profile CreditProfile,
	holdings []model.MutualFundHolding,
) (EligibilityQuote, error) {
	if err := validateProfile(profile); err != nil {
		return EligibilityQuote{}, err
	}
	valuation, err := ValuePortfolio(holdings)
	if err != nil {
		return EligibilityQuote{}, fmt.Errorf("value portfolio: %w", err)
	}
	return MaxEligibleLoanAmount(valuation, EstimateCreditScore(profile)), nil
}

func validateApplication(app model.LoanApplication, employmentDurationMonths int) error {
	if err := validateProfile(CreditProfile{
		AnnualIncome:   app.AnnualIncome(),
		EmploymentType: app.EmploymentType(),
		LoanAmount:     app.Amount(),
		TenureMonths:   app.TenureMonths(),
	}); err != nil {
		return err
	}
	if employmentDurationMonths < 0 {
		return invalid("employment duration", "must not be negative")
	}
	return nil
}

func validateProfile(p CreditProfile) error {
	switch {
	case !p.LoanAmount.IsPositive():
		return invalid("amount", "must be positive")
	case p.TenureMonths <= 0:
		return invalid("tenure", "must be positive")
	case !p.AnnualIncome.IsPositive():
		return invalid("annual income", "must be positive")
	case p.EmploymentType.IsZero():
		return invalid("employment type", "is required")
	}
	return nil
}
