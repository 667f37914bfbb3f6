package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// CheckEligibilityUseCase quotes the credit-tier loan ceiling for a user
// without creating an application.
type CheckEligibilityUseCase struct {
	kycRepo  port.KYCRepository
	holdings port.HoldingsRegistry
	engine   *service.UnderwritingEngine
}

// NewCheckEligibilityUseCase wires dependencies.
func NewCheckEligibilityUseCase(
	kycRepo port.KYCRepository,
	holdings port.HoldingsRegistry,
	engine *service.UnderwritingEngine,
) *CheckEligibilityUseCase {
	return &CheckEligibilityUseCase{kycRepo: kycRepo, holdings: holdings, engine: engine}
}

// Execute returns the pre-qualification quote for the caller's holdings.
func (uc *CheckEligibilityUseCase) Execute(
	ctx context.Context,
	req dto.CheckEligibilityRequest,
) (dto.EligibilityResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.EligibilityResponse{}, err
	}
	employment, err := valueobject.NewEmploymentType(req.EmploymentType)
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}

	kyc, err := uc.kycRepo.FindByUserID(ctx, req.UserID)
	if errors.Is(err, port.ErrNotFound) {
		return dto.EligibilityResponse{}, service.ErrKYCIncomplete
	}
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("load KYC record: %w", err)
	}
	if !kyc.Identity().PANVerified {
		return dto.EligibilityResponse{}, service.ErrKYCIncomplete
	}

	holdings, err := uc.holdings.LookupHoldings(ctx, kyc.PAN(), req.FolioNumbers)
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("lookup holdings: %w", err)
	}

	quote, err := uc.engine.PreQualify(service.CreditProfile{
		AnnualIncome:     req.AnnualIncome,
		EmploymentType:   employment,
		HasExistingLoans: req.HasExistingLoans,
		LoanAmount:       req.Amount,
		TenureMonths:     req.TenureMonths,
	}, holdings)
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("pre-qualify: %w", err)
	}

	return dto.EligibilityResponse{
		CreditScore:       quote.CreditScore,
		PortfolioValue:    quote.PortfolioValue,
		EquityRatio:       quote.EquityRatio,
		LTVCap:            quote.LTV,
		MaxEligibleAmount: quote.MaxLoanAmount,
		RequestedAmount:   req.Amount,
		WithinLimit:       req.Amount.LessThanOrEqual(quote.MaxLoanAmount),
	}, nil
}
