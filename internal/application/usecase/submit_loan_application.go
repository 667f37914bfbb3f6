package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// DefaultEmploymentDurationMonths is assumed when the applicant does not state
// how long they have been employed.
const DefaultEmploymentDurationMonths = 24

var tracer = otel.Tracer("usecase")

// SubmitLoanApplicationUseCase orchestrates submission, underwriting and,
// on approval, sanction and disbursement of a loan against pledged funds.
type SubmitLoanApplicationUseCase struct {
	origination port.OriginationStore
	kycRepo     port.KYCRepository
	holdings    port.HoldingsRegistry
	payout      loanPayout
	publisher   port.EventPublisher
	engine      *service.UnderwritingEngine
	metrics     port.DecisionMetrics
	logger      *slog.Logger
}

// NewSubmitLoanApplicationUseCase wires dependencies.
func NewSubmitLoanApplicationUseCase(
	origination port.OriginationStore,
	loanRepo port.LoanRepository,
	kycRepo port.KYCRepository,
	holdings port.HoldingsRegistry,
	disburser port.Disburser,
	publisher port.EventPublisher,
	engine *service.UnderwritingEngine,
	metrics port.DecisionMetrics,
	logger *slog.Logger,
) *SubmitLoanApplicationUseCase {
	return &SubmitLoanApplicationUseCase{
		origination: origination,
		kycRepo:     kycRepo,
		holdings:    holdings,
		payout: loanPayout{
			loanRepo:  loanRepo,
			disburser: disburser,
			publisher: publisher,
			metrics:   metrics,
			logger:    logger,
		},
		publisher: publisher,
		engine:    engine,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute creates, underwrites and persists a loan application. A declined
// application is a successful call with status REJECTED. An approved one is
// stored together with its sanctioned loan before the payout is attempted; a
// failed payout leaves the loan SANCTIONED and is not an error.
func (uc *SubmitLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitLoanApplicationRequest,
) (resp dto.SubmitLoanApplicationResponse, err error) {
	ctx, span := tracer.Start(ctx, "SubmitLoanApplication")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	if err := dto.Validate(req); err != nil {
		return dto.SubmitLoanApplicationResponse{}, err
	}
	params, err := applicationParams(req)
	if err != nil {
		return dto.SubmitLoanApplicationResponse{}, err
	}

	// 1. The applicant must have completed eKYC.
	kyc, err := uc.kycRepo.FindByUserID(ctx, req.UserID)
	if errors.Is(err, port.ErrNotFound) {
		return dto.SubmitLoanApplicationResponse{}, service.ErrKYCIncomplete
	}
	if err != nil {
		return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("load KYC record: %w", err)
	}
	if !kyc.Identity().IsComplete() {
		return dto.SubmitLoanApplicationResponse{}, service.ErrKYCIncomplete
	}

	// 2. Fetch the pledged holdings.
	start := time.Now()
	holdings, err := uc.holdings.LookupHoldings(ctx, kyc.PAN(), params.FolioNumbers)
	uc.metrics.RecordCollaboratorCall("holdings_registry", time.Since(start), err)
	if err != nil {
		return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("lookup holdings: %w", err)
	}

	// 3. Create the application aggregate.
	now := time.Now().UTC()
	app, err := model.NewLoanApplication(params, now)
	if err != nil {
		return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}
	span.SetAttributes(attribute.String("application.id", app.ID()))

	// 4. Underwrite.
	assessment, err := uc.engine.Evaluate(app, kyc.Identity(), holdings, app.EmploymentDurationMonths())
	if err != nil {
		return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("evaluate application: %w", err)
	}
	uc.metrics.RecordDecision(assessment.RiskCategory, assessment.Approved, assessment.RiskScore)
	span.SetAttributes(
		attribute.Bool("decision.approved", assessment.Approved),
		attribute.String("decision.risk_category", assessment.RiskCategory.String()),
	)

	// 5. Apply the decision and, on approval, sanction the loan.
	var loan *model.Loan
	if assessment.Approved {
		app, err = app.Approve(assessment, now)
		if err != nil {
			return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("apply decision: %w", err)
		}
		sanctioned, err := model.NewLoan(app.UserID(), app.ID(), app.LoanType(), app.Amount(),
			assessment.SuggestedInterestRate, app.TenureMonths(), now)
		if err != nil {
			return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("sanction loan: %w", err)
		}
		loan = &sanctioned
	} else {
		app, err = app.Reject(assessment, now)
		if err != nil {
			return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("apply decision: %w", err)
		}
	}

	uc.logger.InfoContext(ctx, "loan application decided",
		"application_id", app.ID(),
		"user_id", app.UserID(),
		"credit_score", assessment.CreditScore,
		"risk_score", assessment.RiskScore.StringFixed(2),
		"risk_category", assessment.RiskCategory.String(),
		"approved", assessment.Approved,
	)

	// 6. Store the decision and the sanctioned loan together.
	if err := uc.origination.SaveOrigination(ctx, app, loan); err != nil {
		return dto.SubmitLoanApplicationResponse{}, fmt.Errorf("save origination: %w", err)
	}
	publishCommitted(ctx, uc.publisher, uc.logger, app.DomainEvents()...)

	resp = dto.SubmitLoanApplicationResponse{Application: toApplicationResponse(app)}
	if loan == nil {
		return resp, nil
	}
	publishCommitted(ctx, uc.publisher, uc.logger, loan.DomainEvents()...)

	// 7. Pay out. A failure leaves the loan SANCTIONED for a later retry.
	disbursed, err := uc.payout.pay(ctx, loan.ClearEvents(), kyc.Bank())
	if err != nil {
		uc.logger.WarnContext(ctx, "loan sanctioned but not disbursed",
			"loan_id", disbursed.ID(),
			"application_id", app.ID(),
			"error", err,
		)
		span.AddEvent("disbursement deferred")
	}
	loanResp := toLoanResponse(disbursed, true)
	resp.Loan = &loanResp
	return resp, nil
}

func applicationParams(req dto.SubmitLoanApplicationRequest) (model.LoanApplicationParams, error) {
	employment, err := valueobject.NewEmploymentType(req.EmploymentType)
	if err != nil {
		return model.LoanApplicationParams{}, fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}
	loanType, err := valueobject.NewLoanType(req.LoanType)
	if err != nil {
		return model.LoanApplicationParams{}, fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}
	duration := DefaultEmploymentDurationMonths
	if req.EmploymentDurationMonths != nil {
		duration = *req.EmploymentDurationMonths
	}
	return model.LoanApplicationParams{
		UserID:                   req.UserID,
		LoanType:                 loanType,
		Amount:                   req.Amount,
		TenureMonths:             req.TenureMonths,
		AnnualIncome:             req.AnnualIncome,
		EmploymentType:           employment,
		EmploymentDurationMonths: duration,
		HasExistingLoans:         req.HasExistingLoans,
		Purpose:                  req.Purpose,
		FolioNumbers:             req.FolioNumbers,
	}, nil
}
