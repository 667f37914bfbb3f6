package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/event"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// loanPayout pays a sanctioned loan out and records the activation.
type loanPayout struct {
	loanRepo  port.LoanRepository
	disburser port.Disburser
	publisher port.EventPublisher
	metrics   port.DecisionMetrics
	logger    *slog.Logger
}

// pay disburses loan to account. On any error the returned loan is the
// unchanged SANCTIONED input, which is also what storage holds.
func (p loanPayout) pay(ctx context.Context, loan model.Loan, account model.BankAccount) (model.Loan, error) {
	start := time.Now()
	ref, err := p.disburser.Disburse(ctx, loan, account)
	p.metrics.RecordCollaboratorCall("disburser", time.Since(start), err)
	if err != nil {
		return loan, fmt.Errorf("disburse loan %s: %w", loan.ID(), err)
	}

	active, err := loan.Disburse(ref, time.Now().UTC())
	if err != nil {
		return loan, fmt.Errorf("activate loan: %w", err)
	}
	if err := p.loanRepo.Save(ctx, active); err != nil {
		p.logger.ErrorContext(ctx, "payout made but loan activation not recorded",
			"loan_id", loan.ID(),
			"payout_ref", ref,
			"error", err,
		)
		return loan, fmt.Errorf("record payout %s: %w", ref, err)
	}
	publishCommitted(ctx, p.publisher, p.logger, active.DomainEvents()...)

	p.logger.InfoContext(ctx, "loan disbursed",
		"loan_id", active.ID(),
		"application_id", active.ApplicationID(),
		"principal", active.Principal().StringFixed(2),
		"emi", active.EMIAmount().StringFixed(2),
		"account", account.MaskedNumber(),
	)
	return active.ClearEvents(), nil
}

// publishCommitted publishes events for state that is already stored. A
// publish failure cannot undo the write, so it is logged and not returned.
func publishCommitted(ctx context.Context, publisher port.EventPublisher, logger *slog.Logger, events ...event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		types := make([]string, 0, len(events))
		for _, e := range events {
			types = append(types, e.EventType())
		}
		logger.WarnContext(ctx, "failed to publish events",
			"event_types", types,
			"aggregate_id", events[0].AggregateID(),
			"error", err,
		)
	}
}

// DisburseLoanUseCase retries the payout of a loan that was sanctioned but
// not yet paid out.
type DisburseLoanUseCase struct {
	loanRepo port.LoanRepository
	kycRepo  port.KYCRepository
	payout   loanPayout
}

// NewDisburseLoanUseCase wires dependencies.
func NewDisburseLoanUseCase(
	loanRepo port.LoanRepository,
	kycRepo port.KYCRepository,
	disburser port.Disburser,
	publisher port.EventPublisher,
	metrics port.DecisionMetrics,
	logger *slog.Logger,
) *DisburseLoanUseCase {
	return &DisburseLoanUseCase{
		loanRepo: loanRepo,
		kycRepo:  kycRepo,
		payout: loanPayout{
			loanRepo:  loanRepo,
			disburser: disburser,
			publisher: publisher,
			metrics:   metrics,
			logger:    logger,
		},
	}
}

// Execute pays the loan out to the bank account on the caller's KYC record.
// Only SANCTIONED loans owned by the caller can be disbursed.
func (uc *DisburseLoanUseCase) Execute(
	ctx context.Context,
	req dto.DisburseLoanRequest,
) (dto.LoanResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.LoanResponse{}, err
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, notFound("find loan", err)
	}
	if loan.UserID() != req.UserID {
		return dto.LoanResponse{}, fmt.Errorf("loan %s: %w", req.LoanID, ErrForbidden)
	}
	if !loan.Status().Equal(valueobject.LoanStatusSanctioned) {
		return dto.LoanResponse{}, fmt.Errorf("disburse loan %s in status %s: %w",
			loan.ID(), loan.Status(), valueobject.ErrInvalidStatusTransition)
	}

	kyc, err := uc.kycRepo.FindByUserID(ctx, req.UserID)
	if errors.Is(err, port.ErrNotFound) {
		return dto.LoanResponse{}, service.ErrKYCIncomplete
	}
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("load KYC record: %w", err)
	}
	if !kyc.Identity().IsComplete() {
		return dto.LoanResponse{}, service.ErrKYCIncomplete
	}

	loan, err = uc.payout.pay(ctx, loan, kyc.Bank())
	if err != nil {
		return dto.LoanResponse{}, err
	}
	return toLoanResponse(loan, true), nil
}
