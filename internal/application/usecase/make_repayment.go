package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
)

// MakeRepaymentUseCase collects one installment of an active loan.
type MakeRepaymentUseCase struct {
	loanRepo  port.LoanRepository
	gateway   port.PaymentGateway
	publisher port.EventPublisher
	metrics   port.DecisionMetrics
	logger    *slog.Logger
}

// NewMakeRepaymentUseCase wires dependencies.
func NewMakeRepaymentUseCase(
	loanRepo port.LoanRepository,
	gateway port.PaymentGateway,
	publisher port.EventPublisher,
	metrics port.DecisionMetrics,
	logger *slog.Logger,
) *MakeRepaymentUseCase {
	return &MakeRepaymentUseCase{
		loanRepo:  loanRepo,
		gateway:   gateway,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute pays the requested installment, or the next one due when no
// sequence number is given. Installments are paid strictly in order.
func (uc *MakeRepaymentUseCase) Execute(
	ctx context.Context,
	req dto.MakeRepaymentRequest,
) (dto.RepaymentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.RepaymentResponse{}, err
	}

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.RepaymentResponse{}, notFound("find loan", err)
	}
	if loan.UserID() != req.UserID {
		return dto.RepaymentResponse{}, fmt.Errorf("loan %s: %w", req.LoanID, ErrForbidden)
	}

	// 2. Select the installment.
	seq := req.SequenceNumber
	if seq == 0 {
		next, ok := loan.NextDueInstallment()
		if !ok {
			return dto.RepaymentResponse{}, ErrNoInstallmentDue
		}
		seq = next.SequenceNumber
	}
	if err := loan.CheckPayable(seq); err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("pay installment %d: %w", seq, err)
	}
	inst := loan.Schedule()[seq-1]

	// 3. Collect the payment.
	start := time.Now()
	txnID, err := uc.gateway.Collect(ctx, loan, inst)
	uc.metrics.RecordCollaboratorCall("payment_gateway", time.Since(start), err)
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("collect installment %d: %w", seq, err)
	}

	loan, err = loan.PayInstallment(seq, txnID, time.Now().UTC())
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("pay installment %d: %w", seq, err)
	}

	// 4. Persist and publish.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.InfoContext(ctx, "installment paid",
		"loan_id", loan.ID(),
		"user_id", loan.UserID(),
		"sequence", seq,
		"amount", inst.EMIAmount.StringFixed(2),
		"loan_status", loan.Status().String(),
	)

	return dto.RepaymentResponse{
		LoanID:               loan.ID(),
		SequenceNumber:       seq,
		AmountPaid:           inst.EMIAmount,
		TransactionID:        txnID,
		OutstandingPrincipal: loan.OutstandingPrincipal(),
		LoanStatus:           loan.Status().String(),
		NextDue:              nextDueResponse(loan),
	}, nil
}
