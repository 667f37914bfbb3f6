package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/application/usecase"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

func activeLoan(t *testing.T, userID string, tenure int) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(userID, "app-1", valueobject.LoanTypeShortTerm, decimal.NewFromInt(100_000),
		decimal.RequireFromString("10.5"), tenure, evalNow)
	require.NoError(t, err)
	loan, err = loan.Disburse("PAYOUT-1", evalNow)
	require.NoError(t, err)
	return loan.ClearEvents()
}

func newRepaymentUseCase(loanRepo *mockLoanRepository, gateway *mockPaymentGateway, publisher *mockEventPublisher) *usecase.MakeRepaymentUseCase {
	return usecase.NewMakeRepaymentUseCase(loanRepo, gateway, publisher, &mockMetrics{}, discardLogger())
}

func TestMakeRepayment_Execute(t *testing.T) {
	t.Run("pays the next installment due", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 3)
		loanRepo := &mockLoanRepository{savedLoans: []model.Loan{loan}}
		gateway := &mockPaymentGateway{}
		publisher := &mockEventPublisher{}

		resp, err := newRepaymentUseCase(loanRepo, gateway, publisher).
			Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID()})
		require.NoError(t, err)

		assert.Equal(t, 1, resp.SequenceNumber)
		assert.Equal(t, "ACTIVE", resp.LoanStatus)
		assert.NotEmpty(t, resp.TransactionID)
		assert.True(t, resp.AmountPaid.Equal(loan.Schedule()[0].EMIAmount))
		assert.True(t, resp.OutstandingPrincipal.Equal(loan.Schedule()[0].RemainingBalanceAfter))
		require.NotNil(t, resp.NextDue)
		assert.Equal(t, 2, resp.NextDue.SequenceNumber)
		require.Len(t, gateway.collected, 1)
		assert.Equal(t, []string{"lending.loan.installment_paid"}, publisher.eventTypes())
	})

	t.Run("closes the loan after the last installment", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 2)
		loanRepo := &mockLoanRepository{savedLoans: []model.Loan{loan}}
		uc := newRepaymentUseCase(loanRepo, &mockPaymentGateway{}, &mockEventPublisher{})
		req := dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID()}

		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "CLOSED", resp.LoanStatus)
		assert.True(t, resp.OutstandingPrincipal.IsZero())
		assert.Nil(t, resp.NextDue)

		_, err = uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, usecase.ErrNoInstallmentDue)
	})

	t.Run("refuses out-of-order and repeated payments before collecting", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 3)
		loanRepo := &mockLoanRepository{savedLoans: []model.Loan{loan}}
		gateway := &mockPaymentGateway{}
		uc := newRepaymentUseCase(loanRepo, gateway, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID(), SequenceNumber: 2})
		require.ErrorIs(t, err, model.ErrInstallmentOutOfOrder)

		_, err = uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID(), SequenceNumber: 1})
		require.NoError(t, err)
		_, err = uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID(), SequenceNumber: 1})
		require.ErrorIs(t, err, model.ErrInstallmentAlreadyPaid)

		_, err = uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID(), SequenceNumber: 9})
		require.ErrorIs(t, err, model.ErrInstallmentNotFound)

		assert.Len(t, gateway.collected, 1)
	})

	t.Run("forbids paying someone else's loan", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 3)
		uc := newRepaymentUseCase(&mockLoanRepository{savedLoans: []model.Loan{loan}}, &mockPaymentGateway{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-2", LoanID: loan.ID()})
		require.ErrorIs(t, err, usecase.ErrForbidden)
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := newRepaymentUseCase(&mockLoanRepository{}, &mockPaymentGateway{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: "missing"})
		require.ErrorIs(t, err, usecase.ErrNotFound)
	})

	t.Run("gateway failure leaves the installment unpaid", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 3)
		loanRepo := &mockLoanRepository{savedLoans: []model.Loan{loan}}
		gateway := &mockPaymentGateway{
			collectFunc: func(context.Context, model.Loan, model.RepaymentInstallment) (string, error) {
				return "", errUpstream
			},
		}

		_, err := newRepaymentUseCase(loanRepo, gateway, &mockEventPublisher{}).
			Execute(context.Background(), dto.MakeRepaymentRequest{UserID: "user-1", LoanID: loan.ID()})
		require.ErrorIs(t, err, errUpstream)
		assert.Len(t, loanRepo.savedLoans, 1)
	})
}
