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

func pendingApplication(t *testing.T, userID string) model.LoanApplication {
	t.Helper()
	app, err := model.NewLoanApplication(model.LoanApplicationParams{
		UserID:         userID,
		Amount:         decimal.NewFromInt(100_000),
		TenureMonths:   12,
		AnnualIncome:   decimal.NewFromInt(600_000),
		EmploymentType: valueobject.EmploymentSalaried,
	}, evalNow)
	require.NoError(t, err)
	return app
}

func TestGetLoanApplication_Execute(t *testing.T) {
	app := pendingApplication(t, "user-1")
	repo := &mockLoanApplicationRepository{savedApps: []model.LoanApplication{app}}
	uc := usecase.NewGetLoanApplicationUseCase(repo)

	t.Run("owner can read", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.GetLoanApplicationRequest{UserID: "user-1", ApplicationID: app.ID()})
		require.NoError(t, err)
		assert.Equal(t, app.ID(), resp.ID)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Nil(t, resp.Assessment)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetLoanApplicationRequest{UserID: "user-2", ApplicationID: app.ID()})
		require.ErrorIs(t, err, usecase.ErrNotFound)
	})

	t.Run("missing application", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetLoanApplicationRequest{UserID: "user-1", ApplicationID: "nope"})
		require.ErrorIs(t, err, usecase.ErrNotFound)
	})
}

func TestListLoanApplications_Execute(t *testing.T) {
	repo := &mockLoanApplicationRepository{savedApps: []model.LoanApplication{
		pendingApplication(t, "user-1"),
		pendingApplication(t, "user-2"),
		pendingApplication(t, "user-1"),
	}}

	resp, err := usecase.NewListLoanApplicationsUseCase(repo).
		Execute(context.Background(), dto.ListLoanApplicationsRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, resp.Applications, 2)

	resp, err = usecase.NewListLoanApplicationsUseCase(repo).
		Execute(context.Background(), dto.ListLoanApplicationsRequest{UserID: "user-3"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Applications)
	assert.Empty(t, resp.Applications)
}

func TestGetLoan_Execute(t *testing.T) {
	loan := activeLoan(t, "user-1", 12)
	uc := usecase.NewGetLoanUseCase(&mockLoanRepository{savedLoans: []model.Loan{loan}})

	resp, err := uc.Execute(context.Background(), dto.GetLoanRequest{UserID: "user-1", LoanID: loan.ID()})
	require.NoError(t, err)
	assert.Len(t, resp.Schedule, 12)
	assert.Equal(t, "ACTIVE", resp.Status)
	require.NotNil(t, resp.NextDue)
	assert.Equal(t, 1, resp.NextDue.SequenceNumber)
	assert.True(t, resp.OutstandingPrincipal.Equal(decimal.NewFromInt(100_000)))

	_, err = uc.Execute(context.Background(), dto.GetLoanRequest{UserID: "user-2", LoanID: loan.ID()})
	require.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestListLoans_Execute(t *testing.T) {
	repo := &mockLoanRepository{savedLoans: []model.Loan{
		activeLoan(t, "user-1", 6),
		activeLoan(t, "user-1", 12),
		activeLoan(t, "user-2", 6),
	}}

	resp, err := usecase.NewListLoansUseCase(repo).Execute(context.Background(), dto.ListLoansRequest{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, resp.Loans, 2)
	for _, l := range resp.Loans {
		assert.Empty(t, l.Schedule)
		assert.Equal(t, "user-1", l.UserID)
	}
}

func TestListRepayments_Execute(t *testing.T) {
	first := activeLoan(t, "user-1", 3)
	paid, err := first.PayInstallment(1, "TXN-1", evalNow.AddDate(0, 1, 0))
	require.NoError(t, err)
	second := activeLoan(t, "user-1", 2)
	repo := &mockLoanRepository{savedLoans: []model.Loan{
		paid,
		second,
		activeLoan(t, "user-2", 6),
	}}
	uc := usecase.NewListRepaymentsUseCase(repo)

	t.Run("all installments earliest due first", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ListRepaymentsRequest{UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, resp.Repayments, 5)
		for i := 1; i < len(resp.Repayments); i++ {
			assert.False(t, resp.Repayments[i].DueDate.Before(resp.Repayments[i-1].DueDate))
		}
		for _, r := range resp.Repayments {
			assert.Contains(t, []string{first.ID(), second.ID()}, r.LoanID)
			assert.Equal(t, "Short-Term Mutual Fund Loan", r.ProductName)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ListRepaymentsRequest{UserID: "user-1", Status: "PAID"})
		require.NoError(t, err)
		require.Len(t, resp.Repayments, 1)
		assert.Equal(t, first.ID(), resp.Repayments[0].LoanID)
		assert.Equal(t, 1, resp.Repayments[0].SequenceNumber)
		assert.Equal(t, "TXN-1", resp.Repayments[0].TransactionID)
		require.NotNil(t, resp.Repayments[0].PaidAt)

		resp, err = uc.Execute(context.Background(), dto.ListRepaymentsRequest{UserID: "user-1", Status: "PENDING"})
		require.NoError(t, err)
		assert.Len(t, resp.Repayments, 4)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.ListRepaymentsRequest{UserID: "user-1", Status: "LATE"})
		require.ErrorIs(t, err, dto.ErrInvalidRequest)
	})

	t.Run("no loans", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ListRepaymentsRequest{UserID: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, resp.Repayments)
		assert.Empty(t, resp.Repayments)
	})
}

func TestListLoanProducts_Execute(t *testing.T) {
	resp, err := usecase.NewListLoanProductsUseCase().Execute(context.Background(), dto.ListLoanProductsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 3)

	long := resp.Products[2]
	assert.Equal(t, "long_term_mf", long.LoanType)
	assert.Equal(t, "Long-Term Mutual Fund Loan", long.Name)
	assert.True(t, long.BaseInterestRate.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, long.MinAmount.Equal(decimal.NewFromInt(200_000)))
	assert.True(t, long.MaxAmount.Equal(decimal.NewFromInt(2_000_000)))
	assert.Equal(t, 36, long.MinTenureMonths)
	assert.Equal(t, 60, long.MaxTenureMonths)
}

func TestResponses_CarryProduct(t *testing.T) {
	t.Run("loan", func(t *testing.T) {
		loan := activeLoan(t, "user-1", 6)
		resp, err := usecase.NewGetLoanUseCase(&mockLoanRepository{savedLoans: []model.Loan{loan}}).
			Execute(context.Background(), dto.GetLoanRequest{UserID: "user-1", LoanID: loan.ID()})
		require.NoError(t, err)
		assert.Equal(t, "short_term_mf", resp.LoanType)
		require.NotNil(t, resp.Product)
		assert.Equal(t, "Short-Term Mutual Fund Loan", resp.Product.Name)
	})

	t.Run("application outside the advertised range", func(t *testing.T) {
		// 100000 over 12 months fits the short-term product; 2 months does not.
		inside := pendingApplication(t, "user-1")
		outside, err := model.NewLoanApplication(model.LoanApplicationParams{
			UserID:         "user-1",
			Amount:         decimal.NewFromInt(100_000),
			TenureMonths:   2,
			AnnualIncome:   decimal.NewFromInt(600_000),
			EmploymentType: valueobject.EmploymentSalaried,
		}, evalNow)
		require.NoError(t, err)

		repo := &mockLoanApplicationRepository{savedApps: []model.LoanApplication{inside, outside}}
		resp, err := usecase.NewListLoanApplicationsUseCase(repo).
			Execute(context.Background(), dto.ListLoanApplicationsRequest{UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, resp.Applications, 2)

		assert.True(t, resp.Applications[0].WithinProductLimits)
		assert.False(t, resp.Applications[1].WithinProductLimits)
		for _, a := range resp.Applications {
			require.NotNil(t, a.Product)
			assert.Equal(t, "short_term_mf", a.Product.LoanType)
		}
	})
}
