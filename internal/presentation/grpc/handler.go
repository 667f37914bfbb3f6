package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/application/usecase"
	"github.com/nikhilpunky/manaja2/pkg/auth"
)

// LendingHandler implements LendingServiceServer on top of the use cases.
// The caller's identity always comes from the verified token, never from the
// request body.
type LendingHandler struct {
	verifyKYC   *usecase.VerifyKYCUseCase
	submitApp   *usecase.SubmitLoanApplicationUseCase
	eligibility *usecase.CheckEligibilityUseCase
	repayment   *usecase.MakeRepaymentUseCase
	getApp      *usecase.GetLoanApplicationUseCase
	listApps    *usecase.ListLoanApplicationsUseCase
	getLoan     *usecase.GetLoanUseCase
	listLoans   *usecase.ListLoansUseCase
	disburse    *usecase.DisburseLoanUseCase
	repayments  *usecase.ListRepaymentsUseCase
	products    *usecase.ListLoanProductsUseCase
	logger      *slog.Logger
}

// UseCases groups the handler's dependencies.
type UseCases struct {
	VerifyKYC            *usecase.VerifyKYCUseCase
	SubmitApplication    *usecase.SubmitLoanApplicationUseCase
	CheckEligibility     *usecase.CheckEligibilityUseCase
	MakeRepayment        *usecase.MakeRepaymentUseCase
	GetLoanApplication   *usecase.GetLoanApplicationUseCase
	ListLoanApplications *usecase.ListLoanApplicationsUseCase
	GetLoan              *usecase.GetLoanUseCase
	ListLoans            *usecase.ListLoansUseCase
	DisburseLoan         *usecase.DisburseLoanUseCase
	ListRepayments       *usecase.ListRepaymentsUseCase
	ListLoanProducts     *usecase.ListLoanProductsUseCase
}

// NewLendingHandler creates a new handler with all use-case dependencies.
func NewLendingHandler(uc UseCases, logger *slog.Logger) *LendingHandler {
	return &LendingHandler{
		verifyKYC:   uc.VerifyKYC,
		submitApp:   uc.SubmitApplication,
		eligibility: uc.CheckEligibility,
		repayment:   uc.MakeRepayment,
		getApp:      uc.GetLoanApplication,
		listApps:    uc.ListLoanApplications,
		getLoan:     uc.GetLoan,
		listLoans:   uc.ListLoans,
		disburse:    uc.DisburseLoan,
		repayments:  uc.ListRepayments,
		products:    uc.ListLoanProducts,
		logger:      logger,
	}
}

var _ LendingServiceServer = (*LendingHandler)(nil)

// VerifyKYC runs eKYC for the caller.
func (h *LendingHandler) VerifyKYC(ctx context.Context, req *dto.VerifyKYCRequest) (*dto.KYCResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.verifyKYC.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "VerifyKYC", err)
	}
	return &resp, nil
}

// SubmitLoanApplication underwrites a new application for the caller.
func (h *LendingHandler) SubmitLoanApplication(
	ctx context.Context,
	req *dto.SubmitLoanApplicationRequest,
) (*dto.SubmitLoanApplicationResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.submitApp.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "SubmitLoanApplication", err)
	}
	return &resp, nil
}

// CheckEligibility returns a pre-qualification quote.
func (h *LendingHandler) CheckEligibility(ctx context.Context, req *dto.CheckEligibilityRequest) (*dto.EligibilityResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.eligibility.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "CheckEligibility", err)
	}
	return &resp, nil
}

// MakeRepayment pays one installment of the caller's loan.
func (h *LendingHandler) MakeRepayment(ctx context.Context, req *dto.MakeRepaymentRequest) (*dto.RepaymentResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.repayment.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "MakeRepayment", err)
	}
	return &resp, nil
}

// GetLoanApplication returns one of the caller's applications.
func (h *LendingHandler) GetLoanApplication(
	ctx context.Context,
	req *dto.GetLoanApplicationRequest,
) (*dto.LoanApplicationResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.getApp.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "GetLoanApplication", err)
	}
	return &resp, nil
}

// ListLoanApplications returns the caller's applications, newest first.
func (h *LendingHandler) ListLoanApplications(
	ctx context.Context,
	req *dto.ListLoanApplicationsRequest,
) (*dto.LoanApplicationListResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.listApps.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ListLoanApplications", err)
	}
	return &resp, nil
}

// GetLoan returns one of the caller's loans with its schedule.
func (h *LendingHandler) GetLoan(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.getLoan.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "GetLoan", err)
	}
	return &resp, nil
}

// ListLoans returns the caller's loans, newest first.
func (h *LendingHandler) ListLoans(ctx context.Context, req *dto.ListLoansRequest) (*dto.LoanListResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.listLoans.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ListLoans", err)
	}
	return &resp, nil
}

// DisburseLoan retries the payout of one of the caller's sanctioned loans.
func (h *LendingHandler) DisburseLoan(ctx context.Context, req *dto.DisburseLoanRequest) (*dto.LoanResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.disburse.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "DisburseLoan", err)
	}
	return &resp, nil
}

// ListRepayments returns every installment across the caller's loans.
func (h *LendingHandler) ListRepayments(
	ctx context.Context,
	req *dto.ListRepaymentsRequest,
) (*dto.RepaymentListResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	req.UserID = userID
	resp, err := h.repayments.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ListRepayments", err)
	}
	return &resp, nil
}

// ListLoanProducts returns the product catalogue.
func (h *LendingHandler) ListLoanProducts(
	ctx context.Context,
	req *dto.ListLoanProductsRequest,
) (*dto.LoanProductListResponse, error) {
	resp, err := h.products.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ListLoanProducts", err)
	}
	return &resp, nil
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "no authenticated user")
	}
	return userID, nil
}
