package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
)

// GetLoanApplicationUseCase retrieves one of the caller's applications.
type GetLoanApplicationUseCase struct {
	appRepo port.LoanApplicationRepository
}

// NewGetLoanApplicationUseCase wires dependencies.
func NewGetLoanApplicationUseCase(appRepo port.LoanApplicationRepository) *GetLoanApplicationUseCase {
	return &GetLoanApplicationUseCase{appRepo: appRepo}
}

// Execute returns the application, or ErrNotFound when it belongs to someone
// else.
func (uc *GetLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.LoanApplicationResponse{}, notFound("find application", err)
	}
	if app.UserID() != req.UserID {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find application: %w", ErrNotFound)
	}
	return toApplicationResponse(app), nil
}

// ListLoanApplicationsUseCase lists the caller's applications.
type ListLoanApplicationsUseCase struct {
	appRepo port.LoanApplicationRepository
}

// NewListLoanApplicationsUseCase wires dependencies.
func NewListLoanApplicationsUseCase(appRepo port.LoanApplicationRepository) *ListLoanApplicationsUseCase {
	return &ListLoanApplicationsUseCase{appRepo: appRepo}
}

// Execute returns the caller's applications, newest first.
func (uc *ListLoanApplicationsUseCase) Execute(
	ctx context.Context,
	req dto.ListLoanApplicationsRequest,
) (dto.LoanApplicationListResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.LoanApplicationListResponse{}, err
	}
	apps, err := uc.appRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return dto.LoanApplicationListResponse{}, fmt.Errorf("list applications: %w", err)
	}
	out := dto.LoanApplicationListResponse{
		Applications: make([]dto.LoanApplicationResponse, 0, len(apps)),
	}
	for _, app := range apps {
		out.Applications = append(out.Applications, toApplicationResponse(app))
	}
	return out, nil
}

// GetLoanUseCase retrieves one of the caller's loans with its schedule.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns the loan, or ErrNotFound when it belongs to someone else.
func (uc *GetLoanUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanRequest,
) (dto.LoanResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.LoanResponse{}, err
	}
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, notFound("find loan", err)
	}
	if loan.UserID() != req.UserID {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", ErrNotFound)
	}
	return toLoanResponse(loan, true), nil
}

// ListLoansUseCase lists the caller's loans without their schedules.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListLoansUseCase wires dependencies.
func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// Execute returns the caller's loans, newest first.
func (uc *ListLoansUseCase) Execute(
	ctx context.Context,
	req dto.ListLoansRequest,
) (dto.LoanListResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.LoanListResponse{}, err
	}
	loans, err := uc.loanRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return dto.LoanListResponse{}, fmt.Errorf("list loans: %w", err)
	}
	out := dto.LoanListResponse{Loans: make([]dto.LoanResponse, 0, len(loans))}
	for _, loan := range loans {
		out.Loans = append(out.Loans, toLoanResponse(loan, false))
	}
	return out, nil
}

// ListRepaymentsUseCase lists the installments of all the caller's loans.
type ListRepaymentsUseCase struct {
	loanRepo port.LoanRepository
}

// NewListRepaymentsUseCase wires dependencies.
func NewListRepaymentsUseCase(loanRepo port.LoanRepository) *ListRepaymentsUseCase {
	return &ListRepaymentsUseCase{loanRepo: loanRepo}
}

// Execute flattens the caller's repayment schedules, earliest due date first,
// optionally keeping only installments in the requested status.
func (uc *ListRepaymentsUseCase) Execute(
	ctx context.Context,
	req dto.ListRepaymentsRequest,
) (dto.RepaymentListResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.RepaymentListResponse{}, err
	}
	loans, err := uc.loanRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return dto.RepaymentListResponse{}, fmt.Errorf("list repayments: %w", err)
	}

	out := dto.RepaymentListResponse{Repayments: []dto.RepaymentEntryResponse{}}
	for _, loan := range loans {
		var productName string
		if p, ok := model.ProductFor(loan.LoanType()); ok {
			productName = p.Name
		}
		for _, inst := range loan.Schedule() {
			if req.Status != "" && inst.Status.String() != req.Status {
				continue
			}
			out.Repayments = append(out.Repayments, dto.RepaymentEntryResponse{
				LoanID:             loan.ID(),
				ProductName:        productName,
				SequenceNumber:     inst.SequenceNumber,
				DueDate:            inst.DueDate,
				EMIAmount:          inst.EMIAmount,
				PrincipalComponent: inst.PrincipalComponent,
				InterestComponent:  inst.InterestComponent,
				Status:             inst.Status.String(),
				PaidAt:             inst.PaidAt,
				TransactionID:      inst.TransactionID,
			})
		}
	}
	slices.SortStableFunc(out.Repayments, func(a, b dto.RepaymentEntryResponse) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		if c := strings.Compare(a.LoanID, b.LoanID); c != 0 {
			return c
		}
		return a.SequenceNumber - b.SequenceNumber
	})
	return out, nil
}

// ListLoanProductsUseCase returns the loan product catalogue.
type ListLoanProductsUseCase struct{}

// NewListLoanProductsUseCase wires dependencies.
func NewListLoanProductsUseCase() *ListLoanProductsUseCase {
	return &ListLoanProductsUseCase{}
}

// Execute lists every product, shortest tenure first.
func (uc *ListLoanProductsUseCase) Execute(
	_ context.Context,
	_ dto.ListLoanProductsRequest,
) (dto.LoanProductListResponse, error) {
	products := model.LoanProducts()
	out := dto.LoanProductListResponse{Products: make([]dto.LoanProductResponse, 0, len(products))}
	for _, p := range products {
		out.Products = append(out.Products, toProductResponse(p))
	}
	return out, nil
}
