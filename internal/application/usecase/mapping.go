package usecase

import (
	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

func toKYCResponse(rec model.KYCRecord) dto.KYCResponse {
	return dto.KYCResponse{
		UserID:              rec.UserID(),
		AadhaarVerified:     rec.AadhaarResult().Verified,
		AadhaarMessage:      rec.AadhaarResult().Message,
		PANVerified:         rec.PANResult().Verified,
		PANMessage:          rec.PANResult().Message,
		BankVerified:        rec.BankResult().Verified,
		BankMessage:         rec.BankResult().Message,
		MaskedAccountNumber: rec.Bank().MaskedNumber(),
		IFSC:                rec.Bank().IFSC,
		Complete:            rec.Identity().IsComplete(),
		VerifiedAt:          rec.VerifiedAt(),
	}
}

func toAssessmentResponse(a model.RiskAssessment) *dto.AssessmentResponse {
	return &dto.AssessmentResponse{
		Approved:              a.Approved,
		CreditScore:           a.CreditScore,
		RiskScore:             a.RiskScore.Round(2),
		RiskCategory:          a.RiskCategory.String(),
		PortfolioValue:        a.PortfolioValue,
		MaxLoanAmount:         a.MaxLoanAmount,
		SuggestedInterestRate: a.SuggestedInterestRate,
		MaxTenureMonths:       a.MaxTenureMonths,
		RejectionReasons:      a.RejectionReasons,
		ApprovalConditions:    a.ApprovalConditions,
		Factors: dto.RiskFactorsResponse{
			NormalizedCreditScore: a.Factors.NormalizedCreditScore.Round(2),
			IncomeAdequacy:        a.Factors.IncomeAdequacy.Round(2),
			LoanToValue:           a.Factors.LoanToValue.Round(2),
			EmploymentStability:   a.Factors.EmploymentStability.Round(2),
			Penalty:               a.Factors.Penalty,
		},
	}
}

func toProductResponse(p model.LoanProduct) dto.LoanProductResponse {
	return dto.LoanProductResponse{
		LoanType:         p.Type.String(),
		Name:             p.Name,
		Description:      p.Description,
		BaseInterestRate: p.BaseInterestRate,
		MinAmount:        p.MinAmount,
		MaxAmount:        p.MaxAmount,
		MinTenureMonths:  p.MinTenureMonths,
		MaxTenureMonths:  p.MaxTenureMonths,
	}
}

func productResponseFor(t valueobject.LoanType) *dto.LoanProductResponse {
	p, ok := model.ProductFor(t)
	if !ok {
		return nil
	}
	resp := toProductResponse(p)
	return &resp
}

func toApplicationResponse(app model.LoanApplication) dto.LoanApplicationResponse {
	resp := dto.LoanApplicationResponse{
		ID:                       app.ID(),
		UserID:                   app.UserID(),
		LoanType:                 app.LoanType().String(),
		Product:                  productResponseFor(app.LoanType()),
		Amount:                   app.Amount(),
		TenureMonths:             app.TenureMonths(),
		AnnualIncome:             app.AnnualIncome(),
		EmploymentType:           app.EmploymentType().String(),
		EmploymentDurationMonths: app.EmploymentDurationMonths(),
		HasExistingLoans:         app.HasExistingLoans(),
		Purpose:                  app.Purpose(),
		FolioNumbers:             app.FolioNumbers(),
		Status:                   app.Status().String(),
		CreditScore:              app.CreditScore(),
		InterestRate:             app.InterestRate(),
		RejectionReason:          app.RejectionReason(),
		CreatedAt:                app.CreatedAt(),
		UpdatedAt:                app.UpdatedAt(),
	}
	if p, ok := model.ProductFor(app.LoanType()); ok {
		resp.WithinProductLimits = p.Fits(app.Amount(), app.TenureMonths())
	}
	if a, ok := app.Assessment(); ok {
		resp.Assessment = toAssessmentResponse(a)
	}
	return resp
}

func toInstallmentResponse(inst model.RepaymentInstallment) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		SequenceNumber:        inst.SequenceNumber,
		DueDate:               inst.DueDate,
		EMIAmount:             inst.EMIAmount,
		PrincipalComponent:    inst.PrincipalComponent,
		InterestComponent:     inst.InterestComponent,
		RemainingBalanceAfter: inst.RemainingBalanceAfter,
		Status:                inst.Status.String(),
		PaidAt:                inst.PaidAt,
		TransactionID:         inst.TransactionID,
	}
}

func nextDueResponse(loan model.Loan) *dto.InstallmentResponse {
	inst, ok := loan.NextDueInstallment()
	if !ok {
		return nil
	}
	resp := toInstallmentResponse(inst)
	return &resp
}

func toLoanResponse(loan model.Loan, withSchedule bool) dto.LoanResponse {
	resp := dto.LoanResponse{
		ID:                   loan.ID(),
		UserID:               loan.UserID(),
		ApplicationID:        loan.ApplicationID(),
		LoanType:             loan.LoanType().String(),
		Product:              productResponseFor(loan.LoanType()),
		Principal:            loan.Principal(),
		InterestRate:         loan.InterestRate(),
		TenureMonths:         loan.TenureMonths(),
		StartDate:            loan.StartDate(),
		EndDate:              loan.EndDate(),
		EMIAmount:            loan.EMIAmount(),
		TotalInterest:        loan.TotalInterest(),
		TotalAmount:          loan.TotalAmount(),
		OutstandingPrincipal: loan.OutstandingPrincipal(),
		Status:               loan.Status().String(),
		DisbursementRef:      loan.DisbursementRef(),
		NextDue:              nextDueResponse(loan),
		CreatedAt:            loan.CreatedAt(),
		UpdatedAt:            loan.UpdatedAt(),
	}
	if withSchedule {
		sched := loan.Schedule()
		resp.Schedule = make([]dto.InstallmentResponse, 0, len(sched))
		for _, inst := range sched {
			resp.Schedule = append(resp.Schedule, toInstallmentResponse(inst))
		}
	}
	return resp
}
