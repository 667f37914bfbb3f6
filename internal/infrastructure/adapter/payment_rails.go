package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

// SimulatedPayout is a development payout rail that accepts every
// disbursement. It implements port.Disburser.
type SimulatedPayout struct {
	logger *slog.Logger
}

// NewSimulatedPayout creates a new simulated payout rail.
func NewSimulatedPayout(logger *slog.Logger) *SimulatedPayout {
	return &SimulatedPayout{logger: logger}
}

func (p *SimulatedPayout) Disburse(ctx context.Context, loan model.Loan, account model.BankAccount) (string, error) {
	if account.AccountNumber == "" || account.IFSC == "" {
		return "", fmt.Errorf("payout: bank account and IFSC are required")
	}
	ref := "PAYOUT-" + uuid.NewString()
	p.logger.InfoContext(ctx, "payout initiated",
		"loan_id", loan.ID(),
		"amount", loan.Principal().StringFixed(2),
		"account", account.MaskedNumber(),
		"ifsc", account.IFSC,
		"payout_ref", ref,
	)
	return ref, nil
}

// SimulatedPaymentGateway is a development collection rail that accepts
// every installment. It implements port.PaymentGateway.
type SimulatedPaymentGateway struct {
	logger *slog.Logger
}

// NewSimulatedPaymentGateway creates a new simulated payment gateway.
func NewSimulatedPaymentGateway(logger *slog.Logger) *SimulatedPaymentGateway {
	return &SimulatedPaymentGateway{logger: logger}
}

func (g *SimulatedPaymentGateway) Collect(ctx context.Context, loan model.Loan, inst model.RepaymentInstallment) (string, error) {
	txn := "TXN-" + uuid.NewString()
	g.logger.InfoContext(ctx, "installment collected",
		"loan_id", loan.ID(),
		"sequence", inst.SequenceNumber,
		"amount", inst.EMIAmount.StringFixed(2),
		"transaction_id", txn,
	)
	return txn, nil
}
