package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockLoanApplicationRepository struct {
	saveFunc  func(ctx context.Context, app model.LoanApplication) error
	savedApps []model.LoanApplication
}

func (m *mockLoanApplicationRepository) Save(ctx context.Context, app model.LoanApplication) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, app)
	}
	m.savedApps = append(m.savedApps, app)
	return nil
}

func (m *mockLoanApplicationRepository) FindByID(_ context.Context, id string) (model.LoanApplication, error) {
	for i := len(m.savedApps) - 1; i >= 0; i-- {
		if m.savedApps[i].ID() == id {
			return m.savedApps[i], nil
		}
	}
	return model.LoanApplication{}, port.ErrNotFound
}

func (m *mockLoanApplicationRepository) FindByUserID(_ context.Context, userID string) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	for _, app := range m.savedApps {
		if app.UserID() == userID {
			out = append(out, app)
		}
	}
	return out, nil
}

type mockLoanRepository struct {
	saveFunc     func(ctx context.Context, loan model.Loan) error
	findByIDFunc func(ctx context.Context, id string) (model.Loan, error)
	savedLoans   []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	for i := len(m.savedLoans) - 1; i >= 0; i-- {
		if m.savedLoans[i].ID() == id {
			return m.savedLoans[i], nil
		}
	}
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepository) FindByApplicationID(_ context.Context, applicationID string) (model.Loan, error) {
	for i := len(m.savedLoans) - 1; i >= 0; i-- {
		if m.savedLoans[i].ApplicationID() == applicationID {
			return m.savedLoans[i], nil
		}
	}
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepository) FindByUserID(_ context.Context, userID string) ([]model.Loan, error) {
	latest := map[string]model.Loan{}
	var order []string
	for _, l := range m.savedLoans {
		if l.UserID() != userID {
			continue
		}
		if _, seen := latest[l.ID()]; !seen {
			order = append(order, l.ID())
		}
		latest[l.ID()] = l
	}
	out := make([]model.Loan, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

// mockOriginationStore records into the application and loan mocks so tests
// can assert on what was stored either way.
type mockOriginationStore struct {
	apps  *mockLoanApplicationRepository
	loans *mockLoanRepository
	err   error
	calls int
}

func (m *mockOriginationStore) SaveOrigination(_ context.Context, app model.LoanApplication, loan *model.Loan) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.apps.savedApps = append(m.apps.savedApps, app)
	if loan != nil {
		m.loans.savedLoans = append(m.loans.savedLoans, *loan)
	}
	return nil
}

type mockKYCRepository struct {
	mu      sync.Mutex
	records map[string]model.KYCRecord
	saveErr error
}

func newMockKYCRepository(recs ...model.KYCRecord) *mockKYCRepository {
	m := &mockKYCRepository{records: map[string]model.KYCRecord{}}
	for _, r := range recs {
		m.records[r.UserID()] = r
	}
	return m
}

func (m *mockKYCRepository) Save(_ context.Context, rec model.KYCRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.UserID()] = rec
	return nil
}

func (m *mockKYCRepository) FindByUserID(_ context.Context, userID string) (model.KYCRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return model.KYCRecord{}, port.ErrNotFound
	}
	return rec, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	types := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		types = append(types, e.EventType())
	}
	return types
}

type mockIdentityVerifier struct {
	aadhaarFunc func(ctx context.Context, aadhaar string) (model.VerificationResult, error)
	panFunc     func(ctx context.Context, pan string) (model.VerificationResult, error)
	bankFunc    func(ctx context.Context, account model.BankAccount) (model.VerificationResult, error)
}

func (m *mockIdentityVerifier) VerifyAadhaar(ctx context.Context, aadhaar string) (model.VerificationResult, error) {
	if m.aadhaarFunc != nil {
		return m.aadhaarFunc(ctx, aadhaar)
	}
	return model.VerificationResult{Verified: true, Message: "ok"}, nil
}

func (m *mockIdentityVerifier) VerifyPAN(ctx context.Context, pan string) (model.VerificationResult, error) {
	if m.panFunc != nil {
		return m.panFunc(ctx, pan)
	}
	return model.VerificationResult{Verified: true, Message: "ok"}, nil
}

func (m *mockIdentityVerifier) VerifyBankAccount(ctx context.Context, account model.BankAccount) (model.VerificationResult, error) {
	if m.bankFunc != nil {
		return m.bankFunc(ctx, account)
	}
	return model.VerificationResult{Verified: true, Message: "ok"}, nil
}

type mockHoldingsRegistry struct {
	lookupFunc func(ctx context.Context, pan string, folios []string) ([]model.MutualFundHolding, error)
	calls      int
}

func (m *mockHoldingsRegistry) LookupHoldings(ctx context.Context, pan string, folios []string) ([]model.MutualFundHolding, error) {
	m.calls++
	return m.lookupFunc(ctx, pan, folios)
}

type mockDisburser struct {
	disburseFunc func(ctx context.Context, loan model.Loan, account model.BankAccount) (string, error)
	accounts     []model.BankAccount
}

func (m *mockDisburser) Disburse(ctx context.Context, loan model.Loan, account model.BankAccount) (string, error) {
	m.accounts = append(m.accounts, account)
	if m.disburseFunc != nil {
		return m.disburseFunc(ctx, loan, account)
	}
	return "PAYOUT-1", nil
}

type mockPaymentGateway struct {
	collectFunc func(ctx context.Context, loan model.Loan, inst model.RepaymentInstallment) (string, error)
	collected   []model.RepaymentInstallment
}

func (m *mockPaymentGateway) Collect(ctx context.Context, loan model.Loan, inst model.RepaymentInstallment) (string, error) {
	if m.collectFunc != nil {
		return m.collectFunc(ctx, loan, inst)
	}
	m.collected = append(m.collected, inst)
	return "TXN-" + inst.DueDate.Format("20060102"), nil
}

type decisionRecord struct {
	category valueobject.RiskCategory
	approved bool
}

type mockMetrics struct {
	mu        sync.Mutex
	decisions []decisionRecord
	calls     map[string]int
}

func (m *mockMetrics) RecordDecision(category valueobject.RiskCategory, approved bool, _ decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, decisionRecord{category: category, approved: approved})
}

func (m *mockMetrics) RecordCollaboratorCall(collaborator string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[collaborator]++
}

// --- Fixtures ---

var (
	errUpstream = errors.New("upstream unavailable")
	evalNow     = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func verifiedKYC(userID string) model.KYCRecord {
	ok := model.VerificationResult{Verified: true, Message: "ok"}
	rec, err := model.NewKYCRecord(userID, "123456789012", "ABCDE1234F",
		model.BankAccount{AccountNumber: "123456789012", IFSC: "HDFC0001234", HolderName: "Test User"},
		ok, ok, ok, evalNow)
	if err != nil {
		panic(err)
	}
	return rec
}

func mustHolding(folio string, ft valueobject.FundType, nav, units int64) model.MutualFundHolding {
	h, err := model.NewMutualFundHolding(folio, "Fund "+folio, ft,
		decimal.NewFromInt(nav), decimal.NewFromInt(units), time.Now().AddDate(-1, 0, 0))
	if err != nil {
		panic(err)
	}
	return h
}

func staticHoldings(hs ...model.MutualFundHolding) *mockHoldingsRegistry {
	return &mockHoldingsRegistry{
		lookupFunc: func(context.Context, string, []string) ([]model.MutualFundHolding, error) {
			return hs, nil
		},
	}
}
