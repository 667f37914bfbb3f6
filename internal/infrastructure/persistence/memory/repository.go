// Package memory provides in-process repositories for local runs and tests.
// They follow the same contract as the PostgreSQL repositories: optimistic
// versioning on save, port.ErrNotFound on misses and newest-first listings.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
)

var (
	_ port.LoanApplicationRepository = (*LoanApplicationRepo)(nil)
	_ port.LoanRepository            = (*LoanRepo)(nil)
	_ port.KYCRepository             = (*KYCRepo)(nil)
	_ port.OriginationStore          = (*OriginationStore)(nil)
)

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	mu   sync.RWMutex
	apps map[string]model.LoanApplicationSnapshot
}

// NewLoanApplicationRepo creates an empty repository.
func NewLoanApplicationRepo() *LoanApplicationRepo {
	return &LoanApplicationRepo{apps: make(map[string]model.LoanApplicationSnapshot)}
}

// Save inserts the application or updates it when the stored version matches.
func (r *LoanApplicationRepo) Save(_ context.Context, app model.LoanApplication) error {
	s := app.Snapshot()
	s.Params.FolioNumbers = slices.Clone(s.Params.FolioNumbers)

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.next(s)
	if err != nil {
		return err
	}
	r.apps[s.ID] = next
	return nil
}

// next returns the snapshot to store for s. Callers hold r.mu.
func (r *LoanApplicationRepo) next(s model.LoanApplicationSnapshot) (model.LoanApplicationSnapshot, error) {
	if existing, ok := r.apps[s.ID]; ok {
		if existing.Version != s.Version {
			return s, port.ErrConcurrentUpdate
		}
		s.Version = existing.Version + 1
		s.Params = existing.Params
		s.CreatedAt = existing.CreatedAt
	}
	return s, nil
}

// FindByID retrieves an application by ID.
func (r *LoanApplicationRepo) FindByID(_ context.Context, id string) (model.LoanApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.apps[id]
	if !ok {
		return model.LoanApplication{}, port.ErrNotFound
	}
	return model.ReconstructLoanApplication(s), nil
}

// FindByUserID lists a user's applications, newest first.
func (r *LoanApplicationRepo) FindByUserID(_ context.Context, userID string) ([]model.LoanApplication, error) {
	r.mu.RLock()
	var snaps []model.LoanApplicationSnapshot
	for _, s := range r.apps {
		if s.Params.UserID == userID {
			snaps = append(snaps, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool {
		return newerFirst(snaps[i].CreatedAt.UnixNano(), snaps[j].CreatedAt.UnixNano(), snaps[i].ID, snaps[j].ID)
	})
	out := make([]model.LoanApplication, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, model.ReconstructLoanApplication(s))
	}
	return out, nil
}

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	mu    sync.RWMutex
	loans map[string]model.LoanSnapshot
}

// NewLoanRepo creates an empty repository.
func NewLoanRepo() *LoanRepo {
	return &LoanRepo{loans: make(map[string]model.LoanSnapshot)}
}

// Save inserts the loan or updates its status, disbursement reference and
// schedule when the stored version matches.
func (r *LoanRepo) Save(_ context.Context, loan model.Loan) error {
	s := loan.Snapshot()
	s.Schedule = slices.Clone(s.Schedule)

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.next(s)
	if err != nil {
		return err
	}
	r.loans[s.ID] = next
	return nil
}

// next returns the snapshot to store for s. A second loan for the same
// application is refused. Callers hold r.mu.
func (r *LoanRepo) next(s model.LoanSnapshot) (model.LoanSnapshot, error) {
	existing, ok := r.loans[s.ID]
	if !ok {
		for _, other := range r.loans {
			if other.ApplicationID == s.ApplicationID {
				return s, port.ErrConcurrentUpdate
			}
		}
		return s, nil
	}
	if existing.Version != s.Version {
		return s, port.ErrConcurrentUpdate
	}
	s.Version = existing.Version + 1
	return s, nil
}

// FindByID retrieves a loan by ID.
func (r *LoanRepo) FindByID(_ context.Context, id string) (model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.loans[id]
	if !ok {
		return model.Loan{}, port.ErrNotFound
	}
	return reconstructLoan(s), nil
}

// FindByApplicationID retrieves the loan sanctioned for an application.
func (r *LoanRepo) FindByApplicationID(_ context.Context, applicationID string) (model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.loans {
		if s.ApplicationID == applicationID {
			return reconstructLoan(s), nil
		}
	}
	return model.Loan{}, port.ErrNotFound
}

// FindByUserID lists a user's loans, newest first.
func (r *LoanRepo) FindByUserID(_ context.Context, userID string) ([]model.Loan, error) {
	r.mu.RLock()
	var snaps []model.LoanSnapshot
	for _, s := range r.loans {
		if s.UserID == userID {
			snaps = append(snaps, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool {
		return newerFirst(snaps[i].CreatedAt.UnixNano(), snaps[j].CreatedAt.UnixNano(), snaps[i].ID, snaps[j].ID)
	})
	out := make([]model.Loan, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, reconstructLoan(s))
	}
	return out, nil
}

func reconstructLoan(s model.LoanSnapshot) model.Loan {
	s.Schedule = slices.Clone(s.Schedule)
	return model.ReconstructLoan(s)
}

// OriginationStore implements port.OriginationStore on top of the
// application and loan repositories, holding both locks for the write.
type OriginationStore struct {
	apps  *LoanApplicationRepo
	loans *LoanRepo
}

// NewOriginationStore writes through to apps and loans.
func NewOriginationStore(apps *LoanApplicationRepo, loans *LoanRepo) *OriginationStore {
	return &OriginationStore{apps: apps, loans: loans}
}

// SaveOrigination stores the application and the optional loan, or neither.
func (o *OriginationStore) SaveOrigination(_ context.Context, app model.LoanApplication, loan *model.Loan) error {
	appSnap := app.Snapshot()
	appSnap.Params.FolioNumbers = slices.Clone(appSnap.Params.FolioNumbers)

	o.apps.mu.Lock()
	defer o.apps.mu.Unlock()
	o.loans.mu.Lock()
	defer o.loans.mu.Unlock()

	nextApp, err := o.apps.next(appSnap)
	if err != nil {
		return err
	}
	if loan == nil {
		o.apps.apps[appSnap.ID] = nextApp
		return nil
	}

	loanSnap := loan.Snapshot()
	loanSnap.Schedule = slices.Clone(loanSnap.Schedule)
	nextLoan, err := o.loans.next(loanSnap)
	if err != nil {
		return err
	}
	o.apps.apps[appSnap.ID] = nextApp
	o.loans.loans[loanSnap.ID] = nextLoan
	return nil
}

// KYCRepo implements port.KYCRepository.
type KYCRepo struct {
	mu      sync.RWMutex
	records map[string]model.KYCRecordSnapshot
}

// NewKYCRepo creates an empty repository.
func NewKYCRepo() *KYCRepo {
	return &KYCRepo{records: make(map[string]model.KYCRecordSnapshot)}
}

// Save replaces the user's record.
func (r *KYCRepo) Save(_ context.Context, rec model.KYCRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.UserID()] = rec.Snapshot()
	return nil
}

// FindByUserID retrieves the user's latest record.
func (r *KYCRepo) FindByUserID(_ context.Context, userID string) (model.KYCRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[userID]
	if !ok {
		return model.KYCRecord{}, port.ErrNotFound
	}
	return model.ReconstructKYCRecord(s), nil
}

// newerFirst orders by creation time descending, then by ID.
func newerFirst(createdI, createdJ int64, idI, idJ string) bool {
	if createdI != createdJ {
		return createdI > createdJ
	}
	return idI < idJ
}
