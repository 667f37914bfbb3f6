package port

import (
	"context"
	"errors"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("record not found")

// ErrConcurrentUpdate is returned when a save loses an optimistic version check.
var ErrConcurrentUpdate = errors.New("record was modified concurrently")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanApplicationRepository persists and retrieves loan applications.
type LoanApplicationRepository interface {
	Save(ctx context.Context, app model.LoanApplication) error
	FindByID(ctx context.Context, id string) (model.LoanApplication, error)
	FindByUserID(ctx context.Context, userID string) ([]model.LoanApplication, error)
}

// LoanRepository persists and retrieves loans together with their schedules.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByApplicationID(ctx context.Context, applicationID string) (model.Loan, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Loan, error)
}

// OriginationStore records an underwriting decision atomically: the decided
// application and, when it was approved, the sanctioned loan with its
// schedule. loan is nil for a rejection. Either both are stored or neither.
type OriginationStore interface {
	SaveOrigination(ctx context.Context, app model.LoanApplication, loan *model.Loan) error
}

// KYCRepository stores the latest eKYC record per user.
type KYCRepository interface {
	Save(ctx context.Context, rec model.KYCRecord) error
	FindByUserID(ctx context.Context, userID string) (model.KYCRecord, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
