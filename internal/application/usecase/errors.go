package usecase

import (
	"errors"
	"fmt"

	"github.com/nikhilpunky/manaja2/internal/domain/port"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a caller acts on a record it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNoInstallmentDue is returned when every installment is already paid.
	ErrNoInstallmentDue = errors.New("no installment due")
)

// notFound converts a repository miss into ErrNotFound and wraps anything
// else with the failing step.
func notFound(step string, err error) error {
	if errors.Is(err, port.ErrNotFound) {
		return fmt.Errorf("%s: %w", step, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", step, err)
}
