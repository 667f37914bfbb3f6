package grpc

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/application/usecase"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// statusCode classifies a use-case error.
func statusCode(err error) codes.Code {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, dto.ErrInvalidRequest), errors.As(err, &verr):
		return codes.InvalidArgument
	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, port.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, usecase.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, service.ErrKYCIncomplete),
		errors.Is(err, service.ErrEmptyPortfolio),
		errors.Is(err, service.ErrZeroPortfolioValue),
		errors.Is(err, usecase.ErrNoInstallmentDue),
		errors.Is(err, model.ErrLoanNotActive),
		errors.Is(err, model.ErrInstallmentNotFound),
		errors.Is(err, model.ErrInstallmentAlreadyPaid),
		errors.Is(err, model.ErrInstallmentOutOfOrder),
		errors.Is(err, valueobject.ErrInvalidStatusTransition),
		errors.Is(err, port.ErrVerificationRejected):
		return codes.FailedPrecondition
	case errors.Is(err, port.ErrConcurrentUpdate):
		return codes.Aborted
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}

// toStatus converts err to a gRPC status. Internal errors are logged and
// replaced by a generic message.
func (h *LendingHandler) toStatus(ctx context.Context, method string, err error) error {
	code := statusCode(err)
	if code == codes.Internal {
		h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
