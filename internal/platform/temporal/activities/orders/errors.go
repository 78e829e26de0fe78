package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	orderapp "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	orderports "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeValidation          = "OrderValidation"
	ErrTypeReconciliation      = "OrderReconciliation"
	ErrTypeReference           = "OrderReference"
	ErrTypeInvalidInput        = "OrderInvalidInput"
	ErrTypeDuplicate           = "OrderDuplicate"
	ErrTypeIdempotencyConflict = "OrderIdempotencyConflict"
	ErrTypeIdempotencyPending  = "OrderIdempotencyInProgress"
	ErrTypeStorageUnavailable  = "OrderStorageUnavailable"
)

// EncodeError converts service errors into Temporal application errors. Rejections are
// non-retryable; storage failures stay retryable.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		recErr *domain.ReconciliationError
		refErr *orderports.ReferenceError
		valErr *domain.ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeValidation, err, *valErr)
	case errors.As(err, &recErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeReconciliation, err, *recErr)
	case errors.As(err, &refErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeReference, err, *refErr)
	case errors.Is(err, orderapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, orderports.ErrDuplicateKey):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDuplicate, err)
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	case errors.Is(err, orderports.ErrIdempotencyInProgress):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyPending, err)
	case errors.Is(err, orderports.ErrStorageUnavailable):
		return temporal.NewApplicationError(err.Error(), ErrTypeStorageUnavailable, err)
	default:
		return err
	}
}

// DecodeError restores the typed service error from a workflow failure so transports can map
// it like a direct call.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case ErrTypeReconciliation:
		var rec domain.ReconciliationError
		if appErr.HasDetails() && appErr.Details(&rec) == nil {
			return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, &rec)
		}
		return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, domain.ErrTotalMismatch)
	case ErrTypeReference:
		var ref orderports.ReferenceError
		if appErr.HasDetails() && appErr.Details(&ref) == nil {
			return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, &ref)
		}
		return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, orderports.ErrReferenceNotFound)
	case ErrTypeValidation:
		verr := &domain.ValidationError{}
		if appErr.HasDetails() {
			_ = appErr.Details(verr)
		}
		return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, verr)
	case ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", orderapp.ErrInvalidInput, appErr.Message())
	case ErrTypeDuplicate:
		return orderports.ErrDuplicateKey
	case ErrTypeIdempotencyConflict:
		return orderports.ErrIdempotencyConflict
	case ErrTypeIdempotencyPending:
		return orderports.ErrIdempotencyInProgress
	case ErrTypeStorageUnavailable:
		return fmt.Errorf("%w: %s", orderports.ErrStorageUnavailable, appErr.Message())
	default:
		return err
	}
}
