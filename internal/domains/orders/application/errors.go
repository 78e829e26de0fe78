package application

import (
	"errors"
	"fmt"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the caller role may not perform the operation.
	ErrForbidden = errors.New("operation requires the ADMIN role")
)

func mapError(err error) error {
	if err == nil || errors.Is(err, ErrInvalidInput) {
		return err
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentMethod) ||
		errors.Is(err, domain.ErrTotalMismatch) ||
		errors.Is(err, ports.ErrReferenceNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func fieldError(field, message string) error {
	verr := &domain.ValidationError{}
	verr.Add(field, message)
	return verr
}
