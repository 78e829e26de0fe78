package domain

import (
	"slices"
	"strings"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

// Statuses lists every member of the enumeration in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// ParseStatus normalizes case and rejects values outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports membership in the enumeration.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMobileWallet   PaymentMethod = "MOBILE_WALLET"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

// ParsePaymentMethod defaults to cash on delivery when empty.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return PaymentCashOnDelivery, nil
	}
	method := PaymentMethod(raw)
	if !method.Valid() {
		return "", ErrInvalidPaymentMethod
	}
	return method, nil
}

// Valid reports membership in the enumeration.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentMobileWallet, PaymentBankTransfer:
		return true
	default:
		return false
	}
}

// TransitionPolicy selects how strictly status changes are checked.
type TransitionPolicy int

const (
	// PolicyPermissive lets any status follow any other status.
	PolicyPermissive TransitionPolicy = iota
	// PolicyStrict only allows forward moves along the fulfilment path. CANCELLED and
	// RETURNED are terminal and reachable from every non-terminal status.
	PolicyStrict
)

var strictTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled, StatusReturned},
	StatusShipped:    {StatusDelivered, StatusCancelled, StatusReturned},
	StatusDelivered:  {StatusCancelled, StatusReturned},
}

// Terminal reports whether no status may follow this one under PolicyStrict.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// CanTransition validates a move from one status to another under the policy.
// Re-applying the current status is always accepted.
func (p TransitionPolicy) CanTransition(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if p == PolicyPermissive || from == to {
		return nil
	}
	if from.Terminal() {
		return ErrIllegalTransition
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrIllegalTransition
}

func (p TransitionPolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "permissive"
}
