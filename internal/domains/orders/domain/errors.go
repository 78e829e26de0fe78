package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
	ErrIllegalTransition    = errors.New("order status transition is not allowed")
	ErrTotalMismatch        = errors.New("order total does not match line items and shipping")
)

// FieldError describes a single violated rule at a field path such as "items[0].quantity".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every field violation of a submission. Reconciliation is set when
// the claimed total was checked and disagreed; attached causes stay reachable through errors.As.
type ValidationError struct {
	Fields         []FieldError
	Reconciliation *ReconciliationError `json:",omitempty"`
	causes         []error
}

// Add records a violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// AddReconciliation records a total mismatch under the totalAmount field.
func (e *ValidationError) AddReconciliation(rec *ReconciliationError) {
	e.Add("totalAmount", "must equal "+rec.Expected.String())
	e.Reconciliation = rec
}

// Attach keeps a typed cause whose violations were already added as fields.
func (e *ValidationError) Attach(cause error) {
	e.causes = append(e.causes, cause)
}

// Merge appends the violations of another validation error.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Fields = append(e.Fields, other.Fields...)
	if e.Reconciliation == nil {
		e.Reconciliation = other.Reconciliation
	}
	e.causes = append(e.causes, other.causes...)
}

// Unwrap exposes the reconciliation mismatch and attached causes.
func (e *ValidationError) Unwrap() []error {
	var errs []error
	if e.Reconciliation != nil {
		errs = append(errs, e.Reconciliation)
	}
	return append(errs, e.causes...)
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns nil when no violation was recorded, the error otherwise.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// FieldMap flattens the violations into field -> message, keeping the first message per field.
func (e *ValidationError) FieldMap() map[string]string {
	if e == nil {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// ReconciliationError reports a claimed total that disagrees with the computed one.
type ReconciliationError struct {
	Expected Money
	Claimed  Money
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: expected %s, claimed %s", ErrTotalMismatch.Error(), e.Expected.Display(), e.Claimed.Display())
}

func (e *ReconciliationError) Unwrap() error { return ErrTotalMismatch }
