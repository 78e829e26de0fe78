package domain

import "fmt"

// ComputeTotal returns Σ(unitPrice × quantity − discount) + shippingCharge. It fails with
// ErrAmountOutOfRange instead of wrapping around.
func ComputeTotal(items []LineItem, shippingCharge Money) (Money, error) {
	total := shippingCharge
	for i, item := range items {
		gross, ok := item.UnitPrice.times(item.Quantity)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, ItemField(i, "unitPrice"))
		}
		line, ok := gross.sub(item.Discount)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, ItemField(i, "discount"))
		}
		if total, ok = total.add(line); !ok {
			return 0, fmt.Errorf("%w: total", ErrAmountOutOfRange)
		}
	}
	return total, nil
}

// Reconcile compares a claimed total with the computed one using exact cent equality.
func Reconcile(items []LineItem, shippingCharge, claimed Money) error {
	expected, err := ComputeTotal(items, shippingCharge)
	if err != nil {
		return err
	}
	if expected != claimed {
		return &ReconciliationError{Expected: expected, Claimed: claimed}
	}
	return nil
}
