package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised once a checkout has been persisted.
type OrderPlaced struct {
	BaseEvent
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	TotalAmount   Money         `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	ItemCount     int           `json:"itemCount"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OrderStatusChanged is raised when an administrator moves an order to another status.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string `json:"orderId"`
	FromStatus Status `json:"fromStatus"`
	ToStatus   Status `json:"toStatus"`
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}

// OrderUpdated is raised when contact or payment details are edited.
type OrderUpdated struct {
	BaseEvent
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
}

// EventName returns the event type identifier.
func (e OrderUpdated) EventName() string {
	return "orders.order.updated"
}
