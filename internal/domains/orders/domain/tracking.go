package domain

// TrackingStep is one stage of the linear fulfilment path shown to customers.
type TrackingStep struct {
	Status  Status `json:"status"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}

// Tracking is the customer-facing progress view of an order.
type Tracking struct {
	Steps []TrackingStep `json:"steps"`
	// Overlay is set for CANCELLED and RETURNED, which sit outside the linear path.
	Overlay Status `json:"overlay,omitempty"`
}

var fulfilmentPath = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// TrackingSteps maps a status onto the fulfilment path. Orders that left the path keep the
// first stage reached and carry the terminal status as overlay.
func TrackingSteps(status Status) Tracking {
	position := -1
	for i, s := range fulfilmentPath {
		if s == status {
			position = i
			break
		}
	}
	tracking := Tracking{Steps: make([]TrackingStep, 0, len(fulfilmentPath))}
	if position < 0 {
		position = 0
		if status.Valid() {
			tracking.Overlay = status
		}
	}
	for i, s := range fulfilmentPath {
		tracking.Steps = append(tracking.Steps, TrackingStep{
			Status:  s,
			Reached: i <= position,
			Current: i == position && tracking.Overlay == "",
		})
	}
	return tracking
}
