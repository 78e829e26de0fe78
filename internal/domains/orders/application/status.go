package application

import (
	"context"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// StatusMachine applies status transitions under a policy. The write is a compare-and-swap
// against the status that was checked, so a concurrent change surfaces as
// ports.ErrConcurrentUpdate instead of being overwritten.
type StatusMachine struct {
	repo   ports.Repository
	policy domain.TransitionPolicy
}

// NewStatusMachine wires the machine with its repository and policy.
func NewStatusMachine(repo ports.Repository, policy domain.TransitionPolicy) *StatusMachine {
	return &StatusMachine{repo: repo, policy: policy}
}

// Transition moves the order identified by its human id to the requested status and returns
// the updated projection together with the previous status.
func (m *StatusMachine) Transition(ctx context.Context, orderID string, requested domain.Status) (*types.OrderProjection, domain.Status, error) {
	if !requested.Valid() {
		return nil, "", domain.ErrInvalidStatus
	}
	current, err := m.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	from := current.Entity.Status
	next := current.Entity.Clone()
	if err := next.ChangeStatus(requested, m.policy); err != nil {
		return nil, "", err
	}
	updated, err := m.repo.UpdateStatus(ctx, orderID, from, next.Status)
	if err != nil {
		return nil, "", err
	}
	return updated, from, nil
}
