package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" shipped ")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, status)

	_, err = ParseStatus("LOST")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePaymentMethod_DefaultsToCashOnDelivery(t *testing.T) {
	method, err := ParsePaymentMethod("")
	require.NoError(t, err)
	require.Equal(t, PaymentCashOnDelivery, method)

	_, err = ParsePaymentMethod("CRYPTO")
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPermissivePolicy_AllowsAnyMember(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			require.NoError(t, PolicyPermissive.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	require.ErrorIs(t, PolicyPermissive.CanTransition(StatusPending, "LOST"), ErrInvalidStatus)
}

func TestStrictPolicy(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusDelivered, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusReturned, true},
		{StatusDelivered, StatusReturned, true},
		{StatusDelivered, StatusDelivered, true},
		{StatusDelivered, StatusPending, false},
		{StatusShipped, StatusProcessing, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusReturned, false},
		{StatusReturned, StatusShipped, false},
	}
	for _, tc := range cases {
		err := PolicyStrict.CanTransition(tc.from, tc.to)
		if tc.allowed {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			require.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestStrictPolicy_SideBranchesFromEveryNonTerminalStatus(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range []Status{StatusCancelled, StatusReturned} {
			err := PolicyStrict.CanTransition(from, to)
			switch {
			case from == to:
				require.NoError(t, err, "%s -> %s", from, to)
			case from.Terminal():
				require.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", from, to)
			default:
				require.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestChangeStatus_LeavesOrderUntouchedOnRejection(t *testing.T) {
	order := &Order{Status: StatusDelivered}

	require.ErrorIs(t, order.ChangeStatus(StatusPending, PolicyStrict), ErrIllegalTransition)
	require.Equal(t, StatusDelivered, order.Status)

	require.NoError(t, order.ChangeStatus(StatusPending, PolicyPermissive))
	require.Equal(t, StatusPending, order.Status)
}

func TestTrackingSteps(t *testing.T) {
	tracking := TrackingSteps(StatusShipped)
	require.Len(t, tracking.Steps, 4)
	require.Empty(t, tracking.Overlay)
	require.True(t, tracking.Steps[2].Reached)
	require.True(t, tracking.Steps[2].Current)
	require.False(t, tracking.Steps[3].Reached)

	cancelled := TrackingSteps(StatusCancelled)
	require.Equal(t, StatusCancelled, cancelled.Overlay)
	require.True(t, cancelled.Steps[0].Reached)
	require.False(t, cancelled.Steps[0].Current)
	require.False(t, cancelled.Steps[1].Reached)
}
