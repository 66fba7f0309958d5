package components

import (
	"fmt"
	"strings"

	"github.com/collective-funds-ledger/internal/domain/shared"
	"github.com/collective-funds-ledger/internal/funds_flow/service"
)

// AuthorizationGuardImpl implements the AuthorizationGuard interface. It
// is a pure decision function over the state passed in; it performs no
// lookups and has no side effects.
type AuthorizationGuardImpl struct{}

// NewAuthorizationGuard creates a new authorization guard
func NewAuthorizationGuard() service.AuthorizationGuard {
	return &AuthorizationGuardImpl{}
}

// Authorize evaluates the layered authorization rules in order; the
// first failure wins. Denial reasons are user-facing and surfaced
// verbatim.
func (g *AuthorizationGuardImpl) Authorize(state *service.AuthorizationState) error {
	actor := state.Actor
	req := state.Request

	// Rule 1: an unauthenticated identity is always denied.
	if actor == nil || actor.Identity == nil {
		return shared.ErrUnauthorized{Reason: "you need to be logged in to create an order"}
	}

	// Rule 2: ordering on behalf of a host account requires administering
	// that host.
	if req.FromCollectiveID != nil && state.SourceCollective != nil && state.SourceCollective.IsHost {
		if !actor.IsAdminOf(state.SourceCollective.ID) {
			return shared.ErrUnauthorized{Reason: fmt.Sprintf(
				"insufficient permissions to create an order on behalf of the %s %s",
				strings.ToLower(string(state.SourceCollective.Type)), state.SourceCollective.Name,
			)}
		}
	}

	// Rule 3: the platform fee is a privileged override.
	if req.PlatformFeePercent != nil && !actor.IsRoot() {
		return shared.ErrUnauthorized{Reason: "only a root operator can change the platform fee"}
	}

	// Rule 4: the payment method must belong to a collective the actor
	// administers, or to the destination's host when the source is that
	// same host (adding funds as host).
	owner := state.PaymentMethodOwner
	if !actor.IsAdminOf(owner.ID) {
		addFundsAsHost := state.SourceCollective != nil &&
			state.SourceCollective.ID == owner.ID &&
			state.Destination.IsHostedBy(owner.ID)
		if !addFundsAsHost {
			return shared.ErrUnauthorized{Reason: "insufficient permissions to access this payment method"}
		}
	}

	// Rule 5: a host's payment method only moves funds to collectives it
	// actually hosts.
	if owner.IsHost && !state.Destination.IsHostedBy(owner.ID) {
		return shared.ErrValidation{Reason: fmt.Sprintf(
			"you must use the payment method of host %s to add funds to this destination",
			owner.ID.String(),
		)}
	}

	return nil
}
