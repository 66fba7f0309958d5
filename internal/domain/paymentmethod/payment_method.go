package paymentmethod

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

var (
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrInvalidService        = errors.New("invalid payment method service")
)

// PaymentMethod is a funding source owned by exactly one collective. Its
// currency is fixed at creation and its usable balance is always derived
// from the ledger, never stored here.
type PaymentMethod struct {
	ID           uuid.UUID                   `json:"id"`
	CollectiveID uuid.UUID                   `json:"collective_id"`
	Service      shared.PaymentMethodService `json:"service"`
	Name         string                      `json:"name,omitempty"`
	Currency     string                      `json:"currency"`
	Token        string                      `json:"token"` // opaque handle for external reference
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// New creates a payment method for the owning collective. The token is a
// fresh opaque handle.
func New(collectiveID uuid.UUID, service shared.PaymentMethodService, name, currency string) (*PaymentMethod, error) {
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	switch service {
	case shared.ServiceOpenCollective, shared.ServiceStripe, shared.ServicePayPal:
	default:
		return nil, ErrInvalidService
	}

	now := time.Now().UTC()
	return &PaymentMethod{
		ID:           uuid.New(),
		CollectiveID: collectiveID,
		Service:      service,
		Name:         strings.TrimSpace(name),
		Currency:     strings.ToUpper(currency),
		Token:        uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsInternalReserve reports whether the method draws on funds the host
// already holds on the platform, as opposed to an external custodian
func (pm *PaymentMethod) IsInternalReserve() bool {
	return pm.Service == shared.ServiceOpenCollective
}
