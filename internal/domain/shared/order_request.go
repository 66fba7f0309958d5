package shared

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMissingDestination   = errors.New("order destination collective is required")
	ErrMissingPaymentMethod = errors.New("order payment method is required")
	ErrMissingCounterparty  = errors.New("order must name an existing source collective or provide a name to provision one")
)

// CounterpartyInfo describes a not-yet-onboarded organization that an
// order wants to give on behalf of.
type CounterpartyInfo struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// ContactInfo identifies the person who will administer a provisioned
// counterparty when no identity with that email exists yet.
type ContactInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// OrderRequest is the validated intent to move funds, as handed over by
// the API layer. Amounts are integer minor units.
type OrderRequest struct {
	TotalAmount        int64
	Currency           string // defaults to the destination's currency when empty
	CollectiveID       uuid.UUID
	PaymentMethodToken string
	FromCollectiveID   *uuid.UUID
	FromCollectiveInfo *CounterpartyInfo
	User               *ContactInfo
	HostFeePercent     *float64
	PlatformFeePercent *float64 // privileged, root operator only

	// PaymentProcessorFeeInHostCurrency is the charge reported upstream by
	// the external processor, passed through as a non-negative magnitude in
	// host minor units. What to charge is decided upstream, never here.
	PaymentProcessorFeeInHostCurrency int64

	Description   string
	CorrelationID string
}

// Validate checks structural consistency of the request. Authorization
// and entity existence are checked downstream.
func (r *OrderRequest) Validate() error {
	if r.CollectiveID == uuid.Nil {
		return ErrMissingDestination
	}
	if r.PaymentMethodToken == "" {
		return ErrMissingPaymentMethod
	}
	if r.TotalAmount <= 0 {
		return ErrValidation{Reason: "order amount must be positive"}
	}
	if r.FromCollectiveID == nil && (r.FromCollectiveInfo == nil || r.FromCollectiveInfo.Name == "") {
		return ErrMissingCounterparty
	}
	if r.HostFeePercent != nil && (*r.HostFeePercent < 0 || *r.HostFeePercent > 100) {
		return ErrValidation{Reason: "host fee percent must be between 0 and 100"}
	}
	if r.PlatformFeePercent != nil && (*r.PlatformFeePercent < 0 || *r.PlatformFeePercent > 100) {
		return ErrValidation{Reason: "platform fee percent must be between 0 and 100"}
	}
	if r.PaymentProcessorFeeInHostCurrency < 0 {
		return ErrValidation{Reason: "payment processor fee must not be negative"}
	}
	return nil
}
