package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

// Order is the user-facing intent to move funds. It is validated and
// authorized, then realized into exactly one ledger entry pair; after
// realization only the status may change.
type Order struct {
	ID                 uuid.UUID          `json:"id"`
	FromCollectiveID   uuid.UUID          `json:"from_collective_id"`
	CollectiveID       uuid.UUID          `json:"collective_id"`
	PaymentMethodID    uuid.UUID          `json:"payment_method_id"`
	TotalAmount        int64              `json:"total_amount"` // minor units
	Currency           string             `json:"currency"`
	HostFeePercent     *float64           `json:"host_fee_percent,omitempty"`
	PlatformFeePercent *float64           `json:"platform_fee_percent,omitempty"`
	Description        string             `json:"description,omitempty"`
	Status             shared.OrderStatus `json:"status"`
	CreatedByID        uuid.UUID          `json:"created_by_id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// New builds a pending order from a validated request and its resolved
// counterparty and payment method.
func New(req *shared.OrderRequest, fromCollectiveID, paymentMethodID, createdByID uuid.UUID, currency string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:                 uuid.New(),
		FromCollectiveID:   fromCollectiveID,
		CollectiveID:       req.CollectiveID,
		PaymentMethodID:    paymentMethodID,
		TotalAmount:        req.TotalAmount,
		Currency:           currency,
		HostFeePercent:     req.HostFeePercent,
		PlatformFeePercent: req.PlatformFeePercent,
		Description:        req.Description,
		Status:             shared.OrderStatusPending,
		CreatedByID:        createdByID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
