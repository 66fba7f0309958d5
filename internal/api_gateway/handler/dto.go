package handler

// CreateCollectiveRequest represents a request to create a new collective
type CreateCollectiveRequest struct {
	Name             string   `json:"name" binding:"required"`
	Type             string   `json:"type" binding:"required,oneof=USER ORGANIZATION COLLECTIVE HOST"`
	Currency         string   `json:"currency" binding:"required,len=3"`
	Website          string   `json:"website,omitempty"`
	HostCollectiveID string   `json:"host_collective_id,omitempty" binding:"omitempty,uuid"`
	HostFeePercent   *float64 `json:"host_fee_percent,omitempty" binding:"omitempty,min=0,max=100"`
}

// CollectiveResponse represents a collective in API responses
type CollectiveResponse struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Currency         string   `json:"currency"`
	Website          string   `json:"website,omitempty"`
	IsHost           bool     `json:"is_host"`
	HostCollectiveID string   `json:"host_collective_id,omitempty"`
	HostFeePercent   *float64 `json:"host_fee_percent,omitempty"`
	IsActive         bool     `json:"is_active"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// CollectiveSummary is the short form embedded in order responses
type CollectiveSummary struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CreatePaymentMethodRequest represents a request to attach a payment
// method to a collective
type CreatePaymentMethodRequest struct {
	Service  string `json:"service" binding:"required,oneof=OPENCOLLECTIVE STRIPE PAYPAL"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// PaymentMethodResponse represents a payment method in API responses
type PaymentMethodResponse struct {
	ID           string `json:"id"`
	CollectiveID string `json:"collective_id"`
	Service      string `json:"service"`
	Name         string `json:"name,omitempty"`
	Currency     string `json:"currency"`
	Token        string `json:"token"`
	CreatedAt    string `json:"created_at"`
}

// CounterpartyInfoDTO describes a source organization to provision
type CounterpartyInfoDTO struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website,omitempty"`
}

// ContactInfoDTO identifies the administrator of a provisioned source
type ContactInfoDTO struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name,omitempty"`
}

// CreateOrderRequest represents a request to move funds
type CreateOrderRequest struct {
	TotalAmount        int64                `json:"total_amount" binding:"required,gt=0"`
	Currency           string               `json:"currency,omitempty" binding:"omitempty,len=3"`
	CollectiveID       string               `json:"collective_id" binding:"required,uuid"`
	PaymentMethod      string               `json:"payment_method" binding:"required"`
	FromCollectiveID   string               `json:"from_collective_id,omitempty" binding:"omitempty,uuid"`
	FromCollectiveInfo *CounterpartyInfoDTO `json:"from_collective_info,omitempty"`
	User               *ContactInfoDTO      `json:"user,omitempty"`
	HostFeePercent     *float64             `json:"host_fee_percent,omitempty" binding:"omitempty,min=0,max=100"`
	PlatformFeePercent *float64             `json:"platform_fee_percent,omitempty" binding:"omitempty,min=0,max=100"`

	// Reported by the upstream payment processor, host minor units
	PaymentProcessorFee int64 `json:"payment_processor_fee,omitempty" binding:"omitempty,min=0"`

	Description string `json:"description,omitempty"`
}

// EntryFiguresResponse carries the financial figures of a realized entry
type EntryFiguresResponse struct {
	EntryID                           string `json:"entry_id"`
	Type                              string `json:"type"`
	Amount                            int64  `json:"amount"`
	Currency                          string `json:"currency"`
	HostCurrency                      string `json:"host_currency"`
	HostCurrencyFxRate                string `json:"host_currency_fx_rate"`
	AmountInHostCurrency              int64  `json:"amount_in_host_currency"`
	HostFeeInHostCurrency             int64  `json:"host_fee_in_host_currency"`
	PlatformFeeInHostCurrency         int64  `json:"platform_fee_in_host_currency"`
	PaymentProcessorFeeInHostCurrency int64  `json:"payment_processor_fee_in_host_currency"`
	NetAmountInCollectiveCurrency     int64  `json:"net_amount_in_collective_currency"`
}

// OrderResponse represents a realized order in API responses
type OrderResponse struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"`
	TotalAmount    int64                 `json:"total_amount"`
	Currency       string                `json:"currency"`
	FromCollective *CollectiveSummary    `json:"from_collective,omitempty"`
	Collective     *CollectiveSummary    `json:"collective,omitempty"`
	Description    string                `json:"description,omitempty"`
	CreditEntry    *EntryFiguresResponse `json:"credit_entry,omitempty"`
	CreatedAt      string                `json:"created_at"`
}

// BalanceResponse represents a derived balance in API responses
type BalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// TransactionListResponse represents a page of ledger entries
type TransactionListResponse struct {
	Transactions []EntryFiguresResponse `json:"transactions"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
