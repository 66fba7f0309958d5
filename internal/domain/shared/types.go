package shared

// EntryType distinguishes the two perspectives of a realized fund movement
type EntryType string

const (
	EntryTypeCredit EntryType = "CREDIT"
	EntryTypeDebit  EntryType = "DEBIT"
)

// Opposite returns the mirrored entry type
func (t EntryType) Opposite() EntryType {
	if t == EntryTypeCredit {
		return EntryTypeDebit
	}
	return EntryTypeCredit
}

// OrderStatus defines order lifecycle states
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusError   OrderStatus = "ERROR"
)

// CollectiveType categorizes an account on the platform
type CollectiveType string

const (
	CollectiveTypeUser         CollectiveType = "USER"
	CollectiveTypeOrganization CollectiveType = "ORGANIZATION"
	CollectiveTypeCollective   CollectiveType = "COLLECTIVE" // fund recipient
	CollectiveTypeHost         CollectiveType = "HOST"
)

// PaymentMethodService classifies where a payment method's funds are custodied
type PaymentMethodService string

const (
	// ServiceOpenCollective is the internal reserve held by a host on the platform
	ServiceOpenCollective PaymentMethodService = "OPENCOLLECTIVE"
	ServiceStripe         PaymentMethodService = "STRIPE"
	ServicePayPal         PaymentMethodService = "PAYPAL"
)

// MemberRole defines roles an identity can hold on a collective
type MemberRole string

const (
	MemberRoleAdmin MemberRole = "ADMIN"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
