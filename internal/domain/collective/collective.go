package collective

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

var (
	ErrEmptyName             = errors.New("collective name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrInvalidType           = errors.New("invalid collective type")
)

// Collective is any party that can send or receive funds: an individual,
// an organization giving on behalf of itself, a fund-recipient collective,
// or a host holding funds for others. The host relationship is a
// self-reference: a hosted collective points at its host, and the host is
// itself a Collective with IsHost set.
type Collective struct {
	ID               uuid.UUID             `json:"id"`
	Slug             string                `json:"slug"`
	Name             string                `json:"name"`
	Type             shared.CollectiveType `json:"type"`
	Currency         string                `json:"currency"`
	Website          string                `json:"website,omitempty"`
	IsHost           bool                  `json:"is_host"`
	HostCollectiveID *uuid.UUID            `json:"host_collective_id,omitempty"`
	HostFeePercent   *float64              `json:"host_fee_percent,omitempty"`
	CreatedByID      *uuid.UUID            `json:"created_by_id,omitempty"`
	DeactivatedAt    *time.Time            `json:"deactivated_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// New creates a collective with the given attributes. The slug is derived
// from the name; collision handling is the caller's concern.
func New(name string, typ shared.CollectiveType, currency string, createdBy *uuid.UUID) (*Collective, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	switch typ {
	case shared.CollectiveTypeUser, shared.CollectiveTypeOrganization,
		shared.CollectiveTypeCollective, shared.CollectiveTypeHost:
	default:
		return nil, ErrInvalidType
	}

	now := time.Now().UTC()
	return &Collective{
		ID:          uuid.New(),
		Slug:        Slugify(name),
		Name:        strings.TrimSpace(name),
		Type:        typ,
		Currency:    strings.ToUpper(currency),
		IsHost:      typ == shared.CollectiveTypeHost,
		CreatedByID: createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsActive reports whether the collective has not been soft-retired
func (c *Collective) IsActive() bool {
	return c.DeactivatedAt == nil
}

// IsHostedBy reports whether hostID is the collective's current host.
// A host is considered its own host for fund-movement purposes.
func (c *Collective) IsHostedBy(hostID uuid.UUID) bool {
	if c.ID == hostID && c.IsHost {
		return true
	}
	return c.HostCollectiveID != nil && *c.HostCollectiveID == hostID
}

// Slugify derives a URL-safe slug from a display name: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, no leading or trailing
// hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
