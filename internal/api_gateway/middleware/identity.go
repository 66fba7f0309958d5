package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/identity"
)

const (
	// IdentityIDHeader names the acting identity. Authentication proper is
	// handled upstream; by the time a request reaches this service the
	// header value is trusted.
	IdentityIDHeader = "X-Identity-ID"

	// ActorKey is the key used to store the resolved actor in the context
	ActorKey = "actor"
)

// Identity middleware resolves the acting identity and its administered
// collectives into an Actor. Requests without the header proceed with no
// actor; the authorization guard rejects any fund movement they attempt.
func Identity(logger *slog.Logger, identityRepo identity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdentityIDHeader)
		if header == "" {
			c.Next()
			return
		}

		identityID, err := uuid.Parse(header)
		if err != nil {
			logger.Warn("Malformed identity header", "value", header)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		ident, err := identityRepo.GetByID(ctx, identityID)
		if err != nil {
			logger.Warn("Failed to resolve acting identity", "identity_id", identityID.String(), "error", err)
			c.Next()
			return
		}

		adminIDs, err := identityRepo.AdminCollectiveIDs(ctx, identityID)
		if err != nil {
			logger.Error("Failed to load admin memberships", "identity_id", identityID.String(), "error", err)
			c.Next()
			return
		}

		adminOf := make(map[uuid.UUID]struct{}, len(adminIDs))
		for _, id := range adminIDs {
			adminOf[id] = struct{}{}
		}

		c.Set(ActorKey, &identity.Actor{Identity: ident, AdminOf: adminOf})
		c.Next()
	}
}

// GetActor retrieves the resolved actor from the gin context, or nil when
// the request carried no usable identity
func GetActor(c *gin.Context) *identity.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(*identity.Actor); ok {
			return actor
		}
	}
	return nil
}
