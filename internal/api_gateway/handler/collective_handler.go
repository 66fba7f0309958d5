// Package handler contains the gin HTTP handlers of the API gateway.
package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/api_gateway/middleware"
	"github.com/collective-funds-ledger/internal/api_gateway/service"
	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// CollectiveHandler handles HTTP requests for collective operations
type CollectiveHandler struct {
	collectiveService service.CollectiveService
	logger            *slog.Logger
}

// NewCollectiveHandler creates a new collective handler
func NewCollectiveHandler(logger *slog.Logger, collectiveService service.CollectiveService) *CollectiveHandler {
	return &CollectiveHandler{
		collectiveService: collectiveService,
		logger:            logger,
	}
}

// Create handles creation of a new collective
func (h *CollectiveHandler) Create(c *gin.Context) {
	var req CreateCollectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	params := service.CreateCollectiveParams{
		Name:           req.Name,
		Type:           shared.CollectiveType(req.Type),
		Currency:       req.Currency,
		Website:        req.Website,
		HostFeePercent: req.HostFeePercent,
	}
	if req.HostCollectiveID != "" {
		hostID, err := uuid.Parse(req.HostCollectiveID)
		if err != nil {
			RespondBadRequest(c, "Invalid host collective ID")
			return
		}
		params.HostCollectiveID = &hostID
	}

	created, err := h.collectiveService.CreateCollective(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		h.logger.Error("Failed to create collective", "name", req.Name, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapCollectiveToResponse(created))
}

// GetBySlug retrieves a collective by its slug
func (h *CollectiveHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("ref")

	found, err := h.collectiveService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, mapCollectiveToResponse(found))
}

// CreatePaymentMethod attaches a payment method to a collective
func (h *CollectiveHandler) CreatePaymentMethod(c *gin.Context) {
	idParam := c.Param("ref")
	collectiveID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid collective ID")
		return
	}

	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pm, err := h.collectiveService.CreatePaymentMethod(
		c.Request.Context(),
		middleware.GetActor(c),
		collectiveID,
		shared.PaymentMethodService(req.Service),
		req.Name,
		req.Currency,
	)
	if err != nil {
		h.logger.Error("Failed to create payment method", "collective_id", idParam, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapPaymentMethodToResponse(pm))
}

// mapCollectiveToResponse maps a collective entity to a response DTO
func mapCollectiveToResponse(c *collective.Collective) CollectiveResponse {
	resp := CollectiveResponse{
		ID:             c.ID.String(),
		Slug:           c.Slug,
		Name:           c.Name,
		Type:           string(c.Type),
		Currency:       c.Currency,
		Website:        c.Website,
		IsHost:         c.IsHost,
		HostFeePercent: c.HostFeePercent,
		IsActive:       c.IsActive(),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
	if c.HostCollectiveID != nil {
		resp.HostCollectiveID = c.HostCollectiveID.String()
	}
	return resp
}

// mapPaymentMethodToResponse maps a payment method entity to a response DTO
func mapPaymentMethodToResponse(pm *paymentmethod.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:           pm.ID.String(),
		CollectiveID: pm.CollectiveID.String(),
		Service:      string(pm.Service),
		Name:         pm.Name,
		Currency:     pm.Currency,
		Token:        pm.Token,
		CreatedAt:    pm.CreatedAt.Format(time.RFC3339),
	}
}
