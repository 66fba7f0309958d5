package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/api_gateway/middleware"
	"github.com/collective-funds-ledger/internal/api_gateway/service"
	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(logger *slog.Logger, orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Create handles order submission. Realization is synchronous: by the
// time the response leaves, the entry pair is committed or the order
// failed.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	orderReq, err := mapCreateOrderRequest(&req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	orderReq.CorrelationID = middleware.GetCorrelationID(c)

	result, err := h.orderService.CreateOrder(c.Request.Context(), middleware.GetActor(c), orderReq)
	if err != nil {
		h.logger.Error("Failed to create order",
			"collective_id", req.CollectiveID,
			"error", err,
		)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapOrderResultToResponse(result))
}

// GetByID retrieves an order with the entry pair it realized into
func (h *OrderHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid order ID")
		return
	}

	ord, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	entries, err := h.orderService.GetOrderEntries(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load order entries", "order_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	resp := OrderResponse{
		ID:          ord.ID.String(),
		Status:      string(ord.Status),
		TotalAmount: ord.TotalAmount,
		Currency:    ord.Currency,
		Description: ord.Description,
		CreatedAt:   ord.CreatedAt.Format(time.RFC3339),
	}
	for _, entry := range entries {
		if entry.Type == shared.EntryTypeCredit {
			figures := mapEntryToFigures(entry)
			resp.CreditEntry = &figures
		}
	}

	RespondOK(c, resp)
}

// mapCreateOrderRequest converts the HTTP DTO into the domain request
func mapCreateOrderRequest(req *CreateOrderRequest) (*shared.OrderRequest, error) {
	collectiveID, err := uuid.Parse(req.CollectiveID)
	if err != nil {
		return nil, shared.ErrValidation{Reason: "invalid collective ID"}
	}

	orderReq := &shared.OrderRequest{
		TotalAmount:                       req.TotalAmount,
		Currency:                          req.Currency,
		CollectiveID:                      collectiveID,
		PaymentMethodToken:                req.PaymentMethod,
		HostFeePercent:                    req.HostFeePercent,
		PlatformFeePercent:                req.PlatformFeePercent,
		PaymentProcessorFeeInHostCurrency: req.PaymentProcessorFee,
		Description:                       req.Description,
	}

	if req.FromCollectiveID != "" {
		fromID, err := uuid.Parse(req.FromCollectiveID)
		if err != nil {
			return nil, shared.ErrValidation{Reason: "invalid source collective ID"}
		}
		orderReq.FromCollectiveID = &fromID
	}
	if req.FromCollectiveInfo != nil {
		orderReq.FromCollectiveInfo = &shared.CounterpartyInfo{
			Name:    req.FromCollectiveInfo.Name,
			Website: req.FromCollectiveInfo.Website,
		}
	}
	if req.User != nil {
		orderReq.User = &shared.ContactInfo{
			Email: req.User.Email,
			Name:  req.User.Name,
		}
	}

	return orderReq, nil
}

// mapOrderResultToResponse maps a realized order to its response DTO
func mapOrderResultToResponse(result *service.OrderResult) OrderResponse {
	resp := OrderResponse{
		ID:             result.Order.ID.String(),
		Status:         string(result.Order.Status),
		TotalAmount:    result.Order.TotalAmount,
		Currency:       result.Order.Currency,
		FromCollective: mapCollectiveToSummary(result.Source),
		Collective:     mapCollectiveToSummary(result.Destination),
		Description:    result.Order.Description,
		CreatedAt:      result.Order.CreatedAt.Format(time.RFC3339),
	}
	if result.CreditEntry != nil {
		figures := mapEntryToFigures(result.CreditEntry)
		resp.CreditEntry = &figures
	}
	return resp
}

func mapCollectiveToSummary(c *collective.Collective) *CollectiveSummary {
	if c == nil {
		return nil
	}
	return &CollectiveSummary{
		ID:   c.ID.String(),
		Slug: c.Slug,
		Name: c.Name,
	}
}

// mapEntryToFigures maps a ledger entry to its financial figures DTO
func mapEntryToFigures(entry *ledger.Entry) EntryFiguresResponse {
	return EntryFiguresResponse{
		EntryID:                           entry.ID.String(),
		Type:                              string(entry.Type),
		Amount:                            entry.Amount,
		Currency:                          entry.Currency,
		HostCurrency:                      entry.HostCurrency,
		HostCurrencyFxRate:                entry.HostCurrencyFxRate.String(),
		AmountInHostCurrency:              entry.AmountInHostCurrency,
		HostFeeInHostCurrency:             entry.HostFeeInHostCurrency,
		PlatformFeeInHostCurrency:         entry.PlatformFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: entry.PaymentProcessorFeeInHostCurrency,
		NetAmountInCollectiveCurrency:     entry.NetAmountInCollectiveCurrency,
	}
}
