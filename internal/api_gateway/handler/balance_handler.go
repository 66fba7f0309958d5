package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/api_gateway/service"
)

// BalanceHandler handles HTTP requests for balances and transaction
// listings
type BalanceHandler struct {
	balanceService service.BalanceService
	queryService   service.LedgerQueryService
	logger         *slog.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(logger *slog.Logger, balanceService service.BalanceService, queryService service.LedgerQueryService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		queryService:   queryService,
		logger:         logger,
	}
}

// CollectiveBalance returns the collective's spendable balance, derived
// from the authoritative ledger at request time
func (h *BalanceHandler) CollectiveBalance(c *gin.Context) {
	idParam := c.Param("ref")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid collective ID")
		return
	}

	balance, err := h.balanceService.CollectiveBalance(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to derive collective balance", "collective_id", idParam, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{Balance: balance.Amount, Currency: balance.Currency})
}

// PaymentMethodBalance returns the balance a payment method has funded
func (h *BalanceHandler) PaymentMethodBalance(c *gin.Context) {
	token := c.Param("token")

	balance, err := h.balanceService.PaymentMethodBalance(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("Failed to derive payment method balance", "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{Balance: balance.Amount, Currency: balance.Currency})
}

// ListTransactions returns one page of a collective's entries from the
// reporting archive. The archive trails the ledger by the relay's delay.
func (h *BalanceHandler) ListTransactions(c *gin.Context) {
	idParam := c.Param("ref")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid collective ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.queryService.ListCollectiveEntries(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "collective_id", idParam, "error", err)
		RespondDomainError(c, err)
		return
	}

	transactions := make([]EntryFiguresResponse, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, mapEntryToFigures(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, TransactionListResponse{Transactions: transactions}, pagination.Page, pagination.PerPage, int(total))
}
