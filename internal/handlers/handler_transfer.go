package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/SimpleBankSys/sbs_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transferHandler handles money movement requests.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// RegisterTransferRoutes registers the transfer endpoint.
func RegisterTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := &transferHandler{transferService: transferService}
	rg.POST("/transfers", h.createTransfer)
}

// createTransfer godoc
// @Summary Transfer money
// @Description Atomically moves the requested amount from the authenticated user's account to the recipient's. Returns the sender's debit entry and new balance.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse "Invalid amount, self transfer, insufficient balance, or inactive account"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Recipient account not found"
// @Failure 409 {object} ErrorResponse "Accounts busy, retry the transfer"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindErrorMessage(err)})
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferResponse{
		Transaction: dto.ToTransactionResponse(&result.DebitEntry),
		Balance:     result.SenderBalance.Balance,
		Recipient:   result.RecipientName,
	})
}
