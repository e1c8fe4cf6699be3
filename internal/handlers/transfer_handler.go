package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/services"
)

// TransferHandler handles transfer-related requests.
type TransferHandler struct {
	transferService services.TransferServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// CreateTransferRequest represents the request payload for creating a transfer
type CreateTransferRequest struct {
	FromAccountID string  `json:"from_account_id" binding:"required,uuid"`
	ToAccountID   string  `json:"to_account_id" binding:"required,uuid"`
	Amount        string  `json:"amount" binding:"required,money"`
	Description   string  `json:"description" binding:"max=500"`
	Date          string  `json:"date" binding:"omitempty"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	SameGroup     bool    `json:"same_group"`
}

// CreateTransfer moves money between two accounts
// @Summary     Create a transfer
// @Description Move money between two accounts as an atomic two-leg transfer
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateTransferRequest true "Transfer details"
// @Success     201 {object} services.TransferSummary "Transfer created"
// @Failure     400 {object} ErrorResponse "Invalid amount, same account, or group mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "An account is not visible to the caller"
// @Failure     404 {object} ErrorResponse "An account was not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transfers [post]
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transferService.CreateTransfer(userID, householdID, services.TransferInput{
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		Amount:          amount,
		Description:     req.Description,
		Date:            date,
		CategoryID:      req.CategoryID,
		MustBeSameGroup: req.SameGroup,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transfer": summary})
}

// GetTransfer retrieves the summary view of a transfer
// @Summary     Get a transfer
// @Description Get the transfer view reconstructed from its two legs
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Transfer group ID"
// @Success     200 {object} services.TransferSummary "Transfer"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "An account is not visible to the caller"
// @Failure     404 {object} ErrorResponse "Transfer not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transfers/{id} [get]
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transferGroupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transferService.GetTransfer(userID, householdID, transferGroupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfer": summary})
}

// DeleteTransfer deletes a transfer as a unit
// @Summary     Delete a transfer
// @Description Delete both legs of a transfer and the group atomically
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Transfer group ID"
// @Success     200 {object} map[string]string "Transfer deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "An account is not visible to the caller"
// @Failure     404 {object} ErrorResponse "Transfer not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transfers/{id} [delete]
func (h *TransferHandler) DeleteTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transferGroupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transferService.DeleteTransfer(userID, householdID, transferGroupID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "transfer deleted"})
}
