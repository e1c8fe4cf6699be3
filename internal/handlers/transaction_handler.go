package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Amount may be a plain magnitude or sign-encoded; a negative amount is only
// valid for outflow types.
type CreateTransactionRequest struct {
	AccountID   string  `json:"account_id" binding:"required,uuid"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Type        string  `json:"type" binding:"required,transaction_type"`
	Amount      string  `json:"amount" binding:"required,money"`
	Description string  `json:"description" binding:"max=500"`
	Date        string  `json:"date" binding:"omitempty"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Nil fields are left unchanged; ClearCategory removes the category.
type UpdateTransactionRequest struct {
	AccountID     *string `json:"account_id" binding:"omitempty,uuid"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	ClearCategory bool    `json:"clear_category"`
	Type          *string `json:"type" binding:"omitempty,transaction_type"`
	Amount        *string `json:"amount" binding:"omitempty,money"`
	Description   *string `json:"description" binding:"omitempty,max=500"`
	Date          *string `json:"date"`
}

// TransactionFilterRequest represents the query parameters for listing transactions
type TransactionFilterRequest struct {
	pagination.PageRequest
	FromDate   string `form:"from_date"`
	ToDate     string `form:"to_date"`
	Type       string `form:"type" binding:"omitempty,transaction_type"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	AccountID  string `form:"account_id" binding:"omitempty,uuid"`
	MinAmount  string `form:"min_amount" binding:"omitempty,money"`
	MaxAmount  string `form:"max_amount" binding:"omitempty,money"`
}

// TransactionResponse represents a transaction in the response. Amount is the
// signed value: negative for expenses and outgoing transfer legs.
type TransactionResponse struct {
	ID              string                 `json:"id"`
	AccountID       string                 `json:"account_id"`
	CategoryID      *string                `json:"category_id,omitempty"`
	TransferGroupID *string                `json:"transfer_group_id,omitempty"`
	Type            models.TransactionType `json:"type"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description"`
	Date            time.Time              `json:"date"`
}

func transactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		CategoryID:      t.CategoryID,
		TransferGroupID: t.TransferGroupID,
		Type:            t.Type,
		Amount:          t.SignedAmount(),
		Description:     t.Description,
		Date:            t.Date,
	}
}

func transactionResponses(transactions []models.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, transactionResponse(&transactions[i]))
	}
	return responses
}

// buildFilter converts query parameters into a service-level filter.
func buildFilter(req *TransactionFilterRequest) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if req.FromDate != "" {
		from, err := parseDate(req.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := parseDate(req.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &to
	}
	if req.Type != "" {
		transactionType := models.TransactionType(req.Type)
		filter.Type = &transactionType
	}
	if req.CategoryID != "" {
		filter.CategoryID = &req.CategoryID
	}
	if req.AccountID != "" {
		filter.AccountID = &req.AccountID
	}
	if req.MinAmount != "" {
		min, err := parseAmount(req.MinAmount)
		if err != nil {
			return filter, err
		}
		filter.MinAmount = &min
	}
	if req.MaxAmount != "" {
		max, err := parseAmount(req.MaxAmount)
		if err != nil {
			return filter, err
		}
		filter.MaxAmount = &max
	}

	return filter, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a new income or expense transaction on a visible account
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account not visible to caller"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
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

	var req CreateTransactionRequest
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

	transaction, err := h.transactionService.CreateTransaction(
		userID,
		householdID,
		req.AccountID,
		req.CategoryID,
		models.TransactionType(req.Type),
		amount,
		req.Description,
		date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transactionResponse(transaction)})
}

// ListTransactions lists household transactions visible to the caller
// @Summary     List transactions
// @Description List transactions on accounts the caller can see, with filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "Earliest date (RFC 3339)"
// @Param       to_date query string false "Latest date (RFC 3339)"
// @Param       type query string false "Transaction type"
// @Param       category_id query string false "Category ID"
// @Param       account_id query string false "Account ID"
// @Param       min_amount query string false "Minimum magnitude"
// @Param       max_amount query string false "Maximum magnitude"
// @Success     200 {object} pagination.PageResponse[TransactionResponse] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
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

	var req TransactionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := buildFilter(&req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.transactionService.GetHouseholdTransactions(userID, householdID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result := pagination.NewPageResponse(transactionResponses(page.Data), page.Page, page.PageSize, page.TotalItems)
	c.JSON(http.StatusOK, result)
}

// ListAccountTransactions lists the transactions of one account
// @Summary     List account transactions
// @Description List the transactions of an account the caller can see
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[TransactionResponse] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account not visible to caller"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) ListAccountTransactions(c *gin.Context) {
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
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := buildFilter(&req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.transactionService.GetAccountTransactions(userID, householdID, accountID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result := pagination.NewPageResponse(transactionResponses(page.Data), page.Page, page.PageSize, page.TotalItems)
	c.JSON(http.StatusOK, result)
}

// GetTransaction retrieves a single transaction
// @Summary     Get a transaction
// @Description Get a transaction on an account the caller can see
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account not visible to caller"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
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
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, householdID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transactionResponse(transaction)})
}

// UpdateTransaction updates a transaction
// @Summary     Update a transaction
// @Description Update a transaction; transfer legs must go through the transfer endpoints
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input or locked transfer leg"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account not visible to caller"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
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
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TransactionUpdateFields{
		AccountID:   req.AccountID,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.Amount = &amount
	}
	if req.Type != nil {
		transactionType := models.TransactionType(*req.Type)
		fields.Type = &transactionType
	}
	if req.ClearCategory {
		var cleared *string
		fields.CategoryID = &cleared
	} else if req.CategoryID != nil {
		fields.CategoryID = &req.CategoryID
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, householdID, transactionID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transactionResponse(transaction)})
}

// DeleteTransaction deletes a transaction
// @Summary     Delete a transaction
// @Description Delete an income or expense transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Transfer leg cannot be deleted individually"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account not visible to caller"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, householdID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}
