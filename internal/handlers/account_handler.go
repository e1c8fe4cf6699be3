package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// AccountHandler handles account-group and account requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountGroupRequest represents the request payload for creating an account group
type CreateAccountGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Kind string `json:"kind" binding:"required,group_kind"`
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	GroupID         string `json:"group_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Currency        string `json:"currency" binding:"omitempty,iso4217"`
	StartingBalance string `json:"starting_balance" binding:"omitempty,money"`
	Scope           string `json:"scope" binding:"omitempty,account_scope"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Currency        *string `json:"currency" binding:"omitempty,iso4217"`
	StartingBalance *string `json:"starting_balance" binding:"omitempty,money"`
	IsArchived      *bool   `json:"is_archived"`
	Scope           *string `json:"scope" binding:"omitempty,account_scope"`
	GroupID         *string `json:"group_id" binding:"omitempty,uuid"`
}

// AccountGroupResponse represents an account group in the response
type AccountGroupResponse struct {
	ID   string                  `json:"id"`
	Name string                  `json:"name"`
	Kind models.AccountGroupKind `json:"kind"`
}

// AccountResponse represents an account in the response
type AccountResponse struct {
	ID              string              `json:"id"`
	GroupID         string              `json:"group_id"`
	Name            string              `json:"name"`
	Currency        string              `json:"currency"`
	StartingBalance decimal.Decimal     `json:"starting_balance"`
	Scope           models.AccountScope `json:"scope"`
	OwnerUserID     *string             `json:"owner_user_id,omitempty"`
	IsArchived      bool                `json:"is_archived"`
}

// BalanceResponse represents a computed account balance
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
}

func accountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		GroupID:         a.GroupID,
		Name:            a.Name,
		Currency:        a.Currency,
		StartingBalance: a.StartingBalance,
		Scope:           a.Scope,
		OwnerUserID:     a.OwnerUserID,
		IsArchived:      a.IsArchived,
	}
}

// CreateAccountGroup handles the creation of a new account group
// @Summary     Create an account group
// @Description Create a new account group in the current household
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateAccountGroupRequest true "Account group details"
// @Success     201 {object} AccountGroupResponse "Account group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account-groups [post]
func (h *AccountHandler) CreateAccountGroup(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.accountService.CreateAccountGroup(householdID, req.Name, models.AccountGroupKind(req.Kind))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account_group": AccountGroupResponse{
		ID:   group.ID,
		Name: group.Name,
		Kind: group.Kind,
	}})
}

// ListAccountGroups lists the account groups of the current household
// @Summary     List account groups
// @Description List the account groups of the current household
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[AccountGroupResponse] "Account groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account-groups [get]
func (h *AccountHandler) ListAccountGroups(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	groups, err := h.accountService.GetAccountGroups(householdID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// DeleteAccountGroup deletes an empty account group
// @Summary     Delete an account group
// @Description Delete an account group with no accounts (owner only)
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account group ID"
// @Success     200 {object} map[string]string "Account group deleted"
// @Failure     400 {object} ErrorResponse "Group still has accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Owner role required"
// @Failure     404 {object} ErrorResponse "Account group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account-groups/{id} [delete]
func (h *AccountHandler) DeleteAccountGroup(c *gin.Context) {
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
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccountGroup(userID, householdID, groupID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account group deleted"})
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new account in the current household
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
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

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startingBalance := decimal.Zero
	if req.StartingBalance != "" {
		startingBalance, err = parseAmount(req.StartingBalance)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	scope := models.ScopeHousehold
	if req.Scope != "" {
		scope = models.AccountScope(req.Scope)
	}

	account, err := h.accountService.CreateAccount(userID, householdID, services.NewAccount{
		GroupID:         req.GroupID,
		Name:            req.Name,
		Currency:        req.Currency,
		StartingBalance: startingBalance,
		Scope:           scope,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": accountResponse(account)})
}

// ListAccounts lists the accounts visible to the user in the current household
// @Summary     List accounts
// @Description List household accounts plus the caller's own personal accounts
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[AccountResponse] "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	accounts, err := h.accountService.GetHouseholdAccounts(userID, householdID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccount retrieves a single account
// @Summary     Get an account
// @Description Get an account the caller can see
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Personal account of another member"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": accountResponse(account)})
}

// UpdateAccount updates an account
// @Summary     Update an account
// @Description Update an account's fields, including scope transitions
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} AccountResponse "Account updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.AccountUpdateFields{
		Name:       req.Name,
		Currency:   req.Currency,
		IsArchived: req.IsArchived,
		GroupID:    req.GroupID,
	}
	if req.StartingBalance != nil {
		balance, err := parseAmount(*req.StartingBalance)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.StartingBalance = &balance
	}
	if req.Scope != nil {
		scope := models.AccountScope(*req.Scope)
		fields.Scope = &scope
	}

	account, err := h.accountService.UpdateAccount(userID, householdID, accountID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": accountResponse(account)})
}

// DeleteAccount deletes an account
// @Summary     Delete an account
// @Description Delete an account the caller is allowed to remove
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account ID"
// @Success     200 {object} map[string]string "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	if err := h.accountService.DeleteAccount(userID, householdID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// GetAccountBalance computes the current balance of an account
// @Summary     Get account balance
// @Description Compute the account balance from its starting balance and transactions
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Account ID"
// @Success     200 {object} BalanceResponse "Balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Personal account of another member"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/balance [get]
func (h *AccountHandler) GetAccountBalance(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.accountService.GetAccountBalance(userID, householdID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": BalanceResponse{
		AccountID: account.ID,
		Balance:   balance,
		Currency:  account.Currency,
	}})
}
