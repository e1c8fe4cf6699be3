package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

// normalizeAmount reduces an inbound amount to the stored positive magnitude.
// Callers may send a plain magnitude or a sign-encoded value; a negative
// amount is only accepted when the type is an outflow, so the sign can never
// contradict the type. The sign is decoded here, exactly once.
func normalizeAmount(amount decimal.Decimal, transactionType models.TransactionType) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	if amount.Sign() < 0 {
		if !transactionType.Outflow() {
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount sign does not match transaction type")
		}
		return amount.Neg(), nil
	}
	return amount, nil
}

// CreateTransaction creates a new income or expense transaction on an
// account the user can see. Transfer legs are created only by the transfer
// engine, never directly.
func (s *transactionService) CreateTransaction(
	userID, householdID, accountID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if transactionType.IsTransfer() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "transfer transactions are created through the transfer endpoints")
	}

	magnitude, err := normalizeAmount(amount, transactionType)
	if err != nil {
		return nil, err
	}

	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	// Default date to now if not provided
	if date.IsZero() {
		date = time.Now()
	}

	// The account must pass the scope filter for the caller.
	account, err := s.accountService.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		if err := s.validateCategory(householdID, *categoryID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		HouseholdID: householdID,
		AccountID:   account.ID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      magnitude,
		Description: description,
		Date:        date,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetHouseholdTransactions retrieves a paginated, filtered list of the
// household's transactions on accounts visible to the user.
func (s *transactionService) GetHouseholdTransactions(userID, householdID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("transactions.household_id = ?", householdID).
		Where("account_id IN (?)", s.visibleAccountIDs(userID, householdID))
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(userID, householdID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	// First verify the account passes the scope filter for the caller.
	_, err := s.accountService.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// visibleAccountIDs returns a subquery selecting the IDs of accounts the
// user may see in the household.
func (s *transactionService) visibleAccountIDs(userID, householdID string) *gorm.DB {
	return s.db.Model(&models.Account{}).
		Select("id").
		Where("household_id = ?", householdID).
		Where("scope = ? OR owner_user_id = ?", models.ScopeHousehold, userID)
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction the user can see. The scope
// filter runs against the transaction's account: outside the household is
// not-found, inside but not owned is forbidden.
func (s *transactionService) GetTransactionByID(userID, householdID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND household_id = ?", transactionID, householdID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if _, err := s.accountService.GetAccountByID(userID, householdID, transaction.AccountID); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateTransaction applies partial updates to a transaction. Transfer legs
// are immutable here; type changes to or from transfer types are rejected.
// Changing the type does not touch the stored magnitude, so the signed
// amount flips exactly once no matter how many times the same update runs.
func (s *transactionService) UpdateTransaction(userID, householdID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, householdID, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.TransferGroupID != nil {
		return nil, apperrors.ErrTransferLegLocked
	}

	updates := make(map[string]interface{})

	newType := transaction.Type
	if fields.Type != nil && *fields.Type != transaction.Type {
		if fields.Type.IsTransfer() {
			return nil, apperrors.ErrInvalidTypeChange
		}
		newType = *fields.Type
		updates["type"] = newType
	}

	if fields.Amount != nil {
		magnitude, err := normalizeAmount(*fields.Amount, newType)
		if err != nil {
			return nil, err
		}
		updates["amount"] = magnitude
	}

	if fields.AccountID != nil && *fields.AccountID != transaction.AccountID {
		account, err := s.accountService.GetAccountByID(userID, householdID, *fields.AccountID)
		if err != nil {
			return nil, err
		}
		updates["account_id"] = account.ID
	}

	if fields.CategoryID != nil {
		if *fields.CategoryID != nil {
			if err := s.validateCategory(householdID, **fields.CategoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = *fields.CategoryID
	}

	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", transaction.ID).First(transaction).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction removes a single income or expense transaction. The only
// cascading effect is on the computed balance. Transfer legs can only be
// removed together through the transfer engine.
func (s *transactionService) DeleteTransaction(userID, householdID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, householdID, transactionID)
	if err != nil {
		return err
	}

	if transaction.TransferGroupID != nil {
		return apperrors.ErrTransferLegLocked
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateCategory checks that a category exists within the household.
func (s *transactionService) validateCategory(householdID, categoryID string) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND household_id = ?", categoryID, householdID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
