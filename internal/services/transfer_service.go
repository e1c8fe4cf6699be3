package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// transferService implements the two-leg transfer engine. A transfer is
// never stored as its own row of truth: it is a transfer group plus exactly
// two transactions, an outgoing leg and an incoming leg of equal magnitude,
// written and removed atomically.
type transferService struct {
	db              *gorm.DB
	accountService  AccountServicer
	categoryService CategoryServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, accountService AccountServicer, categoryService CategoryServicer) TransferServicer {
	return &transferService{
		db:              db,
		accountService:  accountService,
		categoryService: categoryService,
	}
}

// CreateTransfer moves money between two accounts in the household by
// creating a transfer group with its two legs in a single transaction.
// Both accounts must pass the scope filter for the caller.
func (s *transferService) CreateTransfer(userID, householdID string, in TransferInput) (*TransferSummary, error) {
	if in.Amount.Sign() <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "transfer amount must be positive")
	}
	if in.FromAccountID == in.ToAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}

	fromAccount, err := s.accountService.GetAccountByID(userID, householdID, in.FromAccountID)
	if err != nil {
		return nil, err
	}
	toAccount, err := s.accountService.GetAccountByID(userID, householdID, in.ToAccountID)
	if err != nil {
		return nil, err
	}

	if in.MustBeSameGroup && fromAccount.GroupID != toAccount.GroupID {
		return nil, apperrors.ErrGroupMismatch
	}

	categoryID := in.CategoryID
	if categoryID == nil {
		category, err := s.categoryService.FindOrCreateTransferCategory(householdID)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	} else {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("id = ? AND household_id = ?", *categoryID, householdID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	group := &models.TransferGroup{HouseholdID: householdID}

	// Either both legs land or neither does.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		outgoing := &models.Transaction{
			HouseholdID:     householdID,
			AccountID:       fromAccount.ID,
			CategoryID:      categoryID,
			TransferGroupID: &group.ID,
			Type:            models.TransactionTypeTransferOut,
			Amount:          in.Amount,
			Description:     in.Description,
			Date:            date,
		}
		if err := tx.Create(outgoing).Error; err != nil {
			return err
		}

		incoming := &models.Transaction{
			HouseholdID:     householdID,
			AccountID:       toAccount.ID,
			CategoryID:      categoryID,
			TransferGroupID: &group.ID,
			Type:            models.TransactionTypeTransferIn,
			Amount:          in.Amount,
			Description:     in.Description,
			Date:            date,
		}
		return tx.Create(incoming).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &TransferSummary{
		TransferGroupID: group.ID,
		FromAccountID:   fromAccount.ID,
		ToAccountID:     toAccount.ID,
		Amount:          in.Amount,
		Description:     in.Description,
		Date:            date,
		CategoryID:      categoryID,
	}, nil
}

// GetTransfer reconstructs the summary view of a transfer from its legs.
// The caller must be able to see both accounts involved.
func (s *transferService) GetTransfer(userID, householdID, transferGroupID string) (*TransferSummary, error) {
	legs, err := s.loadLegs(userID, householdID, transferGroupID)
	if err != nil {
		return nil, err
	}
	return summarize(transferGroupID, legs), nil
}

// DeleteTransfer removes a transfer as a unit: both legs and the group are
// deleted in a single transaction.
func (s *transferService) DeleteTransfer(userID, householdID, transferGroupID string) error {
	legs, err := s.loadLegs(userID, householdID, transferGroupID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range legs {
			if err := tx.Delete(&legs[i]).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ? AND household_id = ?", transferGroupID, householdID).
			Delete(&models.TransferGroup{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// loadLegs fetches the two legs of a transfer group and runs the scope
// filter against both accounts.
func (s *transferService) loadLegs(userID, householdID, transferGroupID string) ([]models.Transaction, error) {
	var group models.TransferGroup
	if err := s.db.Where("id = ? AND household_id = ?", transferGroupID, householdID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var legs []models.Transaction
	if err := s.db.Where("transfer_group_id = ?", transferGroupID).Find(&legs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(legs) != 2 {
		return nil, apperrors.ErrTransferNotFound
	}

	for i := range legs {
		if _, err := s.accountService.GetAccountByID(userID, householdID, legs[i].AccountID); err != nil {
			return nil, err
		}
	}
	return legs, nil
}

// summarize derives the transfer view from its legs regardless of the order
// they came back in.
func summarize(transferGroupID string, legs []models.Transaction) *TransferSummary {
	summary := &TransferSummary{TransferGroupID: transferGroupID}
	for i := range legs {
		leg := &legs[i]
		switch leg.Type {
		case models.TransactionTypeTransferOut:
			summary.FromAccountID = leg.AccountID
		case models.TransactionTypeTransferIn:
			summary.ToAccountID = leg.AccountID
		}
		summary.Amount = leg.Amount
		summary.Description = leg.Description
		summary.Date = leg.Date
		summary.CategoryID = leg.CategoryID
	}
	return summary
}
