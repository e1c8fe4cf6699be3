package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
)

// accountService handles account-group and account business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccountGroup creates a named bucket of accounts within a household.
func (s *accountService) CreateAccountGroup(householdID, name string, kind models.AccountGroupKind) (*models.AccountGroup, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account group name is required")
	}
	if kind == "" {
		kind = models.AccountGroupKindOther
	}

	group := &models.AccountGroup{
		HouseholdID: householdID,
		Name:        name,
		Kind:        kind,
	}
	if err := s.db.Create(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// GetAccountGroups retrieves a paginated list of account groups in a household.
func (s *accountService) GetAccountGroups(householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.AccountGroup], error) {
	page.Defaults()

	base := s.db.Model(&models.AccountGroup{}).Where("household_id = ?", householdID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var groups []models.AccountGroup
	if err := base.Scopes(pagination.Paginate(page)).Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(groups, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteAccountGroup removes an account group. Owner role required, since
// groups are household-scoped.
func (s *accountService) DeleteAccountGroup(userID, householdID, groupID string) error {
	role, err := s.membershipRole(userID, householdID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return apperrors.ErrOwnerRequired
	}

	var group models.AccountGroup
	if err := s.db.Where("id = ? AND household_id = ?", groupID, householdID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountGroupNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts int64
	if err := s.db.Model(&models.Account{}).Where("group_id = ?", group.ID).Count(&accounts).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if accounts > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidOperation, "account group still contains accounts")
	}

	if err := s.db.Delete(&group).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateAccount creates an account inside one of the household's groups.
// A personal-scoped account is owned by its creator.
func (s *accountService) CreateAccount(userID, householdID string, in NewAccount) (*models.Account, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Scope == "" {
		in.Scope = models.ScopeHousehold
	}

	var group models.AccountGroup
	if err := s.db.Where("id = ? AND household_id = ?", in.GroupID, householdID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account := &models.Account{
		HouseholdID:     householdID,
		GroupID:         group.ID,
		Name:            in.Name,
		Currency:        in.Currency,
		StartingBalance: in.StartingBalance,
		Scope:           in.Scope,
		CreatedByID:     userID,
	}
	if in.Scope == models.ScopePersonal {
		owner := userID
		account.OwnerUserID = &owner
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetHouseholdAccounts retrieves a paginated list of the accounts visible to
// the user: every household-scoped account plus the user's own personal
// accounts.
func (s *accountService) GetHouseholdAccounts(userID, householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).
		Where("household_id = ?", householdID).
		Where("scope = ? OR owner_user_id = ?", models.ScopeHousehold, userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account for a user, applying the scope filter.
// An account outside the household is indistinguishable from a missing one;
// an account inside the household that fails the ownership predicate is
// forbidden. These are distinct outcomes.
func (s *accountService) GetAccountByID(userID, householdID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND household_id = ?", accountID, householdID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !account.VisibleTo(userID) {
		return nil, apperrors.ErrForbidden
	}
	return &account, nil
}

// UpdateAccount updates an existing account. Scope transitions follow the
// creator rule: only the original creator may flip household scope to
// personal; the reverse transition is open to anyone who can see the account.
func (s *accountService) UpdateAccount(userID, householdID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Currency != nil && *fields.Currency != "" {
		updates["currency"] = *fields.Currency
	}
	if fields.StartingBalance != nil {
		updates["starting_balance"] = *fields.StartingBalance
	}
	if fields.IsArchived != nil {
		updates["is_archived"] = *fields.IsArchived
	}
	if fields.GroupID != nil {
		var group models.AccountGroup
		if err := s.db.Where("id = ? AND household_id = ?", *fields.GroupID, householdID).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAccountGroupNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["group_id"] = group.ID
	}

	if fields.Scope != nil && *fields.Scope != account.Scope {
		switch *fields.Scope {
		case models.ScopePersonal:
			if account.CreatedByID != userID {
				return nil, apperrors.WithMessage(apperrors.ErrForbidden, "only the account's creator may make it personal")
			}
			owner := userID
			updates["scope"] = models.ScopePersonal
			updates["owner_user_id"] = &owner
		case models.ScopeHousehold:
			updates["scope"] = models.ScopeHousehold
			updates["owner_user_id"] = nil
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account scope")
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount removes an account. Deleting a household-scoped account
// requires owner role; deleting a personal account requires being its owner.
func (s *accountService) DeleteAccount(userID, householdID, accountID string) error {
	account, err := s.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		return err
	}

	if account.Scope == models.ScopeHousehold {
		role, err := s.membershipRole(userID, householdID)
		if err != nil {
			return err
		}
		if role != models.RoleOwner {
			return apperrors.ErrOwnerRequired
		}
	}
	// Personal accounts already passed the ownership predicate in GetAccountByID.

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetAccountBalance computes the account's balance fresh:
// starting balance plus the signed sum of all its transactions, in exact
// decimal arithmetic. Nothing is cached or stored.
func (s *accountService) GetAccountBalance(userID, householdID, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccountByID(userID, householdID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	var transactions []models.Transaction
	if err := s.db.Select("amount", "type").
		Where("account_id = ?", account.ID).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := account.StartingBalance
	for i := range transactions {
		balance = balance.Add(transactions[i].SignedAmount())
	}
	return balance, nil
}

// membershipRole returns the caller's role in the household.
func (s *accountService) membershipRole(userID, householdID string) (models.Role, error) {
	var membership models.Membership
	err := s.db.Where("user_id = ? AND household_id = ?", userID, householdID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrNotAMember
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return membership.Role, nil
}
