package services

import (
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/models"
	"hearth/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// HouseholdServicer defines the contract for household, membership, and
// invitation business logic.
type HouseholdServicer interface {
	CreateHousehold(userID, name string) (*models.Household, error)
	GetUserHouseholds(userID string) ([]models.Household, error)
	RenameHousehold(userID, householdID, name string) (*models.Household, error)
	GetMembers(householdID string) ([]models.Membership, error)
	RequireMembership(userID, householdID string) (*models.Membership, error)
	CreateInvitation(userID, householdID, email string) (*models.Invitation, error)
	AcceptInvitation(userID, token string) (*models.Membership, error)
}

// NewAccount holds the fields for creating an account.
type NewAccount struct {
	GroupID         string
	Name            string
	Currency        string
	StartingBalance decimal.Decimal
	Scope           models.AccountScope
}

// AccountUpdateFields holds optional fields for updating an account.
// Nil fields are left unchanged.
type AccountUpdateFields struct {
	Name            *string
	Currency        *string
	StartingBalance *decimal.Decimal
	IsArchived      *bool
	Scope           *models.AccountScope
	GroupID         *string
}

// AccountServicer defines the contract for account-group and account
// business logic, including the scope visibility rules and balance
// computation.
type AccountServicer interface {
	CreateAccountGroup(householdID, name string, kind models.AccountGroupKind) (*models.AccountGroup, error)
	GetAccountGroups(householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.AccountGroup], error)
	DeleteAccountGroup(userID, householdID, groupID string) error

	CreateAccount(userID, householdID string, in NewAccount) (*models.Account, error)
	GetHouseholdAccounts(userID, householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, householdID, accountID string) (*models.Account, error)
	UpdateAccount(userID, householdID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, householdID, accountID string) error
	GetAccountBalance(userID, householdID, accountID string) (decimal.Decimal, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(householdID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetHouseholdCategories(householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(householdID, categoryID string) (*models.Category, error)
	UpdateCategory(householdID, categoryID string, name, description, icon, color string) (*models.Category, error)
	DeleteCategory(householdID, categoryID string) error
	FindOrCreateTransferCategory(householdID string) (*models.Category, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Amount bounds compare the stored magnitude, not the signed value.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// TransactionUpdateFields holds optional fields for updating a transaction.
// CategoryID is a double pointer so a nil inner pointer clears the category.
type TransactionUpdateFields struct {
	Amount      *decimal.Decimal
	Type        *models.TransactionType
	AccountID   *string
	CategoryID  **string
	Description *string
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, householdID, accountID string, categoryID *string, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetHouseholdTransactions(userID, householdID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(userID, householdID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, householdID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, householdID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, householdID, transactionID string) error
}

// TransferInput holds the fields for creating a transfer.
type TransferInput struct {
	FromAccountID   string
	ToAccountID     string
	Amount          decimal.Decimal
	Description     string
	Date            time.Time
	CategoryID      *string
	MustBeSameGroup bool
}

// TransferSummary is the derived view of a transfer group, reconstructed
// from its two legs.
type TransferSummary struct {
	TransferGroupID string          `json:"transfer_group_id"`
	FromAccountID   string          `json:"from_account_id"`
	ToAccountID     string          `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	CategoryID      *string         `json:"category_id,omitempty"`
}

// TransferServicer defines the contract for the two-leg transfer engine.
type TransferServicer interface {
	CreateTransfer(userID, householdID string, in TransferInput) (*TransferSummary, error)
	GetTransfer(userID, householdID, transferGroupID string) (*TransferSummary, error)
	DeleteTransfer(userID, householdID, transferGroupID string) error
}
