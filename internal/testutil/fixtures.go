package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hearth/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: fmt.Sprintf("Test User %d", nextID()),
		IsActive:    true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHousehold creates a household with the given user as owner.
func CreateTestHousehold(t *testing.T, db *gorm.DB, ownerID string) *models.Household {
	t.Helper()

	household := &models.Household{Name: fmt.Sprintf("Test Household %d", nextID())}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}
	CreateTestMembership(t, db, ownerID, household.ID, models.RoleOwner)
	return household
}

// CreateTestMembership adds a user to a household with the given role.
func CreateTestMembership(t *testing.T, db *gorm.DB, userID, householdID string, role models.Role) *models.Membership {
	t.Helper()

	membership := &models.Membership{
		UserID:      userID,
		HouseholdID: householdID,
		Role:        role,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return membership
}

// CreateTestAccountGroup creates a bank account group in the household.
func CreateTestAccountGroup(t *testing.T, db *gorm.DB, householdID string) *models.AccountGroup {
	t.Helper()

	group := &models.AccountGroup{
		HouseholdID: householdID,
		Name:        fmt.Sprintf("Test Group %d", nextID()),
		Kind:        models.AccountGroupKindBank,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test account group: %v", err)
	}
	return group
}

// CreateTestAccount creates a household-scoped account with zero starting balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, householdID, groupID, createdByID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, householdID, groupID, createdByID, decimal.Zero)
}

// CreateTestAccountWithBalance creates a household-scoped account with the given starting balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, householdID, groupID, createdByID string, startingBalance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		HouseholdID:     householdID,
		GroupID:         groupID,
		Name:            fmt.Sprintf("Test Account %d", nextID()),
		Currency:        "USD",
		StartingBalance: startingBalance,
		Scope:           models.ScopeHousehold,
		CreatedByID:     createdByID,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestPersonalAccount creates a personal account owned by the given user.
func CreateTestPersonalAccount(t *testing.T, db *gorm.DB, householdID, groupID, ownerID string) *models.Account {
	t.Helper()

	account := &models.Account{
		HouseholdID:     householdID,
		GroupID:         groupID,
		Name:            fmt.Sprintf("Test Personal Account %d", nextID()),
		Currency:        "USD",
		StartingBalance: decimal.Zero,
		Scope:           models.ScopePersonal,
		OwnerUserID:     &ownerID,
		CreatedByID:     ownerID,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test personal account: %v", err)
	}
	return account
}

// CreateTestCategory creates an expense category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, householdID string) *models.Category {
	t.Helper()

	category := &models.Category{
		HouseholdID: householdID,
		Name:        fmt.Sprintf("Test Category %d", nextID()),
		Type:        models.CategoryTypeExpense,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction with the given type and magnitude.
func CreateTestTransaction(t *testing.T, db *gorm.DB, householdID, accountID string, transactionType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		HouseholdID: householdID,
		AccountID:   accountID,
		Type:        transactionType,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        time.Now(),
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestInvitation creates a pending invitation for the given email.
func CreateTestInvitation(t *testing.T, db *gorm.DB, householdID, invitedByID, email string) *models.Invitation {
	t.Helper()

	invitation := &models.Invitation{
		HouseholdID: householdID,
		Email:       email,
		InvitedByID: invitedByID,
		Token:       fmt.Sprintf("test-token-%d", nextID()),
		Status:      models.InvitationStatusPending,
		ExpiresAt:   time.Now().Add(models.InvitationTTL),
	}
	if err := db.Create(invitation).Error; err != nil {
		t.Fatalf("failed to create test invitation: %v", err)
	}
	return invitation
}
