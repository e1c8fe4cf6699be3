package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		transaction, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, nil,
			models.TransactionTypeExpense, decimal.RequireFromString("45.50"), "Dinner", time.Now())
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.RequireFromString("45.50"), transaction.Amount)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("-45.50"), transaction.SignedAmount())
	})

	t.Run("sign_encoded_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		// A negative inbound amount is accepted for outflow types and
		// stored as the positive magnitude.
		transaction, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, nil,
			models.TransactionTypeExpense, decimal.RequireFromString("-30.00"), "Gas", time.Now())
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.RequireFromString("30.00"), transaction.Amount)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("-30.00"), transaction.SignedAmount())
	})

	t.Run("negative_income_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		_, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, nil,
			models.TransactionTypeIncome, decimal.RequireFromString("-100"), "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("zero_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		_, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, nil,
			models.TransactionTypeExpense, decimal.Zero, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("transfer_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		_, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, nil,
			models.TransactionTypeTransferOut, decimal.RequireFromString("10"), "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_OPERATION")
	})

	t.Run("account_outside_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.CreateTestMembership(t, db, member.ID, household.ID, models.RoleMember)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		personal := testutil.CreateTestPersonalAccount(t, db, household.ID, group.ID, owner.ID)

		_, err := svc.CreateTransaction(member.ID, household.ID, personal.ID, nil,
			models.TransactionTypeExpense, decimal.RequireFromString("5"), "", time.Now())
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("category_outside_household", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		otherHousehold := testutil.CreateTestHousehold(t, db, other.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		foreignCategory := testutil.CreateTestCategory(t, db, otherHousehold.ID)

		_, err := svc.CreateTransaction(owner.ID, household.ID, account.ID, &foreignCategory.ID,
			models.TransactionTypeExpense, decimal.RequireFromString("5"), "", time.Now())
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetHouseholdTransactions(t *testing.T) {
	t.Run("excludes_other_members_personal_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.CreateTestMembership(t, db, member.ID, household.ID, models.RoleMember)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		shared := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		personal := testutil.CreateTestPersonalAccount(t, db, household.ID, group.ID, owner.ID)

		visible := testutil.CreateTestTransaction(t, db, household.ID, shared.ID, models.TransactionTypeExpense, decimal.RequireFromString("10"))
		hidden := testutil.CreateTestTransaction(t, db, household.ID, personal.ID, models.TransactionTypeExpense, decimal.RequireFromString("20"))

		page, err := svc.GetHouseholdTransactions(member.ID, household.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		ids := make(map[string]bool)
		for _, tx := range page.Data {
			ids[tx.ID] = true
		}
		if !ids[visible.ID] {
			t.Error("expected shared account transaction in listing")
		}
		if ids[hidden.ID] {
			t.Error("did not expect another member's personal transaction in listing")
		}
	})

	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeIncome, decimal.RequireFromString("100"))
		testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("50"))
		testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("5"))

		expense := models.TransactionTypeExpense
		minAmount := decimal.RequireFromString("10")
		page, err := svc.GetHouseholdTransactions(owner.ID, household.ID, pagination.PageRequest{}, TransactionFilter{
			Type:      &expense,
			MinAmount: &minAmount,
		})
		testutil.AssertNoError(t, err)

		if len(page.Data) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(page.Data))
		}
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("50"), page.Data[0].Amount)
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("type_flip_keeps_magnitude", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		transaction := testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("75.00"))

		income := models.TransactionTypeIncome
		updated, err := svc.UpdateTransaction(owner.ID, household.ID, transaction.ID, TransactionUpdateFields{Type: &income})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.RequireFromString("75.00"), updated.Amount)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("75.00"), updated.SignedAmount())

		// Flipping again restores the original sign with the same magnitude.
		expense := models.TransactionTypeExpense
		updated, err = svc.UpdateTransaction(owner.ID, household.ID, transaction.ID, TransactionUpdateFields{Type: &expense})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("-75.00"), updated.SignedAmount())
	})

	t.Run("transfer_leg_locked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		accountSvc := NewAccountService(db)
		svc := NewTransactionService(db, accountSvc)
		transferSvc := NewTransferService(db, accountSvc, NewCategoryService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		from := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		to := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)

		summary, err := transferSvc.CreateTransfer(owner.ID, household.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        decimal.RequireFromString("25"),
		})
		testutil.AssertNoError(t, err)

		var leg models.Transaction
		testutil.AssertNoError(t, db.Where("transfer_group_id = ?", summary.TransferGroupID).First(&leg).Error)

		description := "tampered"
		_, err = svc.UpdateTransaction(owner.ID, household.ID, leg.ID, TransactionUpdateFields{Description: &description})
		testutil.AssertAppError(t, err, "TRANSFER_LEG_LOCKED")

		err = svc.DeleteTransaction(owner.ID, household.ID, leg.ID)
		testutil.AssertAppError(t, err, "TRANSFER_LEG_LOCKED")
	})

	t.Run("change_to_transfer_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		transaction := testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("10"))

		transferOut := models.TransactionTypeTransferOut
		_, err := svc.UpdateTransaction(owner.ID, household.ID, transaction.ID, TransactionUpdateFields{Type: &transferOut})
		testutil.AssertAppError(t, err, "INVALID_TYPE_CHANGE")
	})

	t.Run("clear_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		category := testutil.CreateTestCategory(t, db, household.ID)
		transaction := testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("10"))
		testutil.AssertNoError(t, db.Model(transaction).Update("category_id", category.ID).Error)

		var cleared *string
		updated, err := svc.UpdateTransaction(owner.ID, household.ID, transaction.ID, TransactionUpdateFields{CategoryID: &cleared})
		testutil.AssertNoError(t, err)
		if updated.CategoryID != nil {
			t.Error("expected category cleared")
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		group := testutil.CreateTestAccountGroup(t, db, household.ID)
		account := testutil.CreateTestAccount(t, db, household.ID, group.ID, owner.ID)
		transaction := testutil.CreateTestTransaction(t, db, household.ID, account.ID, models.TransactionTypeExpense, decimal.RequireFromString("10"))

		testutil.AssertNoError(t, svc.DeleteTransaction(owner.ID, household.ID, transaction.ID))

		_, err := svc.GetTransactionByID(owner.ID, household.ID, transaction.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("other_household_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		otherHousehold := testutil.CreateTestHousehold(t, db, other.ID)
		foreignGroup := testutil.CreateTestAccountGroup(t, db, otherHousehold.ID)
		foreignAccount := testutil.CreateTestAccount(t, db, otherHousehold.ID, foreignGroup.ID, other.ID)
		foreign := testutil.CreateTestTransaction(t, db, otherHousehold.ID, foreignAccount.ID, models.TransactionTypeExpense, decimal.RequireFromString("10"))

		err := svc.DeleteTransaction(owner.ID, household.ID, foreign.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
