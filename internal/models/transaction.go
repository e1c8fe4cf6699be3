package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome      TransactionType = "income"
	TransactionTypeExpense     TransactionType = "expense"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

// Outflow reports whether the type moves money out of its account.
func (t TransactionType) Outflow() bool {
	return t == TransactionTypeExpense || t == TransactionTypeTransferOut
}

// IsTransfer reports whether the type is one of the two transfer legs.
func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferIn || t == TransactionTypeTransferOut
}

// Transaction is a single financial record on an account.
//
// Amount is stored as a positive magnitude; the sign is derived from Type at
// read time via SignedAmount. Storing magnitude and type separately means a
// type change never rewrites the stored amount, so the sign can never be
// applied twice.
type Transaction struct {
	Base
	HouseholdID     string          `gorm:"type:uuid;not null" json:"household_id"`
	AccountID       string          `gorm:"type:uuid;not null" json:"account_id"`
	CategoryID      *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type            TransactionType `gorm:"not null" json:"type"`
	Amount          decimal.Decimal `gorm:"type:numeric;not null" json:"-"`
	Description     string          `json:"description"`
	Date            time.Time       `gorm:"not null" json:"date"`
	TransferGroupID *string         `gorm:"type:uuid;index" json:"transfer_group_id,omitempty"`

	Account  *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// SignedAmount returns the amount with the sign implied by the transaction
// type: negative for expenses and outgoing transfer legs, positive otherwise.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type.Outflow() {
		return t.Amount.Neg()
	}
	return t.Amount
}
