package models

import "github.com/shopspring/decimal"

// AccountScope controls who inside a household may see an account.
type AccountScope string

const (
	// ScopeHousehold accounts are visible to every member of the household.
	ScopeHousehold AccountScope = "household"
	// ScopePersonal accounts are visible only to their owner.
	ScopePersonal AccountScope = "personal"
)

// Account is a ledger container. Its balance is never stored; it is derived
// from the starting balance plus the signed sum of its transactions.
//
// Visibility is determined solely by Scope and OwnerUserID, never by who
// created the account. CreatedByID matters for exactly one rule: only the
// original creator may flip a household account to personal scope.
type Account struct {
	Base
	HouseholdID     string          `gorm:"type:uuid;not null" json:"household_id"`
	GroupID         string          `gorm:"type:uuid;not null" json:"group_id"`
	Name            string          `gorm:"not null" json:"name"`
	Currency        string          `gorm:"not null;default:'USD'" json:"currency"`
	StartingBalance decimal.Decimal `gorm:"type:numeric;not null" json:"starting_balance"`
	IsArchived      bool            `gorm:"default:false" json:"is_archived"`
	Scope           AccountScope    `gorm:"not null;default:'household'" json:"scope"`
	OwnerUserID     *string         `gorm:"type:uuid" json:"owner_user_id,omitempty"`
	CreatedByID     string          `gorm:"type:uuid;not null" json:"created_by_id"`

	Group        *AccountGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

// VisibleTo reports whether the account passes the scope predicate for the
// given user. Household membership must already be established by the caller.
func (a *Account) VisibleTo(userID string) bool {
	if a.Scope == ScopeHousehold {
		return true
	}
	return a.OwnerUserID != nil && *a.OwnerUserID == userID
}
