package models

// AccountGroupKind tags a group of accounts ("Cash", "Bank", ...).
type AccountGroupKind string

const (
	AccountGroupKindCash  AccountGroupKind = "cash"
	AccountGroupKindBank  AccountGroupKind = "bank"
	AccountGroupKindCard  AccountGroupKind = "card"
	AccountGroupKindOther AccountGroupKind = "other"
)

// AccountGroup is a named bucket of accounts within a household.
type AccountGroup struct {
	Base
	HouseholdID string           `gorm:"type:uuid;not null" json:"household_id"`
	Name        string           `gorm:"not null" json:"name"`
	Kind        AccountGroupKind `gorm:"not null;default:'other'" json:"kind"`

	Accounts []Account `gorm:"foreignKey:GroupID" json:"accounts,omitempty"`
}
