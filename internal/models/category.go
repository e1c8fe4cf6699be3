package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// TransferCategoryName is the canonical category transfers fall under when
// the caller does not supply one. It is found-or-created per household.
const TransferCategoryName = "Transfer"

// Category is a named classification, unique per (household_id, name).
type Category struct {
	Base
	HouseholdID string       `gorm:"type:uuid;not null;uniqueIndex:idx_category_household_name" json:"household_id"`
	Name        string       `gorm:"not null;uniqueIndex:idx_category_household_name" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
