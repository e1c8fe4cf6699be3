package models

// Household is the tenant boundary. Every account group, category, and
// transaction belongs to exactly one household.
type Household struct {
	Base
	Name string `gorm:"not null" json:"name"`

	Memberships   []Membership   `gorm:"foreignKey:HouseholdID" json:"memberships,omitempty"`
	AccountGroups []AccountGroup `gorm:"foreignKey:HouseholdID" json:"account_groups,omitempty"`
	Categories    []Category     `gorm:"foreignKey:HouseholdID" json:"categories,omitempty"`
	Invitations   []Invitation   `gorm:"foreignKey:HouseholdID" json:"invitations,omitempty"`
}
