package models

// Role is a member's role within a household.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Membership is the join between users and households.
// Exactly one row per (user_id, household_id); owners may perform
// household-administrative actions.
type Membership struct {
	Base
	UserID      string `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_household" json:"user_id"`
	HouseholdID string `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_household" json:"household_id"`
	Role        Role   `gorm:"not null;default:'member'" json:"role"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}
