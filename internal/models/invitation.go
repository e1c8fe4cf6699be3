package models

import "time"

// InvitationStatus represents the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
)

// InvitationTTL is the window in which a pending invitation can be accepted.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation lets a household owner invite a user by email. The token is
// consumed exactly once by the invited user to create a membership.
type Invitation struct {
	Base
	HouseholdID string           `gorm:"type:uuid;not null" json:"household_id"`
	Email       string           `gorm:"not null" json:"email"`
	InvitedByID string           `gorm:"type:uuid;not null" json:"invited_by_id"`
	Token       string           `gorm:"uniqueIndex;not null" json:"token"`
	Status      InvitationStatus `gorm:"not null;default:'pending'" json:"status"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`

	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	InvitedBy *User      `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

// Expired reports whether the invitation can no longer be accepted.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
