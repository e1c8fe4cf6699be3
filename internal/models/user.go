package models

import "time"

// User represents an account holder. A user belongs to zero or more
// households through Membership rows.
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	DisplayName      string     `json:"display_name"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Memberships []Membership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
