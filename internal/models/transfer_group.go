package models

// TransferGroup correlates the two legs of a transfer: one transfer_out
// transaction on the source account and one transfer_in transaction of equal
// magnitude on the destination account. Both legs are created and deleted
// together; a group must never be observed with a single leg.
type TransferGroup struct {
	Base
	HouseholdID string `gorm:"type:uuid;not null" json:"household_id"`

	Legs []Transaction `gorm:"foreignKey:TransferGroupID" json:"legs,omitempty"`
}
