// Package uuid generates the string identifiers used as primary keys.
package uuid

import guuid "github.com/google/uuid"

// New returns a UUIDv7 string. Version 7 IDs are time-ordered, so b-tree
// primary key inserts stay append-mostly.
func New() string {
	id, err := guuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		return guuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := guuid.Parse(s)
	return err == nil
}
