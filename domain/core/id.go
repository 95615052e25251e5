package core

import (
	"github.com/google/uuid"
)

// ID is a unique identifier for pipeline runs and derived artifacts
type ID string

// NewID generates a new time-ordered unique ID
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to random UUID if V7 generation fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}
