// Package id provides identifier generation for records.
// Live records get UUIDv7 (time-ordered); mock datasets get name-based UUIDv5
// so the same seed always yields the same identifiers.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all records.
type ID = uuid.UUID

// datasetNamespace scopes deterministic identifiers of generated datasets.
var datasetNamespace = uuid.MustParse("6f1c3a52-4d0e-4b8a-9a57-2f7c0b9e1d44")

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// Deterministic returns a stable identifier for the n-th record of kind.
func Deterministic(kind string, n int) ID {
	return uuid.NewSHA1(datasetNamespace, []byte(fmt.Sprintf("%s/%d", kind, n)))
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
