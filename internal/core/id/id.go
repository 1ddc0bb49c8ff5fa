// Package id generates identifiers for catalog entries, documents and users.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7 so document ids sort by creation time.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

var nameSpace = uuid.MustParse("6f1d8a52-3c8e-4b8a-9a57-2f4b1c7d9e10")

// FromName derives a stable UUIDv5 from a kind and a natural key, so records
// seeded from files keep their ids across reloads.
func FromName(kind, name string) ID {
	return uuid.NewSHA1(nameSpace, []byte(kind+"/"+name))
}
