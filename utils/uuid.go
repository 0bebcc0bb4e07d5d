package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier, used for request ids and lock tokens
func GenerateID() string {
	return uuid.New().String()
}

// IsValidID reports whether s is a well-formed identifier from GenerateID or an upstream proxy
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
