package common

import (
	"strings"

	"github.com/google/uuid"
)

// NewJobID generates a job id (bare UUID so it matches remote uuid columns)
func NewJobID() string {
	return uuid.New().String()
}

// NewPartnershipID generates a partnership id with the "p_" prefix
func NewPartnershipID() string {
	return "p_" + uuid.New().String()
}

// NewShortID returns the first 9 hex characters of a random UUID
func NewShortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}
