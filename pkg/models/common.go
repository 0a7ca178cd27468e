package models

import "github.com/google/uuid"

// NewUUID generates a new random identifier, used for event IDs and
// simulated executor IDs where the caller doesn't have a more natural key to
// hand.
func NewUUID() string {
	return uuid.New().String()
}
