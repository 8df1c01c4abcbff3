package model

import "github.com/google/uuid"

// Principal is the signed-in account resolved from the bearer token.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}

// Owns reports whether the principal owns a row-level tenant resource.
func (p Principal) Owns(resource interface{ GetUserID() uuid.UUID }) bool {
	return p.IsAuthenticated() && resource.GetUserID() == p.UserID
}
