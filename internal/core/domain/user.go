package domain

import "time"

// Principal is the authenticated actor behind a request. It is produced by
// the identity provider per call and never persisted.
type Principal struct {
	ID    int64
	Admin bool
}

// User models a registered member of the studio.
type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
