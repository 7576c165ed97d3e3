package domain

import "time"

// Teacher leads sessions. Records are managed outside this service.
type Teacher struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
