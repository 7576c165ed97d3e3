package memory

import (
	"time"

	"github.com/yogastudio/booking/internal/core/domain"
)

// SeedTeachers returns the studio's starting teacher roster.
func SeedTeachers(now time.Time) []domain.Teacher {
	return []domain.Teacher{
		{ID: 1, FirstName: "Margot", LastName: "DELAHAYE", CreatedAt: now, UpdatedAt: now},
		{ID: 2, FirstName: "Hélène", LastName: "THIERCELIN", CreatedAt: now, UpdatedAt: now},
	}
}

// SeedUsers returns one administrator and one regular member.
func SeedUsers(now time.Time) []domain.User {
	return []domain.User{
		{ID: 1, Email: "yoga@studio.com", FirstName: "Admin", LastName: "ADMIN", Admin: true, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Email: "bruce@wayne.com", FirstName: "Bruce", LastName: "WAYNE", CreatedAt: now, UpdatedAt: now},
	}
}
