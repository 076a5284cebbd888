// Package repository holds the MySQL data access for users, tokens, venues
// and bookings, and the sentinel errors handlers translate into HTTP
// statuses. ErrForbidden means the caller does not own the resource;
// ErrConflict means the change collides with existing state.
package repository

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the addressed row does not exist. Handlers
	// translate it into 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller attempts an operation on a
	// resource they do not own. Handlers translate it into 403.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when an update cannot be applied because of
	// conflicting state. Handlers translate it into 409.
	ErrConflict = errors.New("conflict")

	// ErrEmailExists and ErrNameExists report unique-key violations on users.
	ErrEmailExists = errors.New("email already exists")
	ErrNameExists  = errors.New("profile name already exists")

	// ErrTooManyGuests is returned when a booking exceeds the venue capacity.
	ErrTooManyGuests = errors.New("guests exceed venue capacity")
)

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
