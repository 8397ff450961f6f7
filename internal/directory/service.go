// internal/directory/service.go
package directory

import (
	"context"
)

// Service defines the interface for the user directory.
type Service interface {
	Register(ctx context.Context, username, fullName, password string, role Role) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	SetActive(ctx context.Context, username string, active bool) error
	CountStudents(ctx context.Context) int
	CountAll(ctx context.Context) int

	// Staff performance counters, incremented by the catalog and the
	// borrow workflow.
	IncrementBooksRegistered(ctx context.Context, username string) error
	IncrementBooksLent(ctx context.Context, username string) error
	IncrementBooksReceived(ctx context.Context, username string) error

	Export(ctx context.Context) []*User
	Restore(ctx context.Context, users []*User)
}
