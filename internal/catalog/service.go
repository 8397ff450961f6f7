// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// StaffCounter is the slice of the user directory the catalog needs: crediting
// the staff member who registered a book.
type StaffCounter interface {
	IncrementBooksRegistered(ctx context.Context, username string) error
}

// Service defines the interface for the catalog service, including the
// availability ledger consumed by the borrow workflow.
type Service interface {
	AddBook(ctx context.Context, isbn, title, author string, publishedYear int, registeredBy string) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context) []*Book
	Search(ctx context.Context, query string) []*Book
	CountAll(ctx context.Context) int

	// Availability ledger. IsAvailable reports false for unknown ids;
	// SetAvailable is a no-op for unknown ids.
	IsAvailable(ctx context.Context, id uuid.UUID) bool
	SetAvailable(ctx context.Context, id uuid.UUID, available bool)

	Restore(ctx context.Context, books []*Book)
}
