// internal/borrow/service.go
package borrow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libracirc/internal/catalog"
	"libracirc/internal/directory"
)

// Catalog is the slice of the catalog the workflow engine needs: existence
// lookups and the availability ledger.
type Catalog interface {
	GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
	IsAvailable(ctx context.Context, id uuid.UUID) bool
	SetAvailable(ctx context.Context, id uuid.UUID, available bool)
}

// UserDirectory is the slice of the user directory the workflow engine needs:
// account lookups and staff performance counters.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*directory.User, error)
	IncrementBooksLent(ctx context.Context, username string) error
	IncrementBooksReceived(ctx context.Context, username string) error
}

// Service defines the interface for the borrow workflow engine. All failures
// are reported through the package error taxonomy so handlers can map them
// to status codes with errors.Is.
type Service interface {
	CreateBorrowRequest(ctx context.Context, studentUsername string, bookID uuid.UUID, startDate, endDate time.Time) (*Request, error)
	ApproveRequest(ctx context.Context, requestID uuid.UUID, staffUsername string) error
	RejectRequest(ctx context.Context, requestID uuid.UUID, staffUsername string) error
	ReturnBook(ctx context.Context, recordID uuid.UUID, staffUsername string) error
	PendingForReview(ctx context.Context, asOf time.Time) []*Request
	StudentHistory(ctx context.Context, studentUsername string) []*Record
	ActiveBorrows(ctx context.Context) []*Record
}
