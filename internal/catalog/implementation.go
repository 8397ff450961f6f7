// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrInvalidBookData = errors.New("invalid book data")
)

// service implements the Service interface with an in-memory catalog.
// Insertion order is preserved so listings and exports are deterministic.
type service struct {
	mu     sync.RWMutex
	books  map[uuid.UUID]*Book
	order  []uuid.UUID
	staff  StaffCounter
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new catalog service instance.
func NewService(staff StaffCounter, logger *zap.Logger) Service {
	return &service{
		books:  make(map[uuid.UUID]*Book),
		staff:  staff,
		logger: logger,
		now:    time.Now,
	}
}

// AddBook registers a new book in the catalog, available for borrowing.
func (s *service) AddBook(ctx context.Context, isbn, title, author string, publishedYear int, registeredBy string) (*Book, error) {
	if title == "" || author == "" {
		return nil, fmt.Errorf("%w: title and author are required", ErrInvalidBookData)
	}

	book := &Book{
		ID:            uuid.New(),
		ISBN:          isbn,
		Title:         title,
		Author:        author,
		PublishedYear: publishedYear,
		Available:     true,
		RegisteredBy:  registeredBy,
		CreatedAt:     s.now(),
	}

	s.mu.Lock()
	s.books[book.ID] = book
	s.order = append(s.order, book.ID)
	s.mu.Unlock()

	if registeredBy != "" && s.staff != nil {
		if err := s.staff.IncrementBooksRegistered(ctx, registeredBy); err != nil {
			s.logger.Warn("failed to credit staff for book registration",
				zap.String("username", registeredBy), zap.Error(err))
		}
	}

	s.logger.Info("book registered", zap.String("book_id", book.ID.String()), zap.String("title", title))
	return clone(book), nil
}

// GetBook retrieves a book from the catalog by its ID.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	return clone(book), nil
}

// ListBooks returns every book in registration order.
func (s *service) ListBooks(ctx context.Context) []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*Book, 0, len(s.order))
	for _, id := range s.order {
		books = append(books, clone(s.books[id]))
	}
	return books
}

// Search finds books whose title or author contains the query, case-insensitive.
func (s *service) Search(ctx context.Context, query string) []*Book {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Book
	for _, id := range s.order {
		book := s.books[id]
		if strings.Contains(strings.ToLower(book.Title), q) ||
			strings.Contains(strings.ToLower(book.Author), q) {
			matches = append(matches, clone(book))
		}
	}
	return matches
}

// CountAll returns the number of registered books.
func (s *service) CountAll(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// IsAvailable reports whether the book is currently loanable.
// Unknown ids report false.
func (s *service) IsAvailable(ctx context.Context, id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	return ok && book.Available
}

// SetAvailable flips the availability flag. Unknown ids are a no-op; callers
// are expected to have validated existence already.
func (s *service) SetAvailable(ctx context.Context, id uuid.UUID, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book, ok := s.books[id]; ok {
		book.Available = available
	}
}

// Restore replaces the catalog contents, preserving the given order.
func (s *service) Restore(ctx context.Context, books []*Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make(map[uuid.UUID]*Book, len(books))
	s.order = s.order[:0]
	for _, book := range books {
		s.books[book.ID] = clone(book)
		s.order = append(s.order, book.ID)
	}
}

func clone(b *Book) *Book {
	c := *b
	return &c
}
