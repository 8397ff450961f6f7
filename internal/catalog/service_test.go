package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staffCounterStub struct {
	registered map[string]int
}

func (s *staffCounterStub) IncrementBooksRegistered(_ context.Context, username string) error {
	if s.registered == nil {
		s.registered = make(map[string]int)
	}
	s.registered[username]++
	return nil
}

func newTestService(t *testing.T) (Service, *staffCounterStub) {
	t.Helper()
	counter := &staffCounterStub{}
	return NewService(counter, zap.NewNop()), counter
}

func TestAddAndGetBook(t *testing.T) {
	ctx := context.Background()
	svc, counter := newTestService(t)

	book, err := svc.AddBook(ctx, "978-0132350884", "Clean Code", "Robert C. Martin", 2008, "staff1")
	require.NoError(t, err)
	assert.True(t, book.Available)
	assert.Equal(t, "staff1", book.RegisteredBy)
	assert.Equal(t, 1, counter.registered["staff1"])
	assert.Equal(t, 1, svc.CountAll(ctx))

	found, err := svc.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Code", found.Title)

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetBook(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.AddBook(ctx, "", "", "Somebody", 2000, "")
		assert.ErrorIs(t, err, ErrInvalidBookData)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.AddBook(ctx, "", "The Go Programming Language", "Donovan", 2015, "")
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, "", "Clean Architecture", "Robert C. Martin", 2017, "")
	require.NoError(t, err)

	assert.Len(t, svc.Search(ctx, "go programming"), 1)
	assert.Len(t, svc.Search(ctx, "MARTIN"), 1)
	assert.Empty(t, svc.Search(ctx, "haskell"))
	assert.Len(t, svc.ListBooks(ctx), 2)
}

func TestAvailabilityLedger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	book, err := svc.AddBook(ctx, "", "Clean Code", "Robert C. Martin", 2008, "")
	require.NoError(t, err)
	assert.True(t, svc.IsAvailable(ctx, book.ID))

	svc.SetAvailable(ctx, book.ID, false)
	assert.False(t, svc.IsAvailable(ctx, book.ID))

	svc.SetAvailable(ctx, book.ID, true)
	assert.True(t, svc.IsAvailable(ctx, book.ID))

	t.Run("unknown ids fail silently", func(t *testing.T) {
		unknown := uuid.New()
		assert.False(t, svc.IsAvailable(ctx, unknown))
		svc.SetAvailable(ctx, unknown, true) // no-op, must not panic
		assert.False(t, svc.IsAvailable(ctx, unknown))
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	book, err := svc.AddBook(ctx, "", "Clean Code", "Robert C. Martin", 2008, "")
	require.NoError(t, err)
	svc.SetAvailable(ctx, book.ID, false)

	other, _ := newTestService(t)
	other.Restore(ctx, svc.ListBooks(ctx))

	assert.Equal(t, 1, other.CountAll(ctx))
	assert.False(t, other.IsAvailable(ctx, book.ID))
}
