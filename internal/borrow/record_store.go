// internal/borrow/record_store.go
package borrow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecordStore holds loan records in memory. Records are created at approval
// time, mutated exactly once by MarkReturned, and never deleted. Insertion
// order is preserved for deterministic iteration and ranking tiebreaks.
type RecordStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	order   []uuid.UUID
}

// NewRecordStore creates an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[uuid.UUID]*Record),
	}
}

// Create appends a new active loan record for an approved request.
func (s *RecordStore) Create(requestID uuid.UUID, studentUsername string, bookID uuid.UUID, startDate, expectedReturnDate time.Time, lentBy string) *Record {
	record := &Record{
		ID:                 uuid.New(),
		RequestID:          requestID,
		StudentUsername:    studentUsername,
		BookID:             bookID,
		StartDate:          startDate,
		ExpectedReturnDate: expectedReturnDate,
		LentBy:             lentBy,
		Returned:           false,
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	s.mu.Unlock()

	return cloneRecord(record)
}

// FindByID returns a copy of the record, or ErrNotFound.
func (s *RecordStore) FindByID(id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: record %s", ErrNotFound, id)
	}
	return cloneRecord(record), nil
}

// FindByStudent returns all records for a student, in creation order.
func (s *RecordStore) FindByStudent(studentUsername string) []*Record {
	return s.filter(func(r *Record) bool { return r.StudentUsername == studentUsername })
}

// FindByBook returns all records referencing a book, in creation order.
func (s *RecordStore) FindByBook(bookID uuid.UUID) []*Record {
	return s.filter(func(r *Record) bool { return r.BookID == bookID })
}

// FindActive returns all records not yet returned.
func (s *RecordStore) FindActive() []*Record {
	return s.filter(func(r *Record) bool { return !r.Returned })
}

// CountActive returns the number of loans still out.
func (s *RecordStore) CountActive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if !record.Returned {
			count++
		}
	}
	return count
}

// CountLentBy returns how many loans the staff member handed out.
func (s *RecordStore) CountLentBy(staffUsername string) int {
	return len(s.filter(func(r *Record) bool { return r.LentBy == staffUsername }))
}

// CountReceivedBy returns how many returns the staff member took in.
func (s *RecordStore) CountReceivedBy(staffUsername string) int {
	return len(s.filter(func(r *Record) bool { return r.ReceivedBy == staffUsername }))
}

// CountAll returns the number of records ever created.
func (s *RecordStore) CountAll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// MarkReturned closes out an active loan, stamping the actual return time and
// the receiving staff. Once Returned is set it never reverts; a second call
// returns ErrAlreadyReturned.
func (s *RecordStore) MarkReturned(id uuid.UUID, staffUsername string, at time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: record %s", ErrNotFound, id)
	}
	if record.Returned {
		return nil, fmt.Errorf("%w: record %s", ErrAlreadyReturned, id)
	}

	record.ActualReturnDate = at
	record.ReceivedBy = staffUsername
	record.Returned = true
	return cloneRecord(record), nil
}

// All returns every record in creation order.
func (s *RecordStore) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, cloneRecord(s.records[id]))
	}
	return records
}

// Restore replaces the store contents, preserving the given order.
func (s *RecordStore) Restore(records []*Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[uuid.UUID]*Record, len(records))
	s.order = s.order[:0]
	for _, record := range records {
		s.records[record.ID] = cloneRecord(record)
		s.order = append(s.order, record.ID)
	}
}

func (s *RecordStore) filter(keep func(*Record) bool) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Record
	for _, id := range s.order {
		if record := s.records[id]; keep(record) {
			matches = append(matches, cloneRecord(record))
		}
	}
	return matches
}

func cloneRecord(r *Record) *Record {
	c := *r
	return &c
}
