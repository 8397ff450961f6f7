// internal/borrow/request_store.go
package borrow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RequestStore holds borrow requests in memory. It is an append-only log:
// entries are created, decided once through MarkDecided, and never deleted.
// Insertion order is preserved for deterministic iteration.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*Request
	order    []uuid.UUID
	now      func() time.Time
}

// NewRequestStore creates an empty request store.
func NewRequestStore() *RequestStore {
	return &RequestStore{
		requests: make(map[uuid.UUID]*Request),
		now:      time.Now,
	}
}

// Create appends a new PENDING request. Validation is the workflow engine's
// job; Create always succeeds structurally.
func (s *RequestStore) Create(studentUsername string, bookID uuid.UUID, startDate, endDate time.Time) *Request {
	request := &Request{
		ID:              uuid.New(),
		StudentUsername: studentUsername,
		BookID:          bookID,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          StatusPending,
		RequestedAt:     s.now(),
	}

	s.mu.Lock()
	s.requests[request.ID] = request
	s.order = append(s.order, request.ID)
	s.mu.Unlock()

	return cloneRequest(request)
}

// FindByID returns a copy of the request, or ErrNotFound.
func (s *RequestStore) FindByID(id uuid.UUID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", ErrNotFound, id)
	}
	return cloneRequest(request), nil
}

// FindPending returns all requests still awaiting a decision.
func (s *RequestStore) FindPending() []*Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*Request
	for _, id := range s.order {
		if request := s.requests[id]; request.Status == StatusPending {
			pending = append(pending, cloneRequest(request))
		}
	}
	return pending
}

// FindPendingDueForReview returns pending requests whose start date is asOf
// or the day before. The two-day window exists because the review workflow
// runs once per day and must catch requests missed yesterday.
func (s *RequestStore) FindPendingDueForReview(asOf time.Time) []*Request {
	today := dateOf(asOf)
	yesterday := today.AddDate(0, 0, -1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*Request
	for _, id := range s.order {
		request := s.requests[id]
		if request.Status != StatusPending {
			continue
		}
		start := dateOf(request.StartDate)
		if start.Equal(today) || start.Equal(yesterday) {
			due = append(due, cloneRequest(request))
		}
	}
	return due
}

// MarkDecided transitions a PENDING request to APPROVED or REJECTED, stamping
// the deciding staff and time. Requests already decided stay as they are and
// ErrAlreadyDecided is returned, keeping the status monotonic.
func (s *RequestStore) MarkDecided(id uuid.UUID, status Status, staffUsername string, at time.Time) (*Request, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("%w: cannot transition to %s", ErrInvalidArgument, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", ErrNotFound, id)
	}
	if request.Status != StatusPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrAlreadyDecided, id, request.Status)
	}

	request.Status = status
	request.DecidedBy = staffUsername
	request.DecidedAt = at
	return cloneRequest(request), nil
}

// CountAll returns the number of requests ever created.
func (s *RequestStore) CountAll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

// All returns every request in creation order.
func (s *RequestStore) All() []*Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := make([]*Request, 0, len(s.order))
	for _, id := range s.order {
		requests = append(requests, cloneRequest(s.requests[id]))
	}
	return requests
}

// Restore replaces the store contents, preserving the given order.
func (s *RequestStore) Restore(requests []*Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = make(map[uuid.UUID]*Request, len(requests))
	s.order = s.order[:0]
	for _, request := range requests {
		s.requests[request.ID] = cloneRequest(request)
		s.order = append(s.order, request.ID)
	}
}

func cloneRequest(r *Request) *Request {
	c := *r
	return &c
}
