// internal/borrow/domain.go
package borrow

import (
	"time"

	"github.com/google/uuid"
)

// Status of a borrow request. Transitions are monotonic:
// PENDING -> APPROVED or PENDING -> REJECTED, never reversed.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is a student's ask to borrow a book for a date range, pending a
// staff decision. Requests are append-only history and are never deleted.
type Request struct {
	ID              uuid.UUID `json:"id"`
	StudentUsername string    `json:"student_username"`
	BookID          uuid.UUID `json:"book_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Status          Status    `json:"status"`
	RequestedAt     time.Time `json:"requested_at"`
	DecidedBy       string    `json:"decided_by,omitempty"`
	DecidedAt       time.Time `json:"decided_at,omitempty"`
}

// Record is the authoritative loan created when a request is approved.
// It tracks the physical lend/return cycle; Returned never reverts to false.
type Record struct {
	ID                 uuid.UUID `json:"id"`
	RequestID          uuid.UUID `json:"request_id"`
	StudentUsername    string    `json:"student_username"`
	BookID             uuid.UUID `json:"book_id"`
	StartDate          time.Time `json:"start_date"`
	ExpectedReturnDate time.Time `json:"expected_return_date"`
	ActualReturnDate   time.Time `json:"actual_return_date,omitempty"`
	LentBy             string    `json:"lent_by"`
	ReceivedBy         string    `json:"received_by,omitempty"`
	Returned           bool      `json:"returned"`
}

// LateReturn reports whether the book came back after its expected return
// date. Active loans are never late, regardless of the current date.
func (r *Record) LateReturn() bool {
	if !r.Returned || r.ActualReturnDate.IsZero() {
		return false
	}
	return dateOf(r.ActualReturnDate).After(dateOf(r.ExpectedReturnDate))
}

// DelayDays returns the days past the expected return date, 0 if not late.
func (r *Record) DelayDays() int {
	if !r.LateReturn() {
		return 0
	}
	return daysBetween(r.ExpectedReturnDate, r.ActualReturnDate)
}

// DurationDays returns the loan length in days once returned, 0 while active.
func (r *Record) DurationDays() int {
	if !r.Returned || r.ActualReturnDate.IsZero() {
		return 0
	}
	return daysBetween(r.StartDate, r.ActualReturnDate)
}

// dateOf truncates a timestamp to its calendar date in UTC, so day arithmetic
// is immune to time-of-day and DST differences.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}
