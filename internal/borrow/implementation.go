// internal/borrow/implementation.go
package borrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"libracirc/internal/directory"
	"libracirc/internal/metrics"
)

// service implements the Service interface. A single mutex serializes every
// mutating operation across the availability ledger, the two stores and the
// staff counters, so each operation's writes are atomic with respect to
// concurrent calls. All validation happens before the first write: a failed
// operation leaves prior state untouched.
type service struct {
	mu        sync.Mutex
	requests  *RequestStore
	records   *RecordStore
	catalog   Catalog
	directory UserDirectory
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService creates a new borrow workflow engine.
func NewService(requests *RequestStore, records *RecordStore, cat Catalog, dir UserDirectory, logger *zap.Logger) Service {
	return &service{
		requests:  requests,
		records:   records,
		catalog:   cat,
		directory: dir,
		logger:    logger,
		tracer:    otel.Tracer("libracirc/borrow"),
		now:       time.Now,
	}
}

// CreateBorrowRequest validates the student, the book and the date range, then
// records a PENDING request. Availability is not consumed here: two students
// may request the same available book, and only the first approval wins.
func (s *service) CreateBorrowRequest(ctx context.Context, studentUsername string, bookID uuid.UUID, startDate, endDate time.Time) (*Request, error) {
	ctx, span := s.tracer.Start(ctx, "borrow.create_request",
		trace.WithAttributes(
			attribute.String("student.username", studentUsername),
			attribute.String("book.id", bookID.String()),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.directory.FindByUsername(ctx, studentUsername)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentUsername)
	}
	if user.Role != directory.RoleStudent {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: %s is not a student account", ErrInvalidArgument, studentUsername)
	}
	if !user.Active {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: student account %s is inactive", ErrInvalidState, studentUsername)
	}

	if _, err := s.catalog.GetBook(ctx, bookID); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: book %s", ErrNotFound, bookID)
	}
	if !s.catalog.IsAvailable(ctx, bookID) {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: book %s is not available", ErrInvalidState, bookID)
	}

	if dateOf(startDate).Before(dateOf(s.now())) {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: start date cannot be in the past", ErrInvalidArgument)
	}
	if dateOf(endDate).Before(dateOf(startDate)) {
		metrics.OperationErrorsTotal.WithLabelValues("create_request").Inc()
		return nil, fmt.Errorf("%w: end date must not be before start date", ErrInvalidArgument)
	}

	request := s.requests.Create(studentUsername, bookID, startDate, endDate)

	metrics.RequestsCreatedTotal.Inc()
	span.SetAttributes(attribute.String("request.id", request.ID.String()))
	s.logger.Info("borrow request created",
		zap.String("request_id", request.ID.String()),
		zap.String("student", studentUsername),
		zap.String("book_id", bookID.String()),
	)
	return request, nil
}

// ApproveRequest turns a PENDING request into an active loan: the request is
// stamped APPROVED, a record is created, the book becomes unavailable and the
// approving staff's lent counter is incremented. Requests already decided are
// rejected, as are approvals for a book another loan has taken in the
// meantime, so the first approval wins.
func (s *service) ApproveRequest(ctx context.Context, requestID uuid.UUID, staffUsername string) error {
	ctx, span := s.tracer.Start(ctx, "borrow.approve_request",
		trace.WithAttributes(
			attribute.String("request.id", requestID.String()),
			attribute.String("staff.username", staffUsername),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.requests.FindByID(requestID)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("approve_request").Inc()
		return err
	}
	if request.Status != StatusPending {
		metrics.OperationErrorsTotal.WithLabelValues("approve_request").Inc()
		return fmt.Errorf("%w: request %s is %s", ErrAlreadyDecided, requestID, request.Status)
	}
	if !s.catalog.IsAvailable(ctx, request.BookID) {
		metrics.OperationErrorsTotal.WithLabelValues("approve_request").Inc()
		return fmt.Errorf("%w: book %s is no longer available", ErrInvalidState, request.BookID)
	}

	if _, err := s.requests.MarkDecided(requestID, StatusApproved, staffUsername, s.now()); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("approve_request").Inc()
		return err
	}

	record := s.records.Create(request.ID, request.StudentUsername, request.BookID,
		request.StartDate, request.EndDate, staffUsername)
	s.catalog.SetAvailable(ctx, request.BookID, false)

	if err := s.directory.IncrementBooksLent(ctx, staffUsername); err != nil {
		s.logger.Warn("failed to credit staff for lending",
			zap.String("username", staffUsername), zap.Error(err))
	}

	metrics.RequestsApprovedTotal.Inc()
	metrics.ActiveLoans.Inc()
	span.SetAttributes(attribute.String("record.id", record.ID.String()))
	s.logger.Info("borrow request approved",
		zap.String("request_id", requestID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("staff", staffUsername),
	)
	return nil
}

// RejectRequest marks a PENDING request REJECTED. No loan record is created
// and the ledger is untouched.
func (s *service) RejectRequest(ctx context.Context, requestID uuid.UUID, staffUsername string) error {
	_, span := s.tracer.Start(ctx, "borrow.reject_request",
		trace.WithAttributes(attribute.String("request.id", requestID.String())),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requests.MarkDecided(requestID, StatusRejected, staffUsername, s.now()); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("reject_request").Inc()
		return err
	}

	metrics.RequestsRejectedTotal.Inc()
	s.logger.Info("borrow request rejected",
		zap.String("request_id", requestID.String()),
		zap.String("staff", staffUsername),
	)
	return nil
}

// ReturnBook closes an active loan: the record is stamped returned, the book
// becomes available again and the receiving staff's counter is incremented.
// Returning an already-returned record fails and leaves availability true.
func (s *service) ReturnBook(ctx context.Context, recordID uuid.UUID, staffUsername string) error {
	ctx, span := s.tracer.Start(ctx, "borrow.return_book",
		trace.WithAttributes(
			attribute.String("record.id", recordID.String()),
			attribute.String("staff.username", staffUsername),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.records.MarkReturned(recordID, staffUsername, s.now())
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("return_book").Inc()
		return err
	}

	s.catalog.SetAvailable(ctx, record.BookID, true)

	if err := s.directory.IncrementBooksReceived(ctx, staffUsername); err != nil {
		s.logger.Warn("failed to credit staff for receiving",
			zap.String("username", staffUsername), zap.Error(err))
	}

	metrics.BooksReturnedTotal.Inc()
	metrics.ActiveLoans.Dec()
	s.logger.Info("book returned",
		zap.String("record_id", recordID.String()),
		zap.String("book_id", record.BookID.String()),
		zap.String("staff", staffUsername),
	)
	return nil
}

// PendingForReview returns the pending requests staff should act on: those
// starting on asOf or the day before.
func (s *service) PendingForReview(ctx context.Context, asOf time.Time) []*Request {
	return s.requests.FindPendingDueForReview(asOf)
}

// StudentHistory returns all loan records for a student.
func (s *service) StudentHistory(ctx context.Context, studentUsername string) []*Record {
	return s.records.FindByStudent(studentUsername)
}

// ActiveBorrows returns all loans still out.
func (s *service) ActiveBorrows(ctx context.Context) []*Record {
	return s.records.FindActive()
}
