package borrow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"libracirc/internal/catalog"
	"libracirc/internal/directory"
)

// TestWorkflowInvariants drives random sequences of request/approve/reject/
// return operations and checks after every step that
//   - a book is unavailable exactly when an active record references it,
//   - no book is ever referenced by two active records,
//   - request statuses and the returned flag only move forward.
func TestWorkflowInvariants(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	dir := directory.NewService(log)
	cat := catalog.NewService(dir, log)
	svc := NewService(NewRequestStore(), NewRecordStore(), cat, dir, log).(*service)

	today := date(2026, 9, 1)
	svc.now = func() time.Time { return today.Add(9 * time.Hour) }

	students := []string{"s.ahmadi", "m.karimi", "r.hosseini"}
	for _, username := range students {
		if _, err := dir.Register(ctx, username, "", "secret123", directory.RoleStudent); err != nil {
			t.Fatalf("register student: %v", err)
		}
	}
	if _, err := dir.Register(ctx, "staff1", "", "secret123", directory.RoleStaff); err != nil {
		t.Fatalf("register staff: %v", err)
	}

	prevStatus := make(map[uuid.UUID]Status)
	prevReturned := make(map[uuid.UUID]bool)

	rapid.Check(t, func(rt *rapid.T) {
		var books []uuid.UUID
		for i, n := 0, rapid.IntRange(1, 3).Draw(rt, "books"); i < n; i++ {
			book, err := cat.AddBook(ctx, "", "Some Title", "Some Author", 2020, "")
			if err != nil {
				rt.Fatalf("add book: %v", err)
			}
			books = append(books, book.ID)
		}

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				student := rapid.SampledFrom(students).Draw(rt, "student")
				book := rapid.SampledFrom(books).Draw(rt, "book")
				svc.CreateBorrowRequest(ctx, student, book, today, today.AddDate(0, 0, 7))
			case 1:
				pending := svc.requests.FindPending()
				if len(pending) == 0 {
					continue
				}
				request := pending[rapid.IntRange(0, len(pending)-1).Draw(rt, "request")]
				if rapid.Bool().Draw(rt, "approve") {
					svc.ApproveRequest(ctx, request.ID, "staff1")
				} else {
					svc.RejectRequest(ctx, request.ID, "staff1")
				}
			case 2:
				active := svc.records.FindActive()
				if len(active) == 0 {
					continue
				}
				record := active[rapid.IntRange(0, len(active)-1).Draw(rt, "record")]
				svc.ReturnBook(ctx, record.ID, "staff1")
			}

			checkAvailabilityInvariant(rt, ctx, svc, cat, books)
			checkMonotonicity(rt, svc, prevStatus, prevReturned)
		}
	})
}

func checkAvailabilityInvariant(rt *rapid.T, ctx context.Context, svc *service, cat catalog.Service, books []uuid.UUID) {
	activeByBook := make(map[uuid.UUID]int)
	for _, record := range svc.records.FindActive() {
		activeByBook[record.BookID]++
	}

	for book, count := range activeByBook {
		if count > 1 {
			rt.Fatalf("book %s has %d active loans", book, count)
		}
	}

	seen := make(map[uuid.UUID]bool)
	check := func(book uuid.UUID) {
		if seen[book] {
			return
		}
		seen[book] = true
		wantAvailable := activeByBook[book] == 0
		if got := cat.IsAvailable(ctx, book); got != wantAvailable {
			rt.Fatalf("book %s: available=%v, want %v (active loans: %d)",
				book, got, wantAvailable, activeByBook[book])
		}
	}

	for _, book := range books {
		check(book)
	}
	for _, record := range svc.records.All() {
		check(record.BookID)
	}
}

func checkMonotonicity(rt *rapid.T, svc *service, prevStatus map[uuid.UUID]Status, prevReturned map[uuid.UUID]bool) {
	for _, request := range svc.requests.All() {
		if prev, ok := prevStatus[request.ID]; ok && prev != StatusPending && request.Status != prev {
			rt.Fatalf("request %s status reverted from %s to %s", request.ID, prev, request.Status)
		}
		prevStatus[request.ID] = request.Status
	}
	for _, record := range svc.records.All() {
		if prevReturned[record.ID] && !record.Returned {
			rt.Fatalf("record %s returned flag reverted", record.ID)
		}
		prevReturned[record.ID] = record.Returned
	}
}
