package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libracirc/internal/borrow"
	"libracirc/internal/catalog"
	"libracirc/internal/directory"
)

type reportsFixture struct {
	svc       Service
	requests  *borrow.RequestStore
	records   *borrow.RecordStore
	catalog   catalog.Service
	directory directory.Service
}

func newReportsFixture(t *testing.T) *reportsFixture {
	t.Helper()

	log := zap.NewNop()
	dir := directory.NewService(log)
	cat := catalog.NewService(dir, log)
	requests := borrow.NewRequestStore()
	records := borrow.NewRecordStore()

	return &reportsFixture{
		svc:       NewService(requests, records, cat, dir),
		requests:  requests,
		records:   records,
		catalog:   cat,
		directory: dir,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addReturnedRecord creates a record for the student that went out on start
// and came back delayDays past its expected return date (0 = on time).
func (f *reportsFixture) addReturnedRecord(t *testing.T, student string, start time.Time, loanDays, delayDays int) {
	t.Helper()

	expected := start.AddDate(0, 0, loanDays)
	record := f.records.Create(uuid.New(), student, uuid.New(), start, expected, "staff1")
	_, err := f.records.MarkReturned(record.ID, "staff1", expected.AddDate(0, 0, delayDays))
	require.NoError(t, err)
}

func TestGetStudentStats(t *testing.T) {
	f := newReportsFixture(t)
	start := date(2026, 8, 1)

	f.addReturnedRecord(t, "m.karimi", start, 7, 0) // on time
	f.addReturnedRecord(t, "m.karimi", start, 7, 4) // late
	f.records.Create(uuid.New(), "m.karimi", uuid.New(), start, start.AddDate(0, 0, 7), "staff1") // still out

	stats := f.svc.GetStudentStats(context.Background(), "m.karimi")
	assert.Equal(t, 3, stats.TotalBorrows)
	assert.Equal(t, 1, stats.NotReturned)
	assert.Equal(t, 1, stats.LateReturns)

	t.Run("unknown student has an empty history", func(t *testing.T) {
		stats := f.svc.GetStudentStats(context.Background(), "nobody")
		assert.Equal(t, 0, stats.TotalBorrows)
	})
}

func TestGetStaffPerformance(t *testing.T) {
	ctx := context.Background()
	f := newReportsFixture(t)

	_, err := f.directory.Register(ctx, "staff1", "", "secret123", directory.RoleStaff)
	require.NoError(t, err)
	_, err = f.directory.Register(ctx, "m.karimi", "", "secret123", directory.RoleStudent)
	require.NoError(t, err)

	require.NoError(t, f.directory.IncrementBooksRegistered(ctx, "staff1"))
	require.NoError(t, f.directory.IncrementBooksLent(ctx, "staff1"))
	require.NoError(t, f.directory.IncrementBooksLent(ctx, "staff1"))
	require.NoError(t, f.directory.IncrementBooksReceived(ctx, "staff1"))

	performance, err := f.svc.GetStaffPerformance(ctx, "staff1")
	require.NoError(t, err)
	assert.Equal(t, 1, performance.BooksRegistered)
	assert.Equal(t, 2, performance.BooksLent)
	assert.Equal(t, 1, performance.BooksReceived)

	t.Run("students have no performance report", func(t *testing.T) {
		_, err := f.svc.GetStaffPerformance(ctx, "m.karimi")
		assert.ErrorIs(t, err, directory.ErrNotStaff)
	})

	t.Run("unknown staff", func(t *testing.T) {
		_, err := f.svc.GetStaffPerformance(ctx, "nobody")
		assert.ErrorIs(t, err, directory.ErrUserNotFound)
	})
}

func TestGetBorrowStats(t *testing.T) {
	ctx := context.Background()

	t.Run("average over returned records only", func(t *testing.T) {
		f := newReportsFixture(t)
		start := date(2026, 8, 1)

		f.requests.Create("m.karimi", uuid.New(), start, start.AddDate(0, 0, 7))
		f.requests.Create("s.ahmadi", uuid.New(), start, start.AddDate(0, 0, 7))
		f.requests.Create("r.hosseini", uuid.New(), start, start.AddDate(0, 0, 7))

		// durations 5 and 10 days
		f.addReturnedRecord(t, "m.karimi", start, 5, 0)
		f.addReturnedRecord(t, "s.ahmadi", start, 10, 0)
		// active record, excluded from the average
		f.records.Create(uuid.New(), "r.hosseini", uuid.New(), start, start.AddDate(0, 0, 7), "staff1")

		stats := f.svc.GetBorrowStats(ctx)
		assert.Equal(t, 3, stats.TotalRequests)
		assert.Equal(t, 3, stats.ApprovedBorrows)
		assert.InDelta(t, 7.5, stats.AvgBorrowDurationDays, 1e-9)
	})

	t.Run("no returned records", func(t *testing.T) {
		f := newReportsFixture(t)
		stats := f.svc.GetBorrowStats(ctx)
		assert.Equal(t, 0.0, stats.AvgBorrowDurationDays)
	})
}

func TestGetTopDelays(t *testing.T) {
	ctx := context.Background()

	t.Run("ranking is capped and sorted descending", func(t *testing.T) {
		f := newReportsFixture(t)
		start := date(2026, 8, 1)

		// 12 students, each one late return of i days
		for i := 1; i <= 12; i++ {
			f.addReturnedRecord(t, fmt.Sprintf("student%02d", i), start, 7, i)
		}

		ranking := f.svc.GetTopDelays(ctx, 0)
		require.Len(t, ranking, DefaultDelayRankingSize)
		assert.Equal(t, "student12", ranking[0].Username)
		assert.Equal(t, 12, ranking[0].TotalDelayDays)
		for i := 1; i < len(ranking); i++ {
			assert.GreaterOrEqual(t, ranking[i-1].TotalDelayDays, ranking[i].TotalDelayDays)
		}
		assert.Equal(t, 3, ranking[len(ranking)-1].TotalDelayDays)
	})

	t.Run("delays are summed per student", func(t *testing.T) {
		f := newReportsFixture(t)
		start := date(2026, 8, 1)

		f.addReturnedRecord(t, "m.karimi", start, 7, 2)
		f.addReturnedRecord(t, "m.karimi", start, 7, 3)
		f.addReturnedRecord(t, "s.ahmadi", start, 7, 4)
		f.addReturnedRecord(t, "r.hosseini", start, 7, 0) // on time, excluded

		ranking := f.svc.GetTopDelays(ctx, 10)
		require.Len(t, ranking, 2)
		assert.Equal(t, StudentDelay{Username: "m.karimi", TotalDelayDays: 5}, ranking[0])
		assert.Equal(t, StudentDelay{Username: "s.ahmadi", TotalDelayDays: 4}, ranking[1])
	})

	t.Run("ties keep first-appearance order", func(t *testing.T) {
		f := newReportsFixture(t)
		start := date(2026, 8, 1)

		f.addReturnedRecord(t, "s.ahmadi", start, 7, 3)
		f.addReturnedRecord(t, "m.karimi", start, 7, 3)

		ranking := f.svc.GetTopDelays(ctx, 10)
		require.Len(t, ranking, 2)
		assert.Equal(t, "s.ahmadi", ranking[0].Username)
		assert.Equal(t, "m.karimi", ranking[1].Username)
	})

	t.Run("no late returns", func(t *testing.T) {
		f := newReportsFixture(t)
		assert.Empty(t, f.svc.GetTopDelays(ctx, 10))
	})
}

func TestGetGeneralStats(t *testing.T) {
	ctx := context.Background()
	f := newReportsFixture(t)

	_, err := f.directory.Register(ctx, "m.karimi", "", "secret123", directory.RoleStudent)
	require.NoError(t, err)
	_, err = f.directory.Register(ctx, "s.ahmadi", "", "secret123", directory.RoleStudent)
	require.NoError(t, err)
	_, err = f.directory.Register(ctx, "staff1", "", "secret123", directory.RoleStaff)
	require.NoError(t, err)

	_, err = f.catalog.AddBook(ctx, "", "Clean Code", "Robert C. Martin", 2008, "")
	require.NoError(t, err)

	start := date(2026, 8, 1)
	f.addReturnedRecord(t, "m.karimi", start, 7, 0)
	f.records.Create(uuid.New(), "s.ahmadi", uuid.New(), start, start.AddDate(0, 0, 7), "staff1")

	stats := f.svc.GetGeneralStats(ctx)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 2, stats.TotalBorrows)
	assert.Equal(t, 1, stats.ActiveBorrows)
}
