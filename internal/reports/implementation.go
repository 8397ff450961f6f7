// internal/reports/implementation.go
package reports

import (
	"context"
	"fmt"
	"sort"

	"libracirc/internal/borrow"
	"libracirc/internal/directory"
)

// Catalog is the slice of the catalog the reporting engine reads.
type Catalog interface {
	CountAll(ctx context.Context) int
}

// UserDirectory is the slice of the user directory the reporting engine reads.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*directory.User, error)
	CountStudents(ctx context.Context) int
}

// service implements the Service interface over the borrow stores.
type service struct {
	requests  *borrow.RequestStore
	records   *borrow.RecordStore
	catalog   Catalog
	directory UserDirectory
}

// NewService creates a new reporting engine.
func NewService(requests *borrow.RequestStore, records *borrow.RecordStore, cat Catalog, dir UserDirectory) Service {
	return &service{
		requests:  requests,
		records:   records,
		catalog:   cat,
		directory: dir,
	}
}

// GetStudentStats summarizes a student's history. Unknown students simply
// have an empty history.
func (s *service) GetStudentStats(ctx context.Context, studentUsername string) *StudentStats {
	stats := &StudentStats{Username: studentUsername}
	for _, record := range s.records.FindByStudent(studentUsername) {
		stats.TotalBorrows++
		if !record.Returned {
			stats.NotReturned++
		}
		if record.LateReturn() {
			stats.LateReturns++
		}
	}
	return stats
}

// GetStaffPerformance reads the directory counters for a staff member.
func (s *service) GetStaffPerformance(ctx context.Context, staffUsername string) (*StaffPerformance, error) {
	user, err := s.directory.FindByUsername(ctx, staffUsername)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() {
		return nil, fmt.Errorf("%w: %s", directory.ErrNotStaff, staffUsername)
	}

	return &StaffPerformance{
		Username:        staffUsername,
		BooksRegistered: user.Stats.BooksRegistered,
		BooksLent:       user.Stats.BooksLent,
		BooksReceived:   user.Stats.BooksReceived,
	}, nil
}

// GetBorrowStats aggregates the full request and record history.
func (s *service) GetBorrowStats(ctx context.Context) *BorrowStats {
	stats := &BorrowStats{
		TotalRequests: s.requests.CountAll(),
	}

	var totalDuration, returned int
	for _, record := range s.records.All() {
		stats.ApprovedBorrows++
		if record.Returned {
			totalDuration += record.DurationDays()
			returned++
		}
	}
	if returned > 0 {
		stats.AvgBorrowDurationDays = float64(totalDuration) / float64(returned)
	}
	return stats
}

// GetTopDelays ranks students by summed delay days over their late returns,
// descending. Ties keep the order in which students first appear in the
// record history. A non-positive limit falls back to DefaultDelayRankingSize.
func (s *service) GetTopDelays(ctx context.Context, limit int) []StudentDelay {
	if limit <= 0 {
		limit = DefaultDelayRankingSize
	}

	delays := make(map[string]int)
	var order []string
	for _, record := range s.records.All() {
		if !record.LateReturn() {
			continue
		}
		if _, seen := delays[record.StudentUsername]; !seen {
			order = append(order, record.StudentUsername)
		}
		delays[record.StudentUsername] += record.DelayDays()
	}

	ranking := make([]StudentDelay, 0, len(order))
	for _, username := range order {
		ranking = append(ranking, StudentDelay{Username: username, TotalDelayDays: delays[username]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalDelayDays > ranking[j].TotalDelayDays
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// GetGeneralStats returns the library-wide overview.
func (s *service) GetGeneralStats(ctx context.Context) *GeneralStats {
	return &GeneralStats{
		TotalStudents: s.directory.CountStudents(ctx),
		TotalBooks:    s.catalog.CountAll(ctx),
		TotalBorrows:  s.records.CountAll(),
		ActiveBorrows: s.records.CountActive(),
	}
}
