// internal/reports/service.go
package reports

import (
	"context"
)

// DefaultDelayRankingSize is the ranking length when callers pass no limit.
const DefaultDelayRankingSize = 10

// Service defines the interface for the reporting engine. Every operation is
// a pure read over the stores, catalog and directory; nothing is mutated.
type Service interface {
	GetStudentStats(ctx context.Context, studentUsername string) *StudentStats
	GetStaffPerformance(ctx context.Context, staffUsername string) (*StaffPerformance, error)
	GetBorrowStats(ctx context.Context) *BorrowStats
	GetTopDelays(ctx context.Context, limit int) []StudentDelay
	GetGeneralStats(ctx context.Context) *GeneralStats
}
