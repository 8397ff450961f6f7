// internal/reports/domain.go
package reports

// StudentStats summarizes a student's borrow history.
type StudentStats struct {
	Username     string `json:"username"`
	TotalBorrows int    `json:"total_borrows"`
	NotReturned  int    `json:"not_returned"`
	LateReturns  int    `json:"late_returns"`
}

// StaffPerformance reports a staff member's counters.
type StaffPerformance struct {
	Username        string `json:"username"`
	BooksRegistered int    `json:"books_registered"`
	BooksLent       int    `json:"books_lent"`
	BooksReceived   int    `json:"books_received"`
}

// BorrowStats aggregates the request and record history. The average duration
// considers returned records only; it is 0 when nothing has been returned.
type BorrowStats struct {
	TotalRequests         int     `json:"total_requests"`
	ApprovedBorrows       int     `json:"approved_borrows"`
	AvgBorrowDurationDays float64 `json:"avg_borrow_duration_days"`
}

// StudentDelay is one entry of the delay ranking: a student and their summed
// delay days across all late returns.
type StudentDelay struct {
	Username       string `json:"username"`
	TotalDelayDays int    `json:"total_delay_days"`
}

// GeneralStats is the library-wide overview.
type GeneralStats struct {
	TotalStudents int `json:"total_students"`
	TotalBooks    int `json:"total_books"`
	TotalBorrows  int `json:"total_borrows"`
	ActiveBorrows int `json:"active_borrows"`
}
