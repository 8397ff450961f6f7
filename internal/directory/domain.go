// internal/directory/domain.go
package directory

import (
	"time"
)

// Role distinguishes account kinds. Staff and managers carry performance
// counters; only students may borrow.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
)

// StaffStats holds the per-staff performance counters incremented by the
// catalog and the borrow workflow.
type StaffStats struct {
	BooksRegistered int `json:"books_registered"`
	BooksLent       int `json:"books_lent"`
	BooksReceived   int `json:"books_received"`
}

// User represents a library account of any role.
type User struct {
	Username     string     `json:"username"`
	FullName     string     `json:"full_name,omitempty"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	Stats        StaffStats `json:"stats"`
}

// IsStaff reports whether the account carries staff capabilities.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleManager
}
