// internal/directory/implementation.go
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotStaff           = errors.New("user is not staff")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// service implements the Service interface with an in-memory directory.
type service struct {
	mu          sync.RWMutex
	users       map[string]*User
	order       []string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new directory service instance.
func NewService(logger *zap.Logger) Service {
	return &service{
		users:       make(map[string]*User),
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 50),
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a new account with a salted Argon2id password hash.
func (s *service) Register(ctx context.Context, username, fullName, password string, role Role) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		FullName:     fullName,
		Role:         role,
		Active:       true,
		CreatedAt:    s.now(),
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	s.users[username] = user
	s.order = append(s.order, username)

	s.logger.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return cloneUser(user), nil
}

// Authenticate verifies credentials and returns the account if they match.
// The account is cloned under the read lock; the hash comparison runs on the
// clone so it never races with counter or active-flag writes.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	s.mu.RLock()
	user, ok := s.users[username]
	if ok {
		user = cloneUser(user)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
	}

	match, err := verifyPassword(password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !match {
		return nil, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
	}

	return cloneUser(user), nil
}

// FindByUsername looks up an account.
func (s *service) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return cloneUser(user), nil
}

// SetActive enables or disables an account. Inactive students cannot borrow.
func (s *service) SetActive(ctx context.Context, username string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	user.Active = active
	return nil
}

// CountStudents returns the number of student accounts.
func (s *service) CountStudents(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, user := range s.users {
		if user.Role == RoleStudent {
			count++
		}
	}
	return count
}

// CountAll returns the total number of accounts.
func (s *service) CountAll(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// IncrementBooksRegistered credits a staff member for registering a book.
func (s *service) IncrementBooksRegistered(ctx context.Context, username string) error {
	return s.incrementStat(username, func(stats *StaffStats) { stats.BooksRegistered++ })
}

// IncrementBooksLent credits a staff member for handing out a book.
func (s *service) IncrementBooksLent(ctx context.Context, username string) error {
	return s.incrementStat(username, func(stats *StaffStats) { stats.BooksLent++ })
}

// IncrementBooksReceived credits a staff member for taking a book back.
func (s *service) IncrementBooksReceived(ctx context.Context, username string) error {
	return s.incrementStat(username, func(stats *StaffStats) { stats.BooksReceived++ })
}

func (s *service) incrementStat(username string, apply func(*StaffStats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if !user.IsStaff() {
		return fmt.Errorf("%w: %s", ErrNotStaff, username)
	}
	apply(&user.Stats)
	return nil
}

// Export returns every account in registration order, including credentials,
// for state snapshots.
func (s *service) Export(ctx context.Context) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.order))
	for _, username := range s.order {
		users = append(users, cloneUser(s.users[username]))
	}
	return users
}

// Restore replaces the directory contents.
func (s *service) Restore(ctx context.Context, users []*User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*User, len(users))
	s.order = s.order[:0]
	for _, user := range users {
		s.users[user.Username] = cloneUser(user)
		s.order = append(s.order, user.Username)
	}
}

func cloneUser(u *User) *User {
	c := *u
	return &c
}
