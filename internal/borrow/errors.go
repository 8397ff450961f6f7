// internal/borrow/errors.go
package borrow

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the borrow workflow. ErrAlreadyDecided and
// ErrAlreadyReturned are invalid-state specializations, so errors.Is against
// ErrInvalidState matches them too.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")

	ErrAlreadyDecided  = fmt.Errorf("%w: request already decided", ErrInvalidState)
	ErrAlreadyReturned = fmt.Errorf("%w: record already returned", ErrInvalidState)
)
