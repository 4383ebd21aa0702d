package matching

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can branch with
// errors.Is without knowing every cause.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	ErrUserNotFound      = fmt.Errorf("%w: user does not exist", ErrNotFound)
	ErrProfileNotFound   = fmt.Errorf("%w: user has no profile", ErrNotFound)
	ErrCandidateNotFound = fmt.Errorf("%w: candidate unavailable", ErrNotFound)
	ErrInvalidPageSize   = fmt.Errorf("%w: page size must be positive", ErrInvalidArgument)
	ErrInvertedBounds    = fmt.Errorf("%w: filter bounds are inverted", ErrInvalidArgument)
	ErrSelfCompatibility = fmt.Errorf("%w: cannot score a user against themselves", ErrInvalidArgument)
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}
