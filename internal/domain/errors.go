package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a record is missing.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized covers both the wrong role and a non-owner acting on a record.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrDuplicateApplication is returned when a job seeker applies twice to one job.
	ErrDuplicateApplication = errors.New("you have already applied to this job")
	// ErrDuplicateUser is returned on a username or email collision.
	ErrDuplicateUser = errors.New("username or email already registered")
	// ErrJobInactive is returned when applying to a deactivated posting.
	ErrJobInactive = errors.New("this job is no longer accepting applications")
	// ErrInvalidCredentials is returned by Authenticate.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError lists offending fields with a user-facing message each.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// InvalidStatusError is returned for an unknown status value, or for a move
// the active transition policy forbids (From is set in that case).
type InvalidStatusError struct {
	Status string
	From   Status
}

func (e *InvalidStatusError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.Status)
	}
	return fmt.Sprintf("unknown application status %q", e.Status)
}
