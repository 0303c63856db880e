package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/ihsan/internal/logger"
)

var (
	// ErrInvalidTransition is returned when a lifecycle move is not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrMissingProfile is returned when an operation runs before a profile has been loaded.
	ErrMissingProfile = errors.New("profile not loaded")
	// ErrChallengeNotFound is returned for ids that are neither built-in nor custom challenges.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrInvalidChallenge is returned when a custom challenge draft fails validation.
	ErrInvalidChallenge = errors.New("invalid challenge")
	// ErrHabitNotFound is returned for unknown habit ids.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidHabit is returned when a habit draft fails validation.
	ErrInvalidHabit = errors.New("invalid habit")
	// ErrInvalidStatus is returned for prayer statuses outside the known set.
	ErrInvalidStatus = errors.New("invalid prayer status")
	// ErrInvalidDate is returned for day keys that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// PersistenceError reports a failed read or write against the backing store.
// In-memory state is never rolled back when one of these occurs.
type PersistenceError struct {
	Op     string
	UserID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s for user %q failed: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Transitionf wraps ErrInvalidTransition with context.
func Transitionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1.
// Persistence failures are logged with the operation and user they hit.
func Fatal(err error) {
	if err == nil {
		return
	}
	keyvals := []interface{}{"error", err}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		keyvals = append(keyvals, "op", perr.Op, "user", perr.UserID)
	}
	logger.Error("Command execution failed", keyvals...)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(1)
}
