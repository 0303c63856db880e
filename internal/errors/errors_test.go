package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/ihsan/internal/logger"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"transition", Transitionf("challenge %q is already active", "fajr-40"), ErrInvalidTransition},
		{"missing profile", fmt.Errorf("toggle habit: %w", ErrMissingProfile), ErrMissingProfile},
		{"unknown challenge", fmt.Errorf("%w: %q", ErrChallengeNotFound, "nope"), ErrChallengeNotFound},
		{"bad challenge draft", fmt.Errorf("%w: xp must be between 10 and 500", ErrInvalidChallenge), ErrInvalidChallenge},
		{"unknown habit", fmt.Errorf("%w: %q", ErrHabitNotFound, "h-9"), ErrHabitNotFound},
		{"bad habit draft", fmt.Errorf("%w: title is required", ErrInvalidHabit), ErrInvalidHabit},
		{"bad prayer status", fmt.Errorf("%w: %q", ErrInvalidStatus, "early"), ErrInvalidStatus},
		{"bad day key", fmt.Errorf("%w %q, expected YYYY-MM-DD", ErrInvalidDate, "2026-13-01"), ErrInvalidDate},
	}

	all := []error{
		ErrInvalidTransition, ErrMissingProfile, ErrChallengeNotFound, ErrInvalidChallenge,
		ErrHabitNotFound, ErrInvalidHabit, ErrInvalidStatus, ErrInvalidDate,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range all {
				if got := errors.Is(tt.err, s); got != (s == tt.sentinel) {
					t.Errorf("errors.Is(%v, %v) = %v", tt.err, s, got)
				}
			}
		})
	}
}

func TestTransitionfMessage(t *testing.T) {
	err := Transitionf("challenge %q is already active", "fajr-40")
	want := `invalid transition: challenge "fajr-40" is already active`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestPersistenceErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("toggle habit: %w", &PersistenceError{Op: "save", UserID: "amina", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("expected PersistenceError to unwrap to its cause")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As did not find the PersistenceError")
	}
	if pe.Op != "save" || pe.UserID != "amina" {
		t.Errorf("lost fields: %+v", pe)
	}
	if errors.Is(err, ErrInvalidTransition) {
		t.Error("persistence failures must not read as domain rejections")
	}
	want := `Error: toggle habit: persistence save for user "amina" failed: disk full`
	if got := Format(err); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
}

func TestFatalReportsPersistenceFailure(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		_ = logger.Init(logger.Config{Output: os.Stderr})
		Fatal(&PersistenceError{Op: "save", UserID: "amina", Err: errors.New("disk full")})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatalReportsPersistenceFailure")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Fatal() did not exit with error: %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", exitErr.ExitCode())
	}
	out := stderr.String()
	for _, want := range []string{"Error: persistence save", "op=save", "user=amina"} {
		if !strings.Contains(out, want) {
			t.Errorf("stderr %q missing %q", out, want)
		}
	}
}

func TestFatalNilReturns(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatalNilReturns")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
