package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/famquest/internal/logger"
)

var (
	// ErrDuplicateCompletion is returned by storage when a (habit, member, date) log already exists.
	// It is never surfaced to end users as a failure.
	ErrDuplicateCompletion = stderrors.New("completion already recorded for this day")

	// ErrInvalidTarget covers missing habits or members and cross-family references
	ErrInvalidTarget = stderrors.New("invalid completion target")

	// ErrNotAssigned is returned when a member is not assigned to the habit
	ErrNotAssigned = fmt.Errorf("%w: member is not assigned to habit", ErrInvalidTarget)

	// ErrInactiveHabit is returned when completing a deactivated habit
	ErrInactiveHabit = fmt.Errorf("%w: habit is inactive", ErrInvalidTarget)

	// ErrNotDue is returned when schedule enforcement is on and the habit is not due today
	ErrNotDue = fmt.Errorf("%w: habit is not due today", ErrInvalidTarget)

	// ErrInvalidInput is returned when family, member or habit fields fail validation
	ErrInvalidInput = stderrors.New("invalid input")

	// ErrConfiguration signals misconfiguration such as an unknown timezone
	ErrConfiguration = stderrors.New("configuration error")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
