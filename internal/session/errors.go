package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/recipeapi"
)

var (
	// ErrBusy is returned when an operation is started while another is
	// still outstanding
	ErrBusy = errors.New("another operation is in progress")

	// ErrInvalidTransition is returned when an event is not allowed in the
	// current state
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrEmptyIngredient is returned when an added ingredient is blank
	ErrEmptyIngredient = errors.New("ingredient name is empty")

	// ErrIndexOutOfRange is returned when removing a missing ingredient
	ErrIndexOutOfRange = errors.New("ingredient index out of range")

	// ErrNoIngredients is returned when generating from an empty list
	ErrNoIngredients = errors.New("no ingredients to cook with")

	// ErrWrongContract is returned when an operation belongs to the other
	// service contract
	ErrWrongContract = errors.New("operation not available with this contract")
)

// TransitionError reports an event rejected in the current state
type TransitionError struct {
	Event string
	From  State
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s", e.Event, e.From)
}

// Is makes errors.Is(err, ErrInvalidTransition) match
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// noticeFor converts a failed operation into the notice shown to the user
func noticeFor(op Op, err error) Notice {
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		what := "the camera"
		if op == OpPick {
			what = "your photos"
		}
		return Notice{
			Kind:    NoticeWarning,
			Title:   "Permission Denied",
			Message: "Prep needs access to " + what + ".",
			Hints:   []string{err.Error()},
		}

	case errors.Is(err, capture.ErrCaptureFailed):
		return Notice{
			Kind:    NoticeError,
			Title:   "Capture Failed",
			Message: op.failureMessage(),
			Hints:   []string{err.Error()},
		}

	case errors.Is(err, context.DeadlineExceeded):
		return Notice{
			Kind:    NoticeError,
			Title:   "Timeout",
			Message: op.failureMessage(),
		}
	}

	var apiErr *recipeapi.APIError
	if errors.As(err, &apiErr) {
		msg := recipeapi.ShortMessage(err)
		if msg == "" {
			msg = op.failureMessage()
		}
		return Notice{
			Kind:    NoticeError,
			Title:   recipeapi.NoticeTitle(err),
			Message: msg,
			Hints:   recipeapi.TroubleshootingHint(err),
		}
	}

	return Notice{
		Kind:    NoticeError,
		Title:   "Error",
		Message: op.failureMessage(),
		Hints:   []string{err.Error()},
	}
}
