package manager

import (
	"errors"
	"fmt"
	"time"

	"github.com/baiirun/taskline/internal/model"
)

var (
	ErrNotFound         = errors.New("item not found")
	ErrInvalidReference = errors.New("invalid epic reference")
	ErrTimeConflict     = errors.New("time conflict")
	ErrInvalidItem      = errors.New("invalid item")
)

// ConflictError is returned when an item's interval overlaps one that is
// already scheduled. It matches ErrTimeConflict with errors.Is.
type ConflictError struct {
	Candidate model.Item
	Existing  model.Item
}

const conflictTimeFormat = "2006-01-02 15:04"

func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q [%s, %s) overlaps %s %d %q [%s, %s)",
		ErrTimeConflict.Error(),
		e.Candidate.Title,
		e.Candidate.Start.Format(conflictTimeFormat), e.Candidate.EndTime().Format(conflictTimeFormat),
		e.Existing.Kind, e.Existing.ID, e.Existing.Title,
		e.Existing.Start.Format(conflictTimeFormat), e.Existing.EndTime().Format(conflictTimeFormat))
}

func (e *ConflictError) Unwrap() error { return ErrTimeConflict }

func notFound(kind model.Kind, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

func missingEpic(id int) error {
	return fmt.Errorf("%w: epic %d does not exist", ErrInvalidReference, id)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidItem, fmt.Sprintf(format, args...))
}

// validate checks the caller-settable fields of item and fills in defaults.
func validate(item *model.Item) error {
	if !item.Kind.IsValid() {
		return invalidf("unknown kind %q", item.Kind)
	}
	if item.Status == "" {
		item.Status = model.StatusNew
	}
	if !item.Status.IsValid() {
		return invalidf("unknown status %q", item.Status)
	}
	if item.Duration < 0 {
		return invalidf("negative duration %s", item.Duration)
	}
	// Durations are stored in whole minutes.
	if item.Duration%time.Minute != 0 {
		return invalidf("duration %s is not a whole number of minutes", item.Duration)
	}
	return nil
}
