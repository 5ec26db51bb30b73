// Package model defines the work items tracked by taskline: standalone
// tasks, epics, and the subtasks an epic owns.
package model

import (
	"slices"
	"time"
)

// Kind tags which variant an Item is.
type Kind string

const (
	KindTask    Kind = "task"
	KindEpic    Kind = "epic"
	KindSubTask Kind = "subtask"
)

// IsValid returns true if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindTask, KindEpic, KindSubTask:
		return true
	}
	return false
}

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Item is a task, epic, or subtask. Fields that only apply to one variant
// are left at their zero value on the others.
//
// Item values crossing a package boundary must be copied with Copy: SubTaskIDs
// is a slice and would otherwise alias the owner's storage.
type Item struct {
	ID          int
	Kind        Kind
	Title       string
	Description string
	Status      Status
	Duration    time.Duration
	Start       time.Time // zero when unscheduled

	// EpicID is the owning epic of a subtask.
	EpicID int

	// SubTaskIDs lists the subtasks an epic owns, in insertion order.
	SubTaskIDs []int

	// End is only stored for epics, where it is derived from subtasks and
	// can't be computed from Start+Duration.
	End time.Time
}

// NewTask returns an unsaved task with status NEW.
func NewTask(title, description string, duration time.Duration, start time.Time) Item {
	return Item{
		Kind:        KindTask,
		Title:       title,
		Description: description,
		Status:      StatusNew,
		Duration:    duration,
		Start:       start,
	}
}

// NewEpic returns an unsaved epic with no subtasks.
func NewEpic(title, description string) Item {
	return Item{
		Kind:        KindEpic,
		Title:       title,
		Description: description,
		Status:      StatusNew,
	}
}

// NewSubTask returns an unsaved subtask owned by epicID.
func NewSubTask(title, description string, epicID int, duration time.Duration, start time.Time) Item {
	return Item{
		Kind:        KindSubTask,
		Title:       title,
		Description: description,
		Status:      StatusNew,
		Duration:    duration,
		Start:       start,
		EpicID:      epicID,
	}
}

// HasStart reports whether the item is scheduled.
func (i Item) HasStart() bool {
	return !i.Start.IsZero()
}

// EndTime returns when the item finishes, or the zero time if it has no start.
func (i Item) EndTime() time.Time {
	if i.Kind == KindEpic {
		return i.End
	}
	if i.Start.IsZero() {
		return time.Time{}
	}
	return i.Start.Add(i.Duration)
}

// Copy returns an independent value copy of the item.
func (i Item) Copy() Item {
	c := i
	if i.SubTaskIDs != nil {
		c.SubTaskIDs = slices.Clone(i.SubTaskIDs)
	}
	return c
}

// Same reports whether two items share an identity. Items are equal by ID
// only; other fields may differ between copies taken at different times.
func (i Item) Same(other Item) bool {
	return i.ID == other.ID
}

// HasSubTask reports whether the epic owns the subtask id.
func (i Item) HasSubTask(id int) bool {
	return slices.Contains(i.SubTaskIDs, id)
}

// CopyAll copies every item in the slice. A nil input yields an empty slice.
func CopyAll(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.Copy())
	}
	return out
}
