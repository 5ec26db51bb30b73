// Package manager is the single source of truth for tasks, epics and
// subtasks. It assigns ids, keeps epics consistent with their subtasks,
// rejects overlapping schedules and records reads in the history.
//
// Every item handed to or returned from a Manager is a value copy; mutating
// it never changes stored state.
package manager

import "github.com/baiirun/taskline/internal/model"

// Manager is the contract consumed by the CLI, the TUI and persistence.
type Manager interface {
	Tasks() []model.Item
	Epics() []model.Item
	SubTasks() []model.Item
	// PrioritizedTasks returns scheduled tasks and subtasks by ascending start.
	PrioritizedTasks() []model.Item

	// Task, Epic and SubTask look an item up and record it in the history.
	Task(id int) (model.Item, error)
	Epic(id int) (model.Item, error)
	SubTask(id int) (model.Item, error)
	SubTasksByEpic(epicID int) ([]model.Item, error)

	// Create stores a new item under a fresh id, ignoring item.ID.
	Create(item model.Item) (model.Item, error)
	// Update replaces the stored item with the same id and kind.
	Update(item model.Item) (model.Item, error)

	RemoveTask(id int) error
	RemoveEpic(id int) error
	RemoveSubTask(id int) error
	ClearTasks() error
	ClearEpics() error
	ClearSubTasks() error

	// History returns recently read items, oldest first.
	History() []model.Item
}

// Snapshot is the full persisted state of a manager. Tasks and epics are
// ordered by ascending id. Subtasks follow their epics in id order and keep
// each epic's member order.
type Snapshot struct {
	Tasks    []model.Item
	Epics    []model.Item
	SubTasks []model.Item

	// History lists the ids of recently read items, oldest first.
	History []int
}

// Len returns the total number of items in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Tasks) + len(s.Epics) + len(s.SubTasks)
}

// Store loads and saves manager snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}
