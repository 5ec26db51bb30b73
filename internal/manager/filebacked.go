package manager

import (
	"fmt"
	"sync"

	"github.com/baiirun/taskline/internal/model"
)

// FileBacked wraps an InMemory manager and writes a full snapshot to its
// Store after every mutation that commits, and after every successful lookup
// since lookups move the history. Rejected calls don't save.
//
// A failed save is returned to the caller, but the in-memory change it
// followed stays applied.
type FileBacked struct {
	*InMemory

	saveMu sync.Mutex
	store  Store
}

var _ Manager = (*FileBacked)(nil)

// Open builds a manager from the contents of store. A nil store yields a
// FileBacked manager that never persists.
func Open(store Store, opts Options) (*FileBacked, error) {
	mem := NewInMemory(opts)
	if store != nil {
		snap, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load tasks: %w", err)
		}
		if err := mem.Restore(snap); err != nil {
			return nil, fmt.Errorf("failed to restore tasks: %w", err)
		}
	}
	return &FileBacked{InMemory: mem, store: store}, nil
}

// Save writes the current state to the store.
func (f *FileBacked) Save() error {
	if f.store == nil {
		return nil
	}
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	if err := f.store.Save(f.InMemory.Snapshot()); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func (f *FileBacked) Task(id int) (model.Item, error) {
	return f.readAndSave(f.InMemory.Task, id)
}

func (f *FileBacked) Epic(id int) (model.Item, error) {
	return f.readAndSave(f.InMemory.Epic, id)
}

func (f *FileBacked) SubTask(id int) (model.Item, error) {
	return f.readAndSave(f.InMemory.SubTask, id)
}

func (f *FileBacked) readAndSave(get func(int) (model.Item, error), id int) (model.Item, error) {
	item, err := get(id)
	if err != nil {
		return model.Item{}, err
	}
	return item, f.Save()
}

func (f *FileBacked) Create(item model.Item) (model.Item, error) {
	created, err := f.InMemory.Create(item)
	if err != nil {
		return model.Item{}, err
	}
	return created, f.Save()
}

func (f *FileBacked) Update(item model.Item) (model.Item, error) {
	updated, err := f.InMemory.Update(item)
	if err != nil {
		return model.Item{}, err
	}
	return updated, f.Save()
}

func (f *FileBacked) RemoveTask(id int) error {
	return f.saveAfter(f.InMemory.RemoveTask(id))
}

func (f *FileBacked) RemoveEpic(id int) error {
	return f.saveAfter(f.InMemory.RemoveEpic(id))
}

func (f *FileBacked) RemoveSubTask(id int) error {
	return f.saveAfter(f.InMemory.RemoveSubTask(id))
}

func (f *FileBacked) ClearTasks() error {
	return f.saveAfter(f.InMemory.ClearTasks())
}

func (f *FileBacked) ClearEpics() error {
	return f.saveAfter(f.InMemory.ClearEpics())
}

func (f *FileBacked) ClearSubTasks() error {
	return f.saveAfter(f.InMemory.ClearSubTasks())
}

func (f *FileBacked) saveAfter(err error) error {
	if err != nil {
		return err
	}
	return f.Save()
}
