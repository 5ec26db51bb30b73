package manager

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/baiirun/taskline/internal/history"
	"github.com/baiirun/taskline/internal/model"
	"github.com/baiirun/taskline/internal/schedule"
)

// Options configure an InMemory manager.
type Options struct {
	// PurgeHistoryOnDelete drops removed items from the history so it never
	// lists something that no longer exists.
	PurgeHistoryOnDelete bool

	// History overrides the default tracker.
	History history.Tracker
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{PurgeHistoryOnDelete: true}
}

// InMemory is a Manager that keeps everything in maps. All methods are safe
// for concurrent use; a single mutex guards the tables, schedule and history.
type InMemory struct {
	mu sync.Mutex

	tasks    map[int]model.Item
	epics    map[int]model.Item
	subtasks map[int]model.Item

	schedule     *schedule.Schedule
	history      history.Tracker
	purgeHistory bool

	lastID int
}

var _ Manager = (*InMemory)(nil)

// NewInMemory returns an empty manager.
func NewInMemory(opts Options) *InMemory {
	h := opts.History
	if h == nil {
		h = history.NewInMemory()
	}
	return &InMemory{
		tasks:        make(map[int]model.Item),
		epics:        make(map[int]model.Item),
		subtasks:     make(map[int]model.Item),
		schedule:     schedule.New(),
		history:      h,
		purgeHistory: opts.PurgeHistoryOnDelete,
	}
}

// sortedCopies returns copies of the table values ordered by id.
func sortedCopies(table map[int]model.Item) []model.Item {
	out := make([]model.Item, 0, len(table))
	for _, id := range slices.Sorted(maps.Keys(table)) {
		out = append(out, table[id].Copy())
	}
	return out
}

func (m *InMemory) Tasks() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopies(m.tasks)
}

func (m *InMemory) Epics() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopies(m.epics)
}

func (m *InMemory) SubTasks() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopies(m.subtasks)
}

func (m *InMemory) PrioritizedTasks() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedule.Ordered()
}

func (m *InMemory) History() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.List()
}

func (m *InMemory) Task(id int) (model.Item, error) {
	return m.lookup(m.tasks, model.KindTask, id)
}

func (m *InMemory) Epic(id int) (model.Item, error) {
	return m.lookup(m.epics, model.KindEpic, id)
}

func (m *InMemory) SubTask(id int) (model.Item, error) {
	return m.lookup(m.subtasks, model.KindSubTask, id)
}

func (m *InMemory) lookup(table map[int]model.Item, kind model.Kind, id int) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := table[id]
	if !ok {
		return model.Item{}, notFound(kind, id)
	}
	m.history.Record(item)
	return item.Copy(), nil
}

// SubTasksByEpic returns the epic's subtasks in the order they were added.
func (m *InMemory) SubTasksByEpic(epicID int) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.epics[epicID]
	if !ok {
		return nil, notFound(model.KindEpic, epicID)
	}
	return model.CopyAll(m.members(epic)), nil
}

func (m *InMemory) Create(item model.Item) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item = item.Copy()
	if err := validate(&item); err != nil {
		return model.Item{}, err
	}

	switch item.Kind {
	case model.KindTask:
		item.EpicID, item.SubTaskIDs, item.End = 0, nil, time.Time{}
		if err := m.checkConflict(item, 0); err != nil {
			return model.Item{}, err
		}
		item.ID = m.nextID()
		m.tasks[item.ID] = item
		m.schedule.Insert(item)

	case model.KindEpic:
		item.EpicID, item.SubTaskIDs = 0, nil
		item.ApplyDerived(nil)
		item.ID = m.nextID()
		m.epics[item.ID] = item

	case model.KindSubTask:
		item.SubTaskIDs, item.End = nil, time.Time{}
		epic, ok := m.epics[item.EpicID]
		if !ok {
			return model.Item{}, missingEpic(item.EpicID)
		}
		if err := m.checkConflict(item, 0); err != nil {
			return model.Item{}, err
		}
		item.ID = m.nextID()
		m.subtasks[item.ID] = item
		epic.SubTaskIDs = append(epic.SubTaskIDs, item.ID)
		m.epics[epic.ID] = epic
		m.refreshEpic(epic.ID)
		m.schedule.Insert(item)
	}

	return item.Copy(), nil
}

// Update replaces a stored item. For epics only the title and description are
// taken from the argument: status, time window and members stay derived.
// A subtask whose EpicID changed moves to the new epic.
func (m *InMemory) Update(item model.Item) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item = item.Copy()
	if err := validate(&item); err != nil {
		return model.Item{}, err
	}

	switch item.Kind {
	case model.KindTask:
		if _, ok := m.tasks[item.ID]; !ok {
			return model.Item{}, notFound(model.KindTask, item.ID)
		}
		item.EpicID, item.SubTaskIDs, item.End = 0, nil, time.Time{}
		if err := m.checkConflict(item, item.ID); err != nil {
			return model.Item{}, err
		}
		m.tasks[item.ID] = item
		m.schedule.Insert(item)
		return item.Copy(), nil

	case model.KindEpic:
		stored, ok := m.epics[item.ID]
		if !ok {
			return model.Item{}, notFound(model.KindEpic, item.ID)
		}
		stored.Title = item.Title
		stored.Description = item.Description
		m.epics[item.ID] = stored
		return stored.Copy(), nil

	default:
		old, ok := m.subtasks[item.ID]
		if !ok {
			return model.Item{}, notFound(model.KindSubTask, item.ID)
		}
		if _, ok := m.epics[item.EpicID]; !ok {
			return model.Item{}, missingEpic(item.EpicID)
		}
		item.SubTaskIDs, item.End = nil, time.Time{}
		if err := m.checkConflict(item, item.ID); err != nil {
			return model.Item{}, err
		}

		m.subtasks[item.ID] = item
		if old.EpicID != item.EpicID {
			m.detach(old.EpicID, item.ID)
		}
		if epic := m.epics[item.EpicID]; !epic.HasSubTask(item.ID) {
			epic.SubTaskIDs = append(epic.SubTaskIDs, item.ID)
			m.epics[epic.ID] = epic
		}
		m.refreshEpic(item.EpicID)
		m.schedule.Insert(item)
		return item.Copy(), nil
	}
}

func (m *InMemory) RemoveTask(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return notFound(model.KindTask, id)
	}
	delete(m.tasks, id)
	m.forget(id)
	return nil
}

func (m *InMemory) RemoveSubTask(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.subtasks[id]
	if !ok {
		return notFound(model.KindSubTask, id)
	}
	delete(m.subtasks, id)
	m.detach(st.EpicID, id)
	m.forget(id)
	return nil
}

// RemoveEpic removes the epic and every subtask it owns.
func (m *InMemory) RemoveEpic(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.epics[id]
	if !ok {
		return notFound(model.KindEpic, id)
	}
	for _, stID := range epic.SubTaskIDs {
		delete(m.subtasks, stID)
		m.forget(stID)
	}
	delete(m.epics, id)
	m.forget(id)
	return nil
}

func (m *InMemory) ClearTasks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schedule.RemoveIf(ofKind(model.KindTask))
	m.purge(m.tasks)
	clear(m.tasks)
	return nil
}

// ClearSubTasks removes every subtask and resets each epic to its empty state.
func (m *InMemory) ClearSubTasks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearSubTasks()
	for id, epic := range m.epics {
		epic.SubTaskIDs = nil
		epic.ApplyDerived(nil)
		m.epics[id] = epic
	}
	return nil
}

// ClearEpics removes every epic together with all subtasks.
func (m *InMemory) ClearEpics() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearSubTasks()
	m.purge(m.epics)
	clear(m.epics)
	return nil
}

func (m *InMemory) clearSubTasks() {
	m.schedule.RemoveIf(ofKind(model.KindSubTask))
	m.purge(m.subtasks)
	clear(m.subtasks)
}

func ofKind(kind model.Kind) func(model.Item) bool {
	return func(it model.Item) bool { return it.Kind == kind }
}

// purge drops every id in table from the history, if configured.
func (m *InMemory) purge(table map[int]model.Item) {
	if !m.purgeHistory {
		return
	}
	for id := range table {
		m.history.Remove(id)
	}
}

func (m *InMemory) nextID() int {
	m.lastID++
	return m.lastID
}

// checkConflict fails with a *ConflictError if item overlaps any scheduled
// item other than exclude.
func (m *InMemory) checkConflict(item model.Item, exclude int) error {
	existing, hit := m.schedule.Conflict(item, exclude)
	if !hit {
		return nil
	}
	return &ConflictError{Candidate: item.Copy(), Existing: existing}
}

// members resolves the epic's subtask ids through the subtask table.
func (m *InMemory) members(epic model.Item) []model.Item {
	out := make([]model.Item, 0, len(epic.SubTaskIDs))
	for _, id := range epic.SubTaskIDs {
		if st, ok := m.subtasks[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

// refreshEpic recomputes the derived status and window of an epic.
func (m *InMemory) refreshEpic(epicID int) {
	epic, ok := m.epics[epicID]
	if !ok {
		return
	}
	epic.ApplyDerived(m.members(epic))
	m.epics[epicID] = epic
}

// detach removes a subtask id from its epic and refreshes the epic.
func (m *InMemory) detach(epicID, subtaskID int) {
	epic, ok := m.epics[epicID]
	if !ok {
		return
	}
	epic.SubTaskIDs = slices.DeleteFunc(slices.Clone(epic.SubTaskIDs), func(id int) bool { return id == subtaskID })
	m.epics[epicID] = epic
	m.refreshEpic(epicID)
}

// forget drops an id from the schedule and, if configured, the history.
func (m *InMemory) forget(id int) {
	m.schedule.Remove(id)
	if m.purgeHistory {
		m.history.Remove(id)
	}
}
