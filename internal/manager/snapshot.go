package manager

import (
	"fmt"

	"github.com/baiirun/taskline/internal/model"
	"github.com/baiirun/taskline/internal/schedule"
)

// Snapshot returns copies of every stored item grouped by kind, and the
// history as ids.
func (m *InMemory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	epics := sortedCopies(m.epics)
	subtasks := make([]model.Item, 0, len(m.subtasks))
	for _, epic := range epics {
		subtasks = append(subtasks, model.CopyAll(m.members(epic))...)
	}

	var hist []int
	for _, it := range m.history.List() {
		hist = append(hist, it.ID)
	}

	return Snapshot{
		Tasks:    sortedCopies(m.tasks),
		Epics:    epics,
		SubTasks: subtasks,
		History:  hist,
	}
}

// Restore replaces the manager's contents with snap, keeping the ids it
// carries. Subtasks are attached to their epics in snapshot order and epic
// state is derived again rather than trusted. The id counter moves past the
// highest id seen. The history is replaced by snap.History; ids that name no
// restored item are skipped.
//
// The whole snapshot is validated first; on error nothing changes.
func (m *InMemory) Restore(snap Snapshot) error {
	tasks := make(map[int]model.Item, len(snap.Tasks))
	epics := make(map[int]model.Item, len(snap.Epics))
	subtasks := make(map[int]model.Item, len(snap.SubTasks))
	sched := schedule.New()
	seen := make(map[int]model.Kind, snap.Len())
	maxID := 0

	admit := func(item model.Item, kind model.Kind) (model.Item, error) {
		item = item.Copy()
		if item.Kind != kind {
			return item, invalidf("item %d has kind %q in the %s group", item.ID, item.Kind, kind)
		}
		if err := validate(&item); err != nil {
			return item, fmt.Errorf("item %d: %w", item.ID, err)
		}
		if item.ID <= 0 {
			return item, invalidf("%s %q has no id", kind, item.Title)
		}
		if prev, dup := seen[item.ID]; dup {
			return item, invalidf("id %d used by both a %s and a %s", item.ID, prev, kind)
		}
		seen[item.ID] = kind
		maxID = max(maxID, item.ID)
		return item, nil
	}

	place := func(item model.Item) error {
		if existing, hit := sched.Conflict(item, 0); hit {
			return &ConflictError{Candidate: item, Existing: existing}
		}
		sched.Insert(item)
		return nil
	}

	for _, t := range snap.Tasks {
		t, err := admit(t, model.KindTask)
		if err != nil {
			return err
		}
		t.EpicID, t.SubTaskIDs = 0, nil
		if err := place(t); err != nil {
			return err
		}
		tasks[t.ID] = t
	}

	for _, e := range snap.Epics {
		e, err := admit(e, model.KindEpic)
		if err != nil {
			return err
		}
		e.EpicID, e.SubTaskIDs = 0, nil
		epics[e.ID] = e
	}

	for _, st := range snap.SubTasks {
		st, err := admit(st, model.KindSubTask)
		if err != nil {
			return err
		}
		epic, ok := epics[st.EpicID]
		if !ok {
			return fmt.Errorf("subtask %d: %w", st.ID, missingEpic(st.EpicID))
		}
		st.SubTaskIDs = nil
		if err := place(st); err != nil {
			return err
		}
		subtasks[st.ID] = st
		epic.SubTaskIDs = append(epic.SubTaskIDs, st.ID)
		epics[epic.ID] = epic
	}

	for id, epic := range epics {
		members := make([]model.Item, 0, len(epic.SubTaskIDs))
		for _, stID := range epic.SubTaskIDs {
			members = append(members, subtasks[stID])
		}
		epic.ApplyDerived(members)
		epics[id] = epic
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range m.history.List() {
		m.history.Remove(it.ID)
	}
	for _, id := range snap.History {
		for _, table := range []map[int]model.Item{tasks, epics, subtasks} {
			if it, ok := table[id]; ok {
				m.history.Record(it)
				break
			}
		}
	}
	m.tasks, m.epics, m.subtasks = tasks, epics, subtasks
	m.schedule = sched
	m.lastID = max(m.lastID, maxID)
	return nil
}
