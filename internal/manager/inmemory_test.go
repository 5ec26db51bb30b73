package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/baiirun/taskline/internal/model"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestManager(t *testing.T) *InMemory {
	t.Helper()
	return NewInMemory(DefaultOptions())
}

func mustCreate(t *testing.T, m Manager, item model.Item) model.Item {
	t.Helper()
	created, err := m.Create(item)
	if err != nil {
		t.Fatalf("failed to create %s %q: %v", item.Kind, item.Title, err)
	}
	return created
}

func historyIDs(m Manager) []int {
	var ids []int
	for _, it := range m.History() {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestCreate_AssignsUniqueIncreasingIDs(t *testing.T) {
	m := setupTestManager(t)

	task := model.NewTask("Task", "", 0, time.Time{})
	task.ID = 500 // ignored
	a := mustCreate(t, m, task)
	e := mustCreate(t, m, model.NewEpic("Epic", ""))
	s := mustCreate(t, m, model.NewSubTask("Sub", "", e.ID, 0, time.Time{}))

	if a.ID == 500 {
		t.Error("create should ignore the input id")
	}
	if !(a.ID < e.ID && e.ID < s.ID) {
		t.Errorf("ids not increasing: task=%d epic=%d subtask=%d", a.ID, e.ID, s.ID)
	}
}

func TestCreate_ReturnsCopy(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	mustCreate(t, m, model.NewSubTask("Sub", "", epic.ID, 0, time.Time{}))

	got, err := m.Epic(epic.ID)
	if err != nil {
		t.Fatalf("failed to get epic: %v", err)
	}
	got.Title = "Changed"
	got.SubTaskIDs[0] = 999

	again, _ := m.Epic(epic.ID)
	if again.Title != "Epic" {
		t.Errorf("title = %q, want %q", again.Title, "Epic")
	}
	if again.SubTaskIDs[0] == 999 {
		t.Error("mutating a returned epic changed stored subtask ids")
	}
}

func TestCreate_InputNotRetained(t *testing.T) {
	m := setupTestManager(t)

	input := model.NewTask("Task", "", 0, time.Time{})
	created := mustCreate(t, m, input)
	input.Title = "mutated after create"

	got, _ := m.Task(created.ID)
	if got.Title != "Task" {
		t.Errorf("title = %q, want %q", got.Title, "Task")
	}
}

func TestCreate_InvalidItem(t *testing.T) {
	m := setupTestManager(t)

	tests := []struct {
		name string
		item model.Item
	}{
		{"unknown kind", model.Item{Kind: "story", Title: "x"}},
		{"unknown status", model.Item{Kind: model.KindTask, Title: "x", Status: "BLOCKED"}},
		{"negative duration", model.Item{Kind: model.KindTask, Title: "x", Duration: -time.Minute}},
		{"sub-minute duration", model.Item{Kind: model.KindTask, Title: "x", Duration: 45 * time.Second}},
		{"fractional minutes", model.Item{Kind: model.KindSubTask, Title: "x", EpicID: 1, Duration: 90 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(tt.item)
			if !errors.Is(err, ErrInvalidItem) {
				t.Errorf("err = %v, want ErrInvalidItem", err)
			}
		})
	}
	if len(m.Tasks()) != 0 {
		t.Errorf("expected no stored tasks, got %d", len(m.Tasks()))
	}
}

func TestCreate_DefaultsStatus(t *testing.T) {
	m := setupTestManager(t)

	got := mustCreate(t, m, model.Item{Kind: model.KindTask, Title: "x"})
	if got.Status != model.StatusNew {
		t.Errorf("status = %q, want %q", got.Status, model.StatusNew)
	}
}

func TestCreateSubTask_UnknownEpic(t *testing.T) {
	m := setupTestManager(t)

	_, err := m.Create(model.NewSubTask("Orphan", "", 42, 0, time.Time{}))
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}
	if len(m.SubTasks()) != 0 {
		t.Error("orphan subtask was stored")
	}

	// A task id is not an epic.
	task := mustCreate(t, m, model.NewTask("Task", "", 0, time.Time{}))
	if _, err := m.Create(model.NewSubTask("Orphan", "", task.ID, 0, time.Time{})); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference", err)
	}
}

func TestTimeConflictScenario(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 30*time.Minute, base))

	_, err := m.Create(model.NewTask("B", "", 5*time.Minute, base.Add(10*time.Minute)))
	if !errors.Is(err, ErrTimeConflict) {
		t.Fatalf("err = %v, want ErrTimeConflict", err)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if conflict.Existing.ID != a.ID {
		t.Errorf("conflicting id = %d, want %d", conflict.Existing.ID, a.ID)
	}

	c := mustCreate(t, m, model.NewTask("C", "", 10*time.Minute, base.Add(30*time.Minute)))

	prio := m.PrioritizedTasks()
	if len(prio) != 2 || prio[0].ID != a.ID || prio[1].ID != c.ID {
		t.Errorf("prioritized = %v, want [A C]", prio)
	}
	if len(m.Tasks()) != 2 {
		t.Errorf("tasks = %d, want 2", len(m.Tasks()))
	}
}

func TestTimeConflict_LeavesStateUnchanged(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	a := mustCreate(t, m, model.NewTask("A", "", time.Hour, base))
	if _, err := m.Task(a.ID); err != nil {
		t.Fatal(err)
	}
	before := m.Snapshot()
	beforeHistory := historyIDs(m)

	_, err := m.Create(model.NewSubTask("Clash", "", epic.ID, 10*time.Minute, base.Add(5*time.Minute)))
	if !errors.Is(err, ErrTimeConflict) {
		t.Fatalf("err = %v, want ErrTimeConflict", err)
	}

	after := m.Snapshot()
	if after.Len() != before.Len() {
		t.Errorf("item count changed: %d -> %d", before.Len(), after.Len())
	}
	if len(after.Epics[0].SubTaskIDs) != 0 {
		t.Error("epic gained a subtask from a rejected create")
	}
	if got := len(m.PrioritizedTasks()); got != 1 {
		t.Errorf("scheduled = %d, want 1", got)
	}
	if got := historyIDs(m); len(got) != len(beforeHistory) {
		t.Errorf("history changed: %v -> %v", beforeHistory, got)
	}

	// A rejected create doesn't burn an id.
	next := mustCreate(t, m, model.NewTask("Next", "", 0, time.Time{}))
	if next.ID != a.ID+1 {
		t.Errorf("next id = %d, want %d", next.ID, a.ID+1)
	}
}

func TestUnscheduledItemsNeverConflict(t *testing.T) {
	m := setupTestManager(t)

	mustCreate(t, m, model.NewTask("A", "", time.Hour, base))
	mustCreate(t, m, model.NewTask("B", "", time.Hour, time.Time{}))
	mustCreate(t, m, model.NewTask("C", "", time.Hour, time.Time{}))

	if got := len(m.PrioritizedTasks()); got != 1 {
		t.Errorf("scheduled = %d, want 1", got)
	}
}

func TestEpicStatusScenario(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	if epic.Status != model.StatusNew || epic.HasStart() || !epic.EndTime().IsZero() {
		t.Fatalf("new epic = %+v, want NEW with no window", epic)
	}

	s1 := model.NewSubTask("S1", "", epic.ID, 0, time.Time{})
	s1.Status = model.StatusDone
	s1 = mustCreate(t, m, s1)
	mustCreate(t, m, model.NewSubTask("S2", "", epic.ID, 0, time.Time{}))

	got, _ := m.Epic(epic.ID)
	if got.Status != model.StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, model.StatusInProgress)
	}

	if err := m.RemoveSubTask(s1.ID); err != nil {
		t.Fatalf("failed to remove subtask: %v", err)
	}
	got, _ = m.Epic(epic.ID)
	if got.Status != model.StatusNew {
		t.Errorf("status = %q, want %q", got.Status, model.StatusNew)
	}
	if len(got.SubTaskIDs) != 1 {
		t.Errorf("subtask ids = %v, want one entry", got.SubTaskIDs)
	}
}

func TestEpicWindowFollowsSubTasks(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	mustCreate(t, m, model.NewSubTask("late", "", epic.ID, 30*time.Minute, base.Add(2*time.Hour)))
	early := mustCreate(t, m, model.NewSubTask("early", "", epic.ID, 15*time.Minute, base))

	got, _ := m.Epic(epic.ID)
	if !got.Start.Equal(base) {
		t.Errorf("start = %v, want %v", got.Start, base)
	}
	if got.Duration != 45*time.Minute {
		t.Errorf("duration = %v, want 45m", got.Duration)
	}
	if want := base.Add(150 * time.Minute); !got.EndTime().Equal(want) {
		t.Errorf("end = %v, want %v", got.EndTime(), want)
	}

	// Moving the early subtask later shifts the epic start.
	early.Start = base.Add(time.Hour)
	if _, err := m.Update(early); err != nil {
		t.Fatalf("failed to update subtask: %v", err)
	}
	got, _ = m.Epic(epic.ID)
	if !got.Start.Equal(base.Add(time.Hour)) {
		t.Errorf("start after update = %v, want %v", got.Start, base.Add(time.Hour))
	}
}

func TestEpicsAreNeverScheduled(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := mustCreate(t, m, model.NewSubTask("S", "", epic.ID, time.Hour, base))

	prio := m.PrioritizedTasks()
	if len(prio) != 1 || prio[0].ID != st.ID {
		t.Errorf("prioritized = %v, want only the subtask", prio)
	}
}

func TestUpdateTask(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 30*time.Minute, base))

	// Shifting within its own old interval is not a conflict with itself.
	a.Start = base.Add(10 * time.Minute)
	a.Status = model.StatusInProgress
	updated, err := m.Update(a)
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusInProgress)
	}

	prio := m.PrioritizedTasks()
	if len(prio) != 1 || !prio[0].Start.Equal(base.Add(10*time.Minute)) {
		t.Errorf("prioritized = %v, want single entry at new start", prio)
	}
}

func TestUpdateTask_ConflictKeepsOldState(t *testing.T) {
	m := setupTestManager(t)

	mustCreate(t, m, model.NewTask("A", "", 30*time.Minute, base))
	b := mustCreate(t, m, model.NewTask("B", "", 30*time.Minute, base.Add(time.Hour)))

	moved := b
	moved.Start = base.Add(15 * time.Minute)
	moved.Title = "B moved"
	if _, err := m.Update(moved); !errors.Is(err, ErrTimeConflict) {
		t.Fatalf("err = %v, want ErrTimeConflict", err)
	}

	got, _ := m.Task(b.ID)
	if got.Title != "B" || !got.Start.Equal(b.Start) {
		t.Errorf("stored task changed on rejected update: %+v", got)
	}
	prio := m.PrioritizedTasks()
	if len(prio) != 2 || !prio[1].Start.Equal(b.Start) {
		t.Errorf("schedule changed on rejected update: %v", prio)
	}
}

func TestUpdateTask_Unschedule(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 30*time.Minute, base))
	a.Start = time.Time{}
	if _, err := m.Update(a); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if got := len(m.PrioritizedTasks()); got != 0 {
		t.Errorf("scheduled = %d, want 0", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))

	tests := []struct {
		name string
		item model.Item
	}{
		{"task", model.Item{ID: 99, Kind: model.KindTask}},
		{"epic", model.Item{ID: 99, Kind: model.KindEpic}},
		{"subtask", model.Item{ID: 99, Kind: model.KindSubTask, EpicID: epic.ID}},
		{"wrong kind", model.Item{ID: epic.ID, Kind: model.KindTask}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Update(tt.item); !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUpdateEpic_OnlyTitleAndDescription(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := model.NewSubTask("S", "", epic.ID, time.Hour, base)
	st.Status = model.StatusDone
	mustCreate(t, m, st)

	forged := model.NewEpic("Renamed", "new description")
	forged.ID = epic.ID
	forged.Status = model.StatusNew
	forged.SubTaskIDs = nil

	updated, err := m.Update(forged)
	if err != nil {
		t.Fatalf("failed to update epic: %v", err)
	}
	if updated.Title != "Renamed" || updated.Description != "new description" {
		t.Errorf("title/description not applied: %+v", updated)
	}
	if updated.Status != model.StatusDone {
		t.Errorf("status = %q, want derived %q", updated.Status, model.StatusDone)
	}
	if len(updated.SubTaskIDs) != 1 {
		t.Errorf("subtask ids = %v, want one entry", updated.SubTaskIDs)
	}
}

func TestUpdateSubTask_StatusRederivesEpic(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := mustCreate(t, m, model.NewSubTask("S", "", epic.ID, 0, time.Time{}))

	st.Status = model.StatusDone
	if _, err := m.Update(st); err != nil {
		t.Fatalf("failed to update subtask: %v", err)
	}

	got, _ := m.Epic(epic.ID)
	if got.Status != model.StatusDone {
		t.Errorf("status = %q, want %q", got.Status, model.StatusDone)
	}
	if len(got.SubTaskIDs) != 1 {
		t.Errorf("subtask ids = %v, want [%d]", got.SubTaskIDs, st.ID)
	}
}

func TestUpdateSubTask_MoveBetweenEpics(t *testing.T) {
	m := setupTestManager(t)

	from := mustCreate(t, m, model.NewEpic("From", ""))
	to := mustCreate(t, m, model.NewEpic("To", ""))
	st := model.NewSubTask("S", "", from.ID, 30*time.Minute, base)
	st.Status = model.StatusDone
	st = mustCreate(t, m, st)

	st.EpicID = to.ID
	if _, err := m.Update(st); err != nil {
		t.Fatalf("failed to move subtask: %v", err)
	}

	gotFrom, _ := m.Epic(from.ID)
	gotTo, _ := m.Epic(to.ID)

	if len(gotFrom.SubTaskIDs) != 0 || gotFrom.Status != model.StatusNew || gotFrom.HasStart() {
		t.Errorf("old epic not reset: %+v", gotFrom)
	}
	if len(gotTo.SubTaskIDs) != 1 || gotTo.SubTaskIDs[0] != st.ID {
		t.Errorf("new epic subtask ids = %v, want [%d]", gotTo.SubTaskIDs, st.ID)
	}
	if gotTo.Status != model.StatusDone || !gotTo.Start.Equal(base) {
		t.Errorf("new epic not derived: %+v", gotTo)
	}

	subs, err := m.SubTasksByEpic(to.ID)
	if err != nil || len(subs) != 1 || subs[0].EpicID != to.ID {
		t.Errorf("SubTasksByEpic = %v, %v", subs, err)
	}
}

func TestUpdateSubTask_UnknownEpic(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := mustCreate(t, m, model.NewSubTask("S", "", epic.ID, 0, time.Time{}))

	st.EpicID = 1234
	if _, err := m.Update(st); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}

	got, _ := m.SubTask(st.ID)
	if got.EpicID != epic.ID {
		t.Errorf("epic id = %d, want %d", got.EpicID, epic.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	m := setupTestManager(t)

	task := mustCreate(t, m, model.NewTask("Task", "", 0, time.Time{}))

	if _, err := m.Task(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Task(999) err = %v, want ErrNotFound", err)
	}
	if _, err := m.Epic(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Epic(task id) err = %v, want ErrNotFound", err)
	}
	if _, err := m.SubTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("SubTask(task id) err = %v, want ErrNotFound", err)
	}
	if _, err := m.SubTasksByEpic(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("SubTasksByEpic(task id) err = %v, want ErrNotFound", err)
	}
	if len(m.History()) != 0 {
		t.Errorf("failed lookups recorded history: %v", historyIDs(m))
	}
}

func TestHistory_RepeatedAccess(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 0, time.Time{}))
	b := mustCreate(t, m, model.NewTask("B", "", 0, time.Time{}))

	m.Task(a.ID)
	m.Task(b.ID)
	m.Task(a.ID)
	m.Task(a.ID)

	got := historyIDs(m)
	if len(got) != 2 || got[0] != b.ID || got[1] != a.ID {
		t.Errorf("history = %v, want [%d %d]", got, b.ID, a.ID)
	}
}

func TestHistory_KeepsSnapshotAtAccessTime(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 0, time.Time{}))
	m.Task(a.ID)

	a.Title = "A renamed"
	if _, err := m.Update(a); err != nil {
		t.Fatal(err)
	}

	h := m.History()
	if h[0].Title != "A" {
		t.Errorf("history title = %q, want %q", h[0].Title, "A")
	}
}

func TestRemoveEpic_Cascades(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	other := mustCreate(t, m, model.NewEpic("Other", ""))
	s1 := mustCreate(t, m, model.NewSubTask("S1", "", epic.ID, 30*time.Minute, base))
	s2 := mustCreate(t, m, model.NewSubTask("S2", "", epic.ID, 30*time.Minute, base.Add(time.Hour)))
	keep := mustCreate(t, m, model.NewSubTask("Keep", "", other.ID, 30*time.Minute, base.Add(2*time.Hour)))

	m.SubTask(s1.ID)
	m.SubTask(s2.ID)
	m.Epic(epic.ID)
	m.SubTask(keep.ID)

	if err := m.RemoveEpic(epic.ID); err != nil {
		t.Fatalf("failed to remove epic: %v", err)
	}

	subs := m.SubTasks()
	if len(subs) != 1 || subs[0].ID != keep.ID {
		t.Errorf("subtasks = %v, want only %d", subs, keep.ID)
	}
	prio := m.PrioritizedTasks()
	if len(prio) != 1 || prio[0].ID != keep.ID {
		t.Errorf("prioritized = %v, want only %d", prio, keep.ID)
	}
	if got := historyIDs(m); len(got) != 1 || got[0] != keep.ID {
		t.Errorf("history = %v, want [%d]", got, keep.ID)
	}
	if _, err := m.Epic(epic.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("epic still present: %v", err)
	}

	// Freed time slots can be reused.
	mustCreate(t, m, model.NewTask("Reuse", "", 30*time.Minute, base))
}

func TestRemove_WithoutHistoryPurge(t *testing.T) {
	m := NewInMemory(Options{PurgeHistoryOnDelete: false})

	a := mustCreate(t, m, model.NewTask("A", "", 0, time.Time{}))
	m.Task(a.ID)
	if err := m.RemoveTask(a.ID); err != nil {
		t.Fatal(err)
	}

	if got := historyIDs(m); len(got) != 1 || got[0] != a.ID {
		t.Errorf("history = %v, want [%d]", got, a.ID)
	}
}

func TestRemove_NotFound(t *testing.T) {
	m := setupTestManager(t)

	for name, remove := range map[string]func(int) error{
		"task":    m.RemoveTask,
		"epic":    m.RemoveEpic,
		"subtask": m.RemoveSubTask,
	} {
		t.Run(name, func(t *testing.T) {
			if err := remove(7); !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRemoveTask_FreesSchedule(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", time.Hour, base))
	m.Task(a.ID)
	if err := m.RemoveTask(a.ID); err != nil {
		t.Fatal(err)
	}

	if len(m.PrioritizedTasks()) != 0 || len(m.History()) != 0 {
		t.Error("removed task still scheduled or in history")
	}
	mustCreate(t, m, model.NewTask("B", "", time.Hour, base))
}

func TestClearTasks(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", time.Hour, base))
	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := mustCreate(t, m, model.NewSubTask("S", "", epic.ID, time.Hour, base.Add(time.Hour)))
	m.Task(a.ID)
	m.SubTask(st.ID)

	if err := m.ClearTasks(); err != nil {
		t.Fatal(err)
	}

	if len(m.Tasks()) != 0 {
		t.Error("tasks not cleared")
	}
	prio := m.PrioritizedTasks()
	if len(prio) != 1 || prio[0].ID != st.ID {
		t.Errorf("prioritized = %v, want only subtask", prio)
	}
	if got := historyIDs(m); len(got) != 1 || got[0] != st.ID {
		t.Errorf("history = %v, want [%d]", got, st.ID)
	}
}

func TestClearSubTasks_ResetsEpics(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	st := model.NewSubTask("S", "", epic.ID, time.Hour, base)
	st.Status = model.StatusDone
	mustCreate(t, m, st)
	task := mustCreate(t, m, model.NewTask("T", "", time.Hour, base.Add(2*time.Hour)))

	if err := m.ClearSubTasks(); err != nil {
		t.Fatal(err)
	}

	if len(m.SubTasks()) != 0 {
		t.Error("subtasks not cleared")
	}
	got, _ := m.Epic(epic.ID)
	if len(got.SubTaskIDs) != 0 || got.Status != model.StatusNew || got.HasStart() || got.Duration != 0 {
		t.Errorf("epic not reset: %+v", got)
	}
	prio := m.PrioritizedTasks()
	if len(prio) != 1 || prio[0].ID != task.ID {
		t.Errorf("prioritized = %v, want only task", prio)
	}
}

func TestClearEpics_RemovesSubTasks(t *testing.T) {
	m := setupTestManager(t)

	epic := mustCreate(t, m, model.NewEpic("Epic", ""))
	mustCreate(t, m, model.NewSubTask("S", "", epic.ID, time.Hour, base))
	mustCreate(t, m, model.NewTask("T", "", time.Hour, base.Add(2*time.Hour)))
	m.Epic(epic.ID)

	if err := m.ClearEpics(); err != nil {
		t.Fatal(err)
	}

	if len(m.Epics()) != 0 || len(m.SubTasks()) != 0 {
		t.Error("epics or subtasks not cleared")
	}
	if len(m.Tasks()) != 1 || len(m.PrioritizedTasks()) != 1 {
		t.Error("standalone task should survive ClearEpics")
	}
	if len(m.History()) != 0 {
		t.Errorf("history = %v, want empty", historyIDs(m))
	}
}

func TestIDsNotReusedAfterRemove(t *testing.T) {
	m := setupTestManager(t)

	a := mustCreate(t, m, model.NewTask("A", "", 0, time.Time{}))
	if err := m.RemoveTask(a.ID); err != nil {
		t.Fatal(err)
	}
	b := mustCreate(t, m, model.NewTask("B", "", 0, time.Time{}))
	if b.ID == a.ID {
		t.Errorf("id %d was reused", a.ID)
	}
}

func TestListsOrderedByID(t *testing.T) {
	m := setupTestManager(t)

	for i := 0; i < 5; i++ {
		mustCreate(t, m, model.NewTask("T", "", 0, time.Time{}))
	}
	tasks := m.Tasks()
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID >= tasks[i].ID {
			t.Fatalf("tasks not ordered by id: %d before %d", tasks[i-1].ID, tasks[i].ID)
		}
	}
}
