package model

import "time"

// DeriveEpicStatus computes an epic's status from its subtasks.
//
// Rules:
//   - No subtasks: NEW.
//   - Every subtask DONE: DONE.
//   - Every subtask NEW: NEW.
//   - Anything else (an in-progress subtask, or a mix of NEW and DONE): IN_PROGRESS.
func DeriveEpicStatus(subtasks []Item) Status {
	if len(subtasks) == 0 {
		return StatusNew
	}

	var newCount, done int
	for _, st := range subtasks {
		switch st.Status {
		case StatusNew:
			newCount++
		case StatusDone:
			done++
		}
	}

	if done == len(subtasks) {
		return StatusDone
	}
	if newCount == len(subtasks) {
		return StatusNew
	}
	return StatusInProgress
}

// DeriveEpicWindow computes an epic's time window from its subtasks.
// Only subtasks with a start time contribute. With none, every result is zero.
func DeriveEpicWindow(subtasks []Item) (start time.Time, duration time.Duration, end time.Time) {
	for _, st := range subtasks {
		if !st.HasStart() {
			continue
		}
		if start.IsZero() || st.Start.Before(start) {
			start = st.Start
		}
		if e := st.EndTime(); end.IsZero() || e.After(end) {
			end = e
		}
		duration += st.Duration
	}
	return start, duration, end
}

// ApplyDerived recomputes the epic's status and time window in place from the
// given subtasks, which must be the epic's current members.
func (i *Item) ApplyDerived(subtasks []Item) {
	i.Status = DeriveEpicStatus(subtasks)
	i.Start, i.Duration, i.End = DeriveEpicWindow(subtasks)
}
