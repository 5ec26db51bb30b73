// Package schedule keeps timed items ordered by start time and rejects
// intervals that overlap.
package schedule

import (
	"github.com/google/btree"

	"github.com/baiirun/taskline/internal/model"
)

const degree = 8

// Overlaps reports whether the half-open intervals of a and b intersect.
// Intervals that only touch at an endpoint do not overlap. Unscheduled items
// never overlap anything.
func Overlaps(a, b model.Item) bool {
	if !a.HasStart() || !b.HasStart() {
		return false
	}
	return a.Start.Before(b.EndTime()) && b.Start.Before(a.EndTime())
}

func less(a, b model.Item) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.ID < b.ID
}

// Schedule is an ordered set of timed items keyed by id.
type Schedule struct {
	tree *btree.BTreeG[model.Item]
	byID map[int]model.Item // the exact key stored in tree, for removal by id
}

// New returns an empty schedule.
func New() *Schedule {
	return &Schedule{
		tree: btree.NewG(degree, less),
		byID: make(map[int]model.Item),
	}
}

// Insert adds or replaces the entry for item.ID. Items without a start time
// are not scheduled; any previous entry for the id is still dropped.
func (s *Schedule) Insert(item model.Item) {
	s.Remove(item.ID)
	if !item.HasStart() {
		return
	}
	c := item.Copy()
	s.tree.ReplaceOrInsert(c)
	s.byID[c.ID] = c
}

// Remove drops the entry for id. It's a no-op for unknown ids.
func (s *Schedule) Remove(id int) {
	stored, ok := s.byID[id]
	if !ok {
		return
	}
	s.tree.Delete(stored)
	delete(s.byID, id)
}

// Conflict returns the first scheduled item that overlaps candidate, skipping
// the entry with id exclude (0 skips nothing). Only entries starting before
// the candidate ends are visited.
func (s *Schedule) Conflict(candidate model.Item, exclude int) (model.Item, bool) {
	if !candidate.HasStart() {
		return model.Item{}, false
	}

	var found model.Item
	var hit bool
	pivot := model.Item{Start: candidate.EndTime(), ID: -1}
	s.tree.AscendLessThan(pivot, func(it model.Item) bool {
		if exclude != 0 && it.ID == exclude {
			return true
		}
		if Overlaps(it, candidate) {
			found, hit = it.Copy(), true
			return false
		}
		return true
	})
	return found, hit
}

// Ordered returns every scheduled item in ascending start time.
func (s *Schedule) Ordered() []model.Item {
	out := make([]model.Item, 0, s.tree.Len())
	s.tree.Ascend(func(it model.Item) bool {
		out = append(out, it.Copy())
		return true
	})
	return out
}

// RemoveIf drops every entry for which drop returns true.
func (s *Schedule) RemoveIf(drop func(model.Item) bool) {
	for id, it := range s.byID {
		if drop(it) {
			s.tree.Delete(it)
			delete(s.byID, id)
		}
	}
}
