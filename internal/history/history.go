// Package history remembers which items were most recently looked at.
//
// The tracker is deduplicated and unbounded: reading an item again moves it to
// the most recent position instead of adding a second entry, and nothing is
// evicted for size.
package history

import (
	"container/list"

	"github.com/baiirun/taskline/internal/model"
)

// Tracker records item accesses in recency order.
type Tracker interface {
	// Record stores a snapshot of item as the most recent entry.
	Record(item model.Item)
	// Remove drops the entry for id, if any.
	Remove(id int)
	// List returns snapshots oldest first.
	List() []model.Item
}

// InMemory is a Tracker backed by an id index over a doubly linked list, so
// record, move-to-end and remove are all constant time.
type InMemory struct {
	order *list.List            // of model.Item, oldest at Front
	index map[int]*list.Element // item id -> position in order
}

// NewInMemory returns an empty tracker.
func NewInMemory() *InMemory {
	return &InMemory{
		order: list.New(),
		index: make(map[int]*list.Element),
	}
}

// Record appends a copy of item at the tail, unlinking any previous entry for
// the same id first. Unsaved items (ID 0) are ignored.
func (h *InMemory) Record(item model.Item) {
	if item.ID == 0 {
		return
	}
	h.Remove(item.ID)
	h.index[item.ID] = h.order.PushBack(item.Copy())
}

func (h *InMemory) Remove(id int) {
	el, ok := h.index[id]
	if !ok {
		return
	}
	h.order.Remove(el)
	delete(h.index, id)
}

func (h *InMemory) List() []model.Item {
	out := make([]model.Item, 0, h.order.Len())
	for el := h.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(model.Item).Copy())
	}
	return out
}
