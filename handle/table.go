package handle

import (
	"sync"

	"github.com/wippyai/fsbridge/errors"
)

// Table is an in-memory ID registry with free-list reuse.
type Table struct {
	entries   []entry
	freeList  []ID
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	tag   Tag
	valid bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 16),
		freeList: make([]ID, 0, 4),
	}
}

// Insert stores a value and returns its ID.
func (t *Table) Insert(tag Tag, value any) (ID, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, errors.Closed(errors.PhaseDispatch, "handle.Table")
	}

	e := entry{
		tag:   tag,
		value: value,
		valid: true,
	}

	var id ID
	if len(t.freeList) > 0 {
		id = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[id-1] = e
	} else {
		t.entries = append(t.entries, e)
		id = ID(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventAttached, ID: id, Tag: tag, Value: value})
	return id, nil
}

// Get retrieves a value by ID.
func (t *Table) Get(id ID) (any, bool) {
	e, ok := t.lookup(id)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetTagged retrieves a value only if it was inserted with the given tag.
func (t *Table) GetTagged(id ID, tag Tag) (any, bool) {
	e, ok := t.lookup(id)
	if !ok || e.tag != tag {
		return nil, false
	}
	return e.value, true
}

func (t *Table) lookup(id ID) (entry, bool) {
	if id == 0 {
		return entry{}, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(id) - 1
	if idx >= len(t.entries) {
		return entry{}, false
	}

	e := t.entries[idx]
	if !e.valid {
		return entry{}, false
	}
	return e, true
}

// Remove drops a value and returns (value, true) if it was live.
func (t *Table) Remove(id ID) (any, bool) {
	return t.remove(id, func(entry) bool { return true })
}

// RemoveTagged drops a value only if it was inserted with the given tag.
// The tag check and the removal happen under one lock, so a freed and
// reissued ID cannot be removed through the wrong tag.
func (t *Table) RemoveTagged(id ID, tag Tag) (any, bool) {
	return t.remove(id, func(e entry) bool { return e.tag == tag })
}

func (t *Table) remove(id ID, match func(entry) bool) (any, bool) {
	if id == 0 {
		return nil, false
	}

	t.mu.Lock()
	idx := int(id) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid || !match(t.entries[idx]) {
		t.mu.Unlock()
		return nil, false
	}
	e := t.entries[idx]
	t.entries[idx] = entry{}
	t.freeList = append(t.freeList, id)
	t.mu.Unlock()

	if d, ok := e.value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDetached, ID: id, Tag: e.tag, Value: e.value})
	return e.value, true
}

// Len returns the number of live IDs.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live IDs until fn returns false.
func (t *Table) Each(fn func(ID, Tag, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(ID(i+1), e.tag, e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Close drops every live value and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := t.entries
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for i, e := range entries {
		if !e.valid {
			continue
		}
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
		t.notify(Event{Type: EventDetached, ID: ID(i + 1), Tag: e.tag, Value: e.value})
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
