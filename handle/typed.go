package handle

// Typed gives type-safe access to the values of one tag in a shared Table.
type Typed[T any] struct {
	table *Table
	tag   Tag
}

// NewTyped binds a tag of table to the value type T.
func NewTyped[T any](table *Table, tag Tag) *Typed[T] {
	return &Typed[T]{table: table, tag: tag}
}

// Insert adds a value and returns its ID.
func (t *Typed[T]) Insert(value T) (ID, error) {
	return t.table.Insert(t.tag, value)
}

// Get retrieves a value by ID.
// IDs issued under another tag do not resolve.
func (t *Typed[T]) Get(id ID) (T, bool) {
	var zero T
	v, ok := t.table.GetTagged(id, t.tag)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Remove drops a value and returns it.
func (t *Typed[T]) Remove(id ID) (T, bool) {
	var zero T
	v, ok := t.table.RemoveTagged(id, t.tag)
	if !ok {
		return zero, false
	}
	typed, _ := v.(T)
	return typed, true
}

// Len returns the number of live values with this tag.
func (t *Typed[T]) Len() int {
	n := 0
	t.table.Each(func(_ ID, tag Tag, _ any) bool {
		if tag == t.tag {
			n++
		}
		return true
	})
	return n
}

// Table returns the underlying table.
func (t *Typed[T]) Table() *Table {
	return t.table
}
