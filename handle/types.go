package handle

// ID is an opaque reference to a value in a Table.
// ID 0 is reserved and always invalid.
type ID uint32

// Tag distinguishes the kinds of values stored under an ID.
type Tag uint32

const (
	TagNone Tag = iota
	TagVolume
	TagFlash
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagVolume:
		return "volume"
	case TagFlash:
		return "flash"
	default:
		return "unknown"
	}
}

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventAttached EventType = iota
	EventDetached
)

// Event represents a handle lifecycle event.
type Event struct {
	Value any
	ID    ID
	Tag   Tag
	Type  EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Dropper is optionally implemented by values that need cleanup when their
// ID is removed or the table is closed.
type Dropper interface {
	Drop()
}
