// Package telemetry provides windowed statistics, discharge records, bookmarks and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventElectronAdded EventType = iota
	EventElectronRejected
	EventElectronRemoved
	EventBounce
	EventDischargeStarted
	EventDischargeEnded
	EventReset
)

// String returns the event name used in logs.
func (t EventType) String() string {
	switch t {
	case EventElectronAdded:
		return "electron_added"
	case EventElectronRejected:
		return "electron_rejected"
	case EventElectronRemoved:
		return "electron_removed"
	case EventBounce:
		return "bounce"
	case EventDischargeStarted:
		return "discharge_started"
	case EventDischargeEnded:
		return "discharge_ended"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type       EventType
	Tick       int32
	ElectronID uint32 // for per-electron events
	Count      int    // electrons involved (discharge, reset, bounces)
}

// NewElectronAddedEvent creates an event for a newly added electron.
func NewElectronAddedEvent(tick int32, id uint32) Event {
	return Event{Type: EventElectronAdded, Tick: tick, ElectronID: id, Count: 1}
}

// NewElectronRejectedEvent creates an event for an add refused at capacity.
func NewElectronRejectedEvent(tick int32) Event {
	return Event{Type: EventElectronRejected, Tick: tick, Count: 1}
}

// NewElectronRemovedEvent creates an event for electrons drained into the sink.
func NewElectronRemovedEvent(tick int32, count int) Event {
	return Event{Type: EventElectronRemoved, Tick: tick, Count: count}
}

// NewBounceEvent creates an event for boundary reflections in one tick.
func NewBounceEvent(tick int32, count int) Event {
	return Event{Type: EventBounce, Tick: tick, Count: count}
}

// NewDischargeStartedEvent creates an event for the start of a discharge.
func NewDischargeStartedEvent(tick int32, electrons int) Event {
	return Event{Type: EventDischargeStarted, Tick: tick, Count: electrons}
}

// NewDischargeEndedEvent creates an event for the end of a discharge.
func NewDischargeEndedEvent(tick int32) Event {
	return Event{Type: EventDischargeEnded, Tick: tick}
}

// NewResetEvent creates an event for a reset that cleared the given electrons.
func NewResetEvent(tick int32, cleared int) Event {
	return Event{Type: EventReset, Tick: tick, Count: cleared}
}
