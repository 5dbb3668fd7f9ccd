package core

// Event represents a pathfinding request outcome or map change
type Event struct {
	Type      EventType
	Tick      uint64
	RequestID int
	Payload   interface{}
}

type EventType uint16

const (
	EvtSearchDone EventType = iota
	EvtSearchUnreachable
	EvtFieldComposed
	EvtFieldUnreachable
	EvtRequestCancelled
	EvtMapEdited
)

func (t EventType) String() string {
	switch t {
	case EvtSearchDone:
		return "search-done"
	case EvtSearchUnreachable:
		return "search-unreachable"
	case EvtFieldComposed:
		return "field-composed"
	case EvtFieldUnreachable:
		return "field-unreachable"
	case EvtRequestCancelled:
		return "request-cancelled"
	case EvtMapEdited:
		return "map-edited"
	}
	return "unknown"
}

// EventBus dispatches events to listeners
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int {
	return len(eb.queue)
}

// Dispatch processes all queued events. Handlers may emit; those events
// wait for the next Dispatch.
func (eb *EventBus) Dispatch() {
	queue := eb.queue
	eb.queue = nil
	for _, e := range queue {
		if handlers, ok := eb.listeners[e.Type]; ok {
			for _, h := range handlers {
				h(e)
			}
		}
	}
}
