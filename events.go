package feather2d

import (
	"cmp"
	"slices"

	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/constraint"
	"github.com/akmonengine/feather2d/sat"
)

const (
	SENSOR_ENTER EventType = iota
	COLLISION_ENTER
	SENSOR_STAY
	COLLISION_STAY
	SENSOR_EXIT
	COLLISION_EXIT
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case SENSOR_ENTER:
		return "SENSOR_ENTER"
	case COLLISION_ENTER:
		return "COLLISION_ENTER"
	case SENSOR_STAY:
		return "SENSOR_STAY"
	case COLLISION_STAY:
		return "COLLISION_STAY"
	case SENSOR_EXIT:
		return "SENSOR_EXIT"
	case COLLISION_EXIT:
		return "COLLISION_EXIT"
	default:
		return "UNKNOWN"
	}
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Sensor events, for pairs involving at least one sensor
type SensorEnterEvent struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Result sat.CollisionResult
}

func (e SensorEnterEvent) Type() EventType { return SENSOR_ENTER }

type SensorStayEvent struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Result sat.CollisionResult
}

func (e SensorStayEvent) Type() EventType { return SENSOR_STAY }

type SensorExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e SensorExitEvent) Type() EventType { return SENSOR_EXIT }

// Collision events, for pairs of solid bodies
type CollisionEnterEvent struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Result sat.CollisionResult
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Result sat.CollisionResult
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions compares the contacts of this tick with the pairs of the previous one.
// Enter and Stay events follow the contacts order, Exit events the pair IDs order.
func (e *Events) recordCollisions(contacts []*constraint.ElasticContact, previous map[pairKey]*constraint.ElasticContact) {
	if len(e.listeners) == 0 {
		return
	}

	current := make(map[pairKey]bool, len(contacts))
	for _, c := range contacts {
		pair := makePairKey(c.BodyA, c.BodyB)
		current[pair] = true

		_, stay := previous[pair]
		switch {
		case stay && isSensorPair(c):
			e.buffer = append(e.buffer, SensorStayEvent{BodyA: c.BodyA, BodyB: c.BodyB, Result: c.Result})
		case stay:
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: c.BodyA, BodyB: c.BodyB, Result: c.Result})
		case isSensorPair(c):
			e.buffer = append(e.buffer, SensorEnterEvent{BodyA: c.BodyA, BodyB: c.BodyB, Result: c.Result})
		default:
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: c.BodyA, BodyB: c.BodyB, Result: c.Result})
		}
	}

	var exits []pairKey
	for pair := range previous {
		if !current[pair] {
			exits = append(exits, pair)
		}
	}
	slices.SortFunc(exits, func(a, b pairKey) int {
		return cmp.Or(cmp.Compare(a.idA, b.idA), cmp.Compare(a.idB, b.idB))
	})

	for _, pair := range exits {
		c := previous[pair]
		if isSensorPair(c) {
			e.buffer = append(e.buffer, SensorExitEvent{BodyA: c.BodyA, BodyB: c.BodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: c.BodyA, BodyB: c.BodyB})
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
