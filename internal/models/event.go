package models

import "fmt"

// EventKind names a change in an aggregate's partition lists.
type EventKind string

const (
	EventAdded     EventKind = "added"
	EventRemoved   EventKind = "removed"
	EventRestored  EventKind = "restored"
	EventEdited    EventKind = "edited"
	EventReordered EventKind = "reordered"
	EventCleared   EventKind = "cleared"
)

// Event is published by a Workout or Routine after a successful mutation.
type Event struct {
	Kind          EventKind
	ItemType      string // "Exercise" or "Workout"
	Item          string
	ContainerType string // "workout" or "routine"
	Container     string
}

// String renders the event as a user-facing notification, e.g.
// `Exercise "Bench Press" restored to workout "Push Day".`
func (ev Event) String() string {
	switch ev.Kind {
	case EventAdded, EventRestored:
		return fmt.Sprintf("%s \"%s\" %s to %s \"%s\".", ev.ItemType, ev.Item, ev.Kind, ev.ContainerType, ev.Container)
	case EventRemoved:
		return fmt.Sprintf("%s \"%s\" removed from %s \"%s\".", ev.ItemType, ev.Item, ev.ContainerType, ev.Container)
	case EventEdited:
		return fmt.Sprintf("%s \"%s\" edited in %s \"%s\".", ev.ItemType, ev.Item, ev.ContainerType, ev.Container)
	case EventReordered:
		return fmt.Sprintf("%s \"%s\" moved in %s \"%s\".", ev.ItemType, ev.Item, ev.ContainerType, ev.Container)
	case EventCleared:
		return fmt.Sprintf("All workouts cleared from %s \"%s\".", ev.ContainerType, ev.Container)
	}
	return fmt.Sprintf("%s \"%s\" %s in %s \"%s\".", ev.ItemType, ev.Item, ev.Kind, ev.ContainerType, ev.Container)
}

// Listener receives events. It runs synchronously inside the mutating call.
type Listener func(Event)
