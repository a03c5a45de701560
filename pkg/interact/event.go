package interact

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// EventKind identifies a pointer event.
type EventKind int

const (
	DragStart EventKind = iota + 1
	DragMove
	DragEnd
	HoverEnter
	HoverExit
)

var kindNames = map[EventKind]string{
	DragStart:  "drag_start",
	DragMove:   "drag_move",
	DragEnd:    "drag_end",
	HoverEnter: "hover_enter",
	HoverExit:  "hover_exit",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidEvent, "unknown event kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a kind name such as "drag_move".
func (k *EventKind) UnmarshalText(text []byte) error {
	k2, err := ParseEventKind(string(text))
	if err != nil {
		return err
	}
	*k = k2
	return nil
}

// ParseEventKind parses a kind name. Hyphens are accepted for underscores.
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidEvent, "unknown event kind %q", s)
}

// Event is a single pointer event on a node. X and Y are only used by
// DragMove.
type Event struct {
	Kind EventKind `json:"kind"`
	Node string    `json:"node"`
	X    float64   `json:"x,omitempty"`
	Y    float64   `json:"y,omitempty"`
}

// Queue applies events to a drag controller and a highlighter in arrival
// order. Either controller may be nil, in which case its events are dropped.
type Queue struct {
	drag      *Drag
	highlight *Highlighter
	pending   []Event
}

// NewQueue creates an empty queue.
func NewQueue(drag *Drag, highlight *Highlighter) *Queue {
	return &Queue{drag: drag, highlight: highlight}
}

// Push appends events.
func (q *Queue) Push(events ...Event) {
	q.pending = append(q.pending, events...)
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.pending) }

// Drain applies every pending event in order and empties the queue. Events
// that fail (a stale move, an unknown node) are skipped; their errors are
// joined into the result.
func (q *Queue) Drain() error {
	events := q.pending
	q.pending = nil

	var errList []error
	for _, ev := range events {
		if err := q.Apply(ev); err != nil {
			errList = append(errList, fmt.Errorf("%s %s: %w", ev.Kind, ev.Node, err))
		}
	}
	return errors.Join(errList...)
}

// Apply dispatches a single event immediately.
func (q *Queue) Apply(ev Event) error {
	switch ev.Kind {
	case DragStart, DragMove, DragEnd:
		if q.drag == nil {
			return nil
		}
		switch ev.Kind {
		case DragStart:
			return q.drag.Start(ev.Node)
		case DragMove:
			return q.drag.Move(ev.Node, ev.X, ev.Y)
		default:
			return q.drag.End(ev.Node)
		}
	case HoverEnter:
		if q.highlight == nil {
			return nil
		}
		return q.highlight.Enter(ev.Node)
	case HoverExit:
		if q.highlight != nil {
			q.highlight.Exit(ev.Node)
		}
		return nil
	default:
		return errs.New(errs.ErrCodeInvalidEvent, "unknown event kind %d", int(ev.Kind))
	}
}
