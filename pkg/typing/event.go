// Package typing turns text into the hardware actions needed to type it on an
// annotated layout, compresses single-use modifier holds into one-shot taps,
// and replays action streams back into text.
package typing

import "fmt"

// EventKind is the hardware action of an Event.
type EventKind uint8

const (
	// Tap presses and releases a key.
	Tap EventKind = iota
	// Hold presses a key and keeps it down.
	Hold
	// Release lets go of a held key.
	Release
	// Unknown marks a character the layout cannot type.
	Unknown
)

// Event is one hardware action. ForChar is set on taps that produce a
// character; taps of one-shot modifiers have it clear.
type Event struct {
	Kind    EventKind
	Pos     int
	ForChar bool
}

// TapEvent, HoldEvent, ReleaseEvent and UnknownEvent build events.
func TapEvent(pos int, forChar bool) Event { return Event{Kind: Tap, Pos: pos, ForChar: forChar} }
func HoldEvent(pos int) Event             { return Event{Kind: Hold, Pos: pos} }
func ReleaseEvent(pos int) Event          { return Event{Kind: Release, Pos: pos} }
func UnknownEvent() Event                 { return Event{Kind: Unknown} }

func (e Event) String() string {
	switch e.Kind {
	case Tap:
		if e.ForChar {
			return fmt.Sprintf("Tap(%d)", e.Pos)
		}
		return fmt.Sprintf("Tap(%d, mod)", e.Pos)
	case Hold:
		return fmt.Sprintf("Hold(%d)", e.Pos)
	case Release:
		return fmt.Sprintf("Release(%d)", e.Pos)
	default:
		return "Unknown"
	}
}

// Stream is a forward-only sequence of events.
type Stream interface {
	// Next returns the next event, or false once the stream is exhausted.
	Next() (Event, bool)
}

// Lookahead is a Stream that can inspect and delete events ahead of the
// read position.
type Lookahead interface {
	Stream
	// PeekNth returns the nth upcoming event (0 is the one Next would
	// return) without consuming anything.
	PeekNth(n int) (Event, bool)
	// RemoveNth deletes the nth upcoming event, keeping the relative order
	// of the rest.
	RemoveNth(n int) (Event, bool)
}

// Collect drains a stream into a slice.
func Collect(s Stream) []Event {
	var out []Event
	for {
		ev, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

// SliceStream is a Stream over a fixed list of events.
type SliceStream struct {
	events []Event
}

// FromSlice streams the given events.
func FromSlice(events []Event) *SliceStream { return &SliceStream{events: events} }

func (s *SliceStream) Next() (Event, bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}
