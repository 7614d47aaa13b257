package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lmontes/melgen/note"
)

// ErrFormat is wrapped by every event decode failure.
var ErrFormat = errors.New("invalid event format")

// noDuration marks the encoded form of an absent explicit duration.
const noDuration = "None"

// Event is one note, rest or chord together with its rhythmic type and an
// optional explicit duration in ticks. Values are immutable once built.
type Event struct {
	Notes []note.Note
	// Type is the rhythmic value as a fraction of a whole note (2/1 for a
	// breve down to 1/64).
	Type Fraction
	// Duration is an explicit tick count; only meaningful when HasDuration
	// is set (grace notes come out of the parser without one).
	Duration    int
	HasDuration bool
}

// New builds an event without an explicit duration. At least one note is
// required.
func New(notes []note.Note, typ Fraction) (Event, error) {
	if len(notes) == 0 {
		return Event{}, fmt.Errorf("event requires at least one note or rest")
	}
	return Event{Notes: notes, Type: typ}, nil
}

// NewWithDuration builds an event carrying an explicit duration in ticks.
func NewWithDuration(notes []note.Note, typ Fraction, ticks int) (Event, error) {
	ev, err := New(notes, typ)
	if err != nil {
		return Event{}, err
	}
	ev.Duration = ticks
	ev.HasDuration = true
	return ev, nil
}

// IsChord reports whether the event holds more than one simultaneous note.
func (e Event) IsChord() bool {
	return len(e.Notes) > 1
}

// Equal reports structural equality.
func (e Event) Equal(o Event) bool {
	if len(e.Notes) != len(o.Notes) {
		return false
	}
	for i := range e.Notes {
		if !e.Notes[i].Equal(o.Notes[i]) {
			return false
		}
	}
	return e.Type == o.Type && e.HasDuration == o.HasDuration &&
		(!e.HasDuration || e.Duration == o.Duration)
}

// DurationTicks converts the event to absolute ticks: the explicit duration
// when present, otherwise the rhythmic type scaled by the tick resolution.
func (e Event) DurationTicks(divisions int) int {
	if e.HasDuration {
		return e.Duration
	}
	return e.Type.Num * divisions / e.Den()
}

func (e Event) Den() int {
	if e.Type.Den == 0 {
		return 1
	}
	return e.Type.Den
}

// String renders the canonical form
//
//	<note1>><note2>>...>><num>/<den>|<duration-or-None>
//
// Notes are joined with a single '>', a double '>>' separates the notes from
// the timing segment. Injective over legal values; used as a table key.
func (e Event) String() string {
	var b strings.Builder
	for i, n := range e.Notes {
		if i > 0 {
			b.WriteByte('>')
		}
		b.WriteString(n.String())
	}
	b.WriteString(">>")
	b.WriteString(strconv.Itoa(e.Type.Num))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(e.Den()))
	b.WriteByte('|')
	if e.HasDuration {
		b.WriteString(strconv.Itoa(e.Duration))
	} else {
		b.WriteString(noDuration)
	}
	return b.String()
}

// Decode is the inverse of String.
func Decode(s string) (Event, error) {
	sep := strings.LastIndex(s, ">>")
	if sep < 0 {
		return Event{}, fmt.Errorf("event %q: missing '>>' separator: %w", s, ErrFormat)
	}
	notesPart, timingPart := s[:sep], s[sep+2:]

	var notes []note.Note
	for _, ns := range strings.Split(notesPart, ">") {
		if ns == "" {
			continue
		}
		n, err := note.Decode(ns)
		if err != nil {
			return Event{}, err
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return Event{}, fmt.Errorf("event %q: no notes: %w", s, ErrFormat)
	}

	fracPart, durPart, ok := strings.Cut(timingPart, "|")
	if !ok {
		return Event{}, fmt.Errorf("event %q: missing '|' in timing: %w", s, ErrFormat)
	}
	typ, err := ParseFraction(fracPart)
	if err != nil {
		return Event{}, fmt.Errorf("event %q: %v: %w", s, err, ErrFormat)
	}

	ev := Event{Notes: notes, Type: typ}
	if durPart != noDuration {
		ticks, err := strconv.Atoi(durPart)
		if err != nil {
			return Event{}, fmt.Errorf("event %q: bad duration %q: %w", s, durPart, ErrFormat)
		}
		ev.Duration = ticks
		ev.HasDuration = true
	}
	return ev, nil
}
