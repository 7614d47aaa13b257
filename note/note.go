package note

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat is wrapped by every decode failure in this package.
var ErrFormat = errors.New("invalid note format")

// Rest is the name marker for a silence.
const Rest = "R"

// accidentals ordered for greedy longest-prefix matching ("bb" before "b").
var accidentals = []string{"bb", "x", "#", "b"}

var noteBase = map[string]int{
	"C": 0,
	"D": 2,
	"E": 4,
	"F": 5,
	"G": 7,
	"A": 9,
	"B": 11,
}

var accidentalOffset = map[string]int{
	"":   0,
	"#":  1,
	"x":  2,
	"b":  -1,
	"bb": -2,
}

// Clef identifies the clef in effect when a note was read: its sign
// (G, F, C, ...) and the staff line it sits on.
type Clef struct {
	Sign string
	Line int
}

// Note is a single pitch or rest, without timing. Values are built once by
// the score parser or by Decode and never mutated afterwards.
type Note struct {
	Clef       Clef
	Name       string // A..G, or R for a rest
	Accidental string // "", "#", "b", "x" or "bb"
	Octave     int    // unused for rests
	// Articulations holds marker tokens such as "staccato"; nil when none.
	Articulations []string
}

// New normalizes the articulation list (drops empty tokens, nil when empty)
// so that structural equality behaves the same for built and decoded notes.
func New(clef Clef, name, accidental string, octave int, articulations []string) Note {
	var arts []string
	for _, a := range articulations {
		if a != "" {
			arts = append(arts, a)
		}
	}
	return Note{Clef: clef, Name: name, Accidental: accidental, Octave: octave, Articulations: arts}
}

// NewRest builds a silence under the given clef.
func NewRest(clef Clef) Note {
	return Note{Clef: clef, Name: Rest}
}

func (n Note) IsRest() bool {
	return n.Name == Rest
}

// Equal reports structural equality over every field.
func (n Note) Equal(o Note) bool {
	if n.Clef != o.Clef || n.Name != o.Name || n.Accidental != o.Accidental || n.Octave != o.Octave {
		return false
	}
	if len(n.Articulations) != len(o.Articulations) {
		return false
	}
	for i := range n.Articulations {
		if n.Articulations[i] != o.Articulations[i] {
			return false
		}
	}
	return true
}

// String renders the canonical form
//
//	(<clefSign>,<clefLine>)<Letter><Accidental><Octave>|<art1>,<art2>,...
//
// The rendering is injective over legal values, so it doubles as a table key.
func (n Note) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Clef.Sign)
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(n.Clef.Line))
	b.WriteByte(')')
	b.WriteString(n.Name)
	if !n.IsRest() {
		b.WriteString(n.Accidental)
		b.WriteString(strconv.Itoa(n.Octave))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(n.Articulations, ","))
	return b.String()
}

// Decode is the inverse of String.
func Decode(s string) (Note, error) {
	var n Note
	if s == "" {
		return n, fmt.Errorf("empty note string: %w", ErrFormat)
	}
	if s[0] != '(' {
		return n, fmt.Errorf("note %q: missing clef: %w", s, ErrFormat)
	}
	closeIdx := strings.IndexByte(s, ')')
	if closeIdx < 0 {
		return n, fmt.Errorf("note %q: unterminated clef: %w", s, ErrFormat)
	}
	sign, lineStr, ok := strings.Cut(s[1:closeIdx], ",")
	if !ok {
		return n, fmt.Errorf("note %q: clef needs sign and line: %w", s, ErrFormat)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return n, fmt.Errorf("note %q: bad clef line %q: %w", s, lineStr, ErrFormat)
	}

	pitch, arts, ok := strings.Cut(s[closeIdx+1:], "|")
	if !ok {
		return n, fmt.Errorf("note %q: missing articulation separator: %w", s, ErrFormat)
	}
	if pitch == "" {
		return n, fmt.Errorf("note %q: missing pitch: %w", s, ErrFormat)
	}

	n.Clef = Clef{Sign: sign, Line: line}
	n.Name = pitch[:1]
	rest := pitch[1:]

	if _, legal := noteBase[n.Name]; !legal && n.Name != Rest {
		return Note{}, fmt.Errorf("note %q: illegal letter %q: %w", s, n.Name, ErrFormat)
	}

	if n.Name == Rest {
		if rest != "" {
			return Note{}, fmt.Errorf("note %q: rest carries pitch data: %w", s, ErrFormat)
		}
	} else {
		for _, acc := range accidentals {
			if strings.HasPrefix(rest, acc) {
				n.Accidental = acc
				rest = rest[len(acc):]
				break
			}
		}
		n.Octave, err = strconv.Atoi(rest)
		if err != nil {
			return Note{}, fmt.Errorf("note %q: bad octave %q: %w", s, rest, ErrFormat)
		}
	}

	for _, a := range strings.Split(arts, ",") {
		if a != "" {
			n.Articulations = append(n.Articulations, a)
		}
	}
	return n, nil
}

// MIDINumber maps a pitched note to its MIDI key (octave -1 = keys 0..11).
// It fails for rests and for letters or accidentals outside the legal set.
func (n Note) MIDINumber() (uint8, error) {
	if n.IsRest() {
		return 0, fmt.Errorf("rest has no MIDI number")
	}
	base, ok := noteBase[n.Name]
	if !ok {
		return 0, fmt.Errorf("unsupported note name %q", n.Name)
	}
	offset, ok := accidentalOffset[n.Accidental]
	if !ok {
		return 0, fmt.Errorf("unsupported accidental %q", n.Accidental)
	}
	key := (n.Octave+1)*12 + base + offset
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %v out of MIDI range", n)
	}
	return uint8(key), nil
}
