package score

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lmontes/melgen/event"
	"github.com/lmontes/melgen/model"
	"github.com/lmontes/melgen/note"
)

const (
	// DefaultTempo is used when the document carries no sound/tempo marking.
	DefaultTempo = 120
	// DefaultDivisions is used when no attributes/divisions tag is found.
	DefaultDivisions = 1
)

// typeToFrac maps MusicXML note type names to fractions of a whole note.
var typeToFrac = map[string]event.Fraction{
	"breve":   {Num: 2, Den: 1},
	"whole":   {Num: 1, Den: 1},
	"half":    {Num: 1, Den: 2},
	"quarter": {Num: 1, Den: 4},
	"eighth":  {Num: 1, Den: 8},
	"16th":    {Num: 1, Den: 16},
	"32nd":    {Num: 1, Den: 32},
	"64th":    {Num: 1, Den: 64},
}

var alterToAccidental = map[int]string{
	0:  "",
	1:  "#",
	2:  "x",
	-1: "b",
	-2: "bb",
}

// ParseFile reads a compressed .mxl or a plain .xml/.musicxml score-partwise
// document into the ingestion shape consumed by the corpus aggregator.
func ParseFile(path string) (*model.Score, error) {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".mxl") {
		data, err = readMXL(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading score file %v: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing score file %v: %w", path, err)
	}
	s.Source = filepath.Base(path)
	return s, nil
}

// readMXL unpacks the score document out of an .mxl zip container, following
// the META-INF/container.xml rootfile indirection when present.
func readMXL(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	scorePath := "score.xml"
	for _, f := range zr.File {
		if f.Name != "META-INF/container.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		var container struct {
			RootFiles []struct {
				FullPath string `xml:"full-path,attr"`
			} `xml:"rootfiles>rootfile"`
		}
		err = xml.NewDecoder(rc).Decode(&container)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("bad container.xml: %w", err)
		}
		if len(container.RootFiles) > 0 && container.RootFiles[0].FullPath != "" {
			scorePath = container.RootFiles[0].FullPath
		}
		break
	}

	for _, f := range zr.File {
		if f.Name == scorePath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("score entry %q not found in container", scorePath)
}

// Parse decodes a score-partwise document already held in memory.
func Parse(data []byte) (*model.Score, error) {
	var doc xmlScore
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	idToInstrument := make(map[string]string)
	for _, sp := range doc.PartList.ScoreParts {
		idToInstrument[sp.ID] = sp.PartName
	}

	s := &model.Score{Info: model.Info{Divisions: DefaultDivisions, Tempo: 0}}
	for _, part := range doc.Parts {
		inst := idToInstrument[part.ID]
		if inst == "" {
			inst = part.ID
		}
		p, err := parsePart(part, &s.Info)
		if err != nil {
			return nil, fmt.Errorf("part %v (%v): %w", part.ID, inst, err)
		}
		p.Instrument = inst
		s.Parts = append(s.Parts, p)
	}
	if s.Info.Tempo == 0 {
		s.Info.Tempo = DefaultTempo
	}
	return s, nil
}

func parsePart(part xmlPart, info *model.Info) (model.Part, error) {
	p := model.Part{Voices: map[string][]event.Event{"1": nil}}

	// clef state carries across measures; the last change on a staff
	// applies to every later note on that staff
	clefs := map[string]note.Clef{}

	for mi, measure := range part.Measures {
		for _, attrs := range measure.Attributes {
			if attrs.Divisions > 0 {
				info.Divisions = attrs.Divisions
			}
			if attrs.Staves > 1 {
				for staff := 1; staff <= attrs.Staves; staff++ {
					id := strconv.Itoa(staff)
					if _, ok := p.Voices[id]; !ok {
						p.Voices[id] = nil
					}
				}
			}
			for _, clef := range attrs.Clefs {
				number := clef.Number
				if number == "" {
					number = "1"
				}
				clefs[number] = note.Clef{Sign: clef.Sign, Line: clef.Line}
			}
		}

		if info.Tempo == 0 {
			if tempo := measure.firstTempo(); tempo > 0 {
				info.Tempo = tempo
			}
		}

		for _, xn := range measure.Notes {
			if err := appendNote(&p, clefs, xn); err != nil {
				return p, fmt.Errorf("measure %v: %w", mi+1, err)
			}
		}
	}
	return p, nil
}

func appendNote(p *model.Part, clefs map[string]note.Clef, xn xmlNote) error {
	staff := xn.Staff
	if staff == "" {
		staff = "1"
	}
	clef, ok := clefs[staff]
	if !ok {
		clef = note.Clef{Sign: "G", Line: 2}
	}

	typ, err := noteType(xn)
	if err != nil {
		return err
	}

	if xn.Rest != nil {
		ev, err := timedEvent([]note.Note{note.NewRest(clef)}, typ, xn.Duration)
		if err != nil {
			return err
		}
		p.Voices[staff] = append(p.Voices[staff], ev)
		return nil
	}

	if xn.Pitch == nil {
		// malformed note entry; the reference corpus has a few of these
		return nil
	}

	var arts []string
	for _, a := range xn.Notations.Articulations.Items {
		arts = append(arts, a.XMLName.Local)
	}
	alter := 0
	if xn.Pitch.Alter != nil {
		alter = *xn.Pitch.Alter
	}
	acc, ok := alterToAccidental[alter]
	if !ok {
		return fmt.Errorf("unsupported alter value %v", alter)
	}
	n := note.New(clef, xn.Pitch.Step, acc, xn.Pitch.Octave, arts)

	if xn.Chord != nil {
		evs := p.Voices[staff]
		if len(evs) == 0 {
			return fmt.Errorf("chord note with no preceding event on staff %v", staff)
		}
		evs[len(evs)-1].Notes = append(evs[len(evs)-1].Notes, n)
		return nil
	}

	ev, err := timedEvent([]note.Note{n}, typ, xn.Duration)
	if err != nil {
		return err
	}
	p.Voices[staff] = append(p.Voices[staff], ev)
	return nil
}

func noteType(xn xmlNote) (event.Fraction, error) {
	if xn.Type == "" {
		// whole-measure rests and a few engravers omit the type tag
		return event.Fraction{Num: 1, Den: 4}, nil
	}
	typ, ok := typeToFrac[xn.Type]
	if !ok {
		return event.Fraction{}, fmt.Errorf("unsupported note type %q", xn.Type)
	}
	return typ, nil
}

func timedEvent(notes []note.Note, typ event.Fraction, duration string) (event.Event, error) {
	if duration == "" {
		// grace note: no duration tag
		return event.New(notes, typ)
	}
	ticks, err := strconv.Atoi(strings.TrimSpace(duration))
	if err != nil {
		return event.Event{}, fmt.Errorf("bad duration %q", duration)
	}
	return event.NewWithDuration(notes, typ, ticks)
}
