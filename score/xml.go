package score

import (
	"encoding/xml"
	"strconv"
)

// Raw shapes of a MusicXML score-partwise document. Only the elements the
// pipeline consumes are mapped.

type xmlScore struct {
	XMLName  xml.Name `xml:"score-partwise"`
	PartList struct {
		ScoreParts []struct {
			ID       string `xml:"id,attr"`
			PartName string `xml:"part-name"`
		} `xml:"score-part"`
	} `xml:"part-list"`
	Parts []xmlPart `xml:"part"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Attributes []xmlAttributes `xml:"attributes"`
	Notes      []xmlNote       `xml:"note"`
	Sounds     []xmlSound      `xml:"sound"`
	Directions []struct {
		Sound *xmlSound `xml:"sound"`
	} `xml:"direction"`
}

// firstTempo returns the first tempo marking in the measure, or 0.
func (m xmlMeasure) firstTempo() int {
	for _, d := range m.Directions {
		if d.Sound != nil {
			if t := d.Sound.tempo(); t > 0 {
				return t
			}
		}
	}
	for _, s := range m.Sounds {
		if t := s.tempo(); t > 0 {
			return t
		}
	}
	return 0
}

type xmlSound struct {
	Tempo string `xml:"tempo,attr"`
}

func (s xmlSound) tempo() int {
	if s.Tempo == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s.Tempo, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

type xmlAttributes struct {
	Divisions int `xml:"divisions"`
	Staves    int `xml:"staves"`
	Clefs     []struct {
		Number string `xml:"number,attr"`
		Sign   string `xml:"sign"`
		Line   int    `xml:"line"`
	} `xml:"clef"`
}

type xmlNote struct {
	Rest      *struct{} `xml:"rest"`
	Chord     *struct{} `xml:"chord"`
	Grace     *struct{} `xml:"grace"`
	Pitch     *xmlPitch `xml:"pitch"`
	Duration  string    `xml:"duration"`
	Type      string    `xml:"type"`
	Staff     string    `xml:"staff"`
	Notations struct {
		Articulations struct {
			Items []xmlAnyElem `xml:",any"`
		} `xml:"articulations"`
	} `xml:"notations"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  *int   `xml:"alter"`
	Octave int    `xml:"octave"`
}

// xmlAnyElem captures just the tag name; articulation elements are empty and
// identified by their name (staccato, accent, ...).
type xmlAnyElem struct {
	XMLName xml.Name
}
