package model

import "github.com/lmontes/melgen/event"

// Info carries the timing header of a parsed score: the tick resolution
// (MusicXML divisions per quarter note) and the tempo in BPM.
type Info struct {
	Divisions int
	Tempo     int
}

// Part is one instrument's staves. Voices maps the staff number (as written
// in the source document, "1", "2", ...) to that staff's event stream.
type Part struct {
	Instrument string
	Voices     map[string][]event.Event
}

// Score is the ingestion output for a single source document. Parts keeps
// document order so corpus aggregation is deterministic.
type Score struct {
	Source string
	Info   Info
	Parts  []Part
}
