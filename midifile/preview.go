package midifile

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/lmontes/melgen/markov"
)

// WritePreview serializes only the opening of a composition: each voice is
// cut off after maxNotes note on/off messages. Meta and program messages are
// kept with their delay squeezed to at most one tick.
func WritePreview(groups []markov.Group, path string, opts Options, maxNotes int) error {
	voices, err := splitVoices(groups)
	if err != nil {
		return err
	}
	s, err := buildVoices(voices, opts)
	if err != nil {
		return err
	}
	if err := trim(s, maxNotes).WriteFile(path); err != nil {
		return fmt.Errorf("writing MIDI preview %v: %w", path, err)
	}
	return nil
}

func trim(s *smf.SMF, maxNotes int) *smf.SMF {
	res := smf.New()
	res.TimeFormat = s.TimeFormat

	for _, track := range s.Tracks {
		var newTrack smf.Track
		var numNoteOnOff int
	TrackEventLoop:
		for _, evt := range track {
			switch {
			case evt.Message.Is(midi.NoteOnMsg),
				evt.Message.Is(midi.NoteOffMsg):
				newTrack = append(newTrack, evt)
				numNoteOnOff++
				if numNoteOnOff >= maxNotes {
					newTrack.Close(0)
					break TrackEventLoop
				}
			default:
				if evt.Delta > 1 {
					evt.Delta = 1
				}
				newTrack = append(newTrack, evt)
			}
		}
		res.Tracks = append(res.Tracks, newTrack)
	}
	return res
}
