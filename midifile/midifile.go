package midifile

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/lmontes/melgen/event"
	"github.com/lmontes/melgen/gm"
	"github.com/lmontes/melgen/markov"
)

const percussionChannel = 9

// Options configures the serialization of a composition to a Standard MIDI
// File.
type Options struct {
	// Divisions is the tick resolution (ticks per quarter note).
	Divisions int
	// Tempo in BPM.
	Tempo int
	// Velocity for note-on messages.
	Velocity uint8
	// Instruments holds one friendly instrument name per voice. A single
	// entry applies to every voice; empty means piano throughout.
	Instruments []string
	// Title, when set, is written as the sequence name of the first track.
	Title string
}

// WriteGroups serializes time-step-aligned voice groups to path. Every group
// must hold one event per voice.
func WriteGroups(groups []markov.Group, path string, opts Options) error {
	voices, err := splitVoices(groups)
	if err != nil {
		return err
	}
	return writeVoices(voices, path, opts)
}

// WriteVoice serializes a single flat event stream to path.
func WriteVoice(events []event.Event, path string, opts Options) error {
	if len(events) == 0 {
		return fmt.Errorf("no events supplied for MIDI export")
	}
	return writeVoices([][]event.Event{events}, path, opts)
}

// splitVoices transposes time-step groups into per-voice sequences.
func splitVoices(groups []markov.Group) ([][]event.Event, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no events supplied for MIDI export")
	}
	numVoices := len(groups[0].Events)
	voices := make([][]event.Event, numVoices)
	for i, g := range groups {
		if len(g.Events) != numVoices {
			return nil, fmt.Errorf("time step %v has %v voices, want %v", i, len(g.Events), numVoices)
		}
		for vi, ev := range g.Events {
			voices[vi] = append(voices[vi], ev)
		}
	}
	return voices, nil
}

func resolveInstruments(opts Options, numVoices int) ([]string, error) {
	switch len(opts.Instruments) {
	case 0:
		names := make([]string, numVoices)
		for i := range names {
			names[i] = "piano"
		}
		return names, nil
	case 1:
		names := make([]string, numVoices)
		for i := range names {
			names[i] = opts.Instruments[0]
		}
		return names, nil
	case numVoices:
		return opts.Instruments, nil
	default:
		return nil, fmt.Errorf("got %v instruments for %v voices", len(opts.Instruments), numVoices)
	}
}

func writeVoices(voices [][]event.Event, path string, opts Options) error {
	s, err := buildVoices(voices, opts)
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing MIDI file %v: %w", path, err)
	}
	return nil
}

func buildVoices(voices [][]event.Event, opts Options) (*smf.SMF, error) {
	instruments, err := resolveInstruments(opts, len(voices))
	if err != nil {
		return nil, err
	}
	if opts.Divisions < 1 {
		return nil, fmt.Errorf("tick resolution must be positive, got %v", opts.Divisions)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.Divisions)

	melodicChannel := uint8(0)
	for vi, events := range voices {
		prog, percussion, err := gm.Program(instruments[vi])
		if err != nil {
			return nil, err
		}
		channel := percussionChannel
		if !percussion {
			if melodicChannel == percussionChannel {
				melodicChannel++
			}
			channel = int(melodicChannel)
			melodicChannel++
		}

		var tr smf.Track
		if vi == 0 {
			if opts.Title != "" {
				tr.Add(0, smf.MetaTrackSequenceName(opts.Title))
			}
			tr.Add(0, smf.MetaTempo(float64(opts.Tempo)))
		}
		if !percussion {
			tr.Add(0, midi.ProgramChange(uint8(channel), prog))
		}
		if err := writeTrack(&tr, events, uint8(channel), opts); err != nil {
			return nil, fmt.Errorf("voice %v: %w", vi+1, err)
		}
		s.Add(tr)
	}
	return s, nil
}

// writeTrack appends one voice's events. Rests and empty chords accumulate
// into the delay before the next sounding event; a chord's notes start and
// stop together.
func writeTrack(tr *smf.Track, events []event.Event, channel uint8, opts Options) error {
	pending := 0
	for _, ev := range events {
		ticks := ev.DurationTicks(opts.Divisions)

		var keys []uint8
		for _, n := range ev.Notes {
			if n.IsRest() {
				continue
			}
			key, err := n.MIDINumber()
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}

		if len(keys) == 0 {
			pending += ticks
			continue
		}

		for i, key := range keys {
			delta := 0
			if i == 0 {
				delta = pending
			}
			tr.Add(uint32(delta), midi.NoteOn(channel, key, opts.Velocity))
		}
		pending = 0
		for i, key := range keys {
			delta := 0
			if i == 0 {
				delta = ticks
			}
			tr.Add(uint32(delta), midi.NoteOff(channel, key))
		}
	}
	tr.Close(uint32(pending))
	return nil
}
