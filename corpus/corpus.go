package corpus

import (
	"errors"
	"fmt"

	"github.com/lmontes/melgen/event"
	"github.com/lmontes/melgen/model"
)

// ErrVoiceNotFound means a requested voice appears in none of the supplied
// scores. A voice missing from only some scores is skipped with a warning.
var ErrVoiceNotFound = errors.New("voice not found")

// Aggregate concatenates, for each selected voice, that voice's event stream
// across all supplied scores in order. Every part of every score contributes;
// parts that do not carry the voice are skipped per score.
func Aggregate(scores []*model.Score, voices []string) (map[string][]event.Event, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores supplied")
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("voice selection is empty")
	}

	merged := make(map[string][]event.Event, len(voices))
	found := make(map[string]bool, len(voices))
	for _, voice := range voices {
		merged[voice] = nil
	}

	for _, s := range scores {
		for _, voice := range voices {
			present := false
			for _, part := range s.Parts {
				evs, ok := part.Voices[voice]
				if !ok {
					continue
				}
				present = true
				merged[voice] = append(merged[voice], evs...)
			}
			if !present {
				fmt.Printf("Skipping voice %v in %v: not present\n", voice, s.Source)
				continue
			}
			found[voice] = true
		}
	}

	for _, voice := range voices {
		if !found[voice] {
			return nil, fmt.Errorf("voice %q in %v scores: %w", voice, len(scores), ErrVoiceNotFound)
		}
	}
	return merged, nil
}

// MinLength returns the shortest voice length; the synchronized time axis is
// truncated there and later events are discarded.
func MinLength(voices map[string][]event.Event) int {
	min := -1
	for _, evs := range voices {
		if min == -1 || len(evs) < min {
			min = len(evs)
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
