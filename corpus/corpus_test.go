package corpus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmontes/melgen/event"
	"github.com/lmontes/melgen/model"
	"github.com/lmontes/melgen/note"
)

var treble = note.Clef{Sign: "G", Line: 2}

func quarter(t *testing.T, name string) event.Event {
	t.Helper()
	ev, err := event.New([]note.Note{note.New(treble, name, "", 4, nil)}, event.Frac(1, 4))
	assert.NoError(t, err)
	return ev
}

func scoreWith(source string, voices map[string][]event.Event) *model.Score {
	return &model.Score{
		Source: source,
		Info:   model.Info{Divisions: 4, Tempo: 120},
		Parts:  []model.Part{{Instrument: "Piano", Voices: voices}},
	}
}

func TestAggregateConcatenatesAcrossScores(t *testing.T) {
	assert := assert.New(t)

	c, d, e := quarter(t, "C"), quarter(t, "D"), quarter(t, "E")
	first := scoreWith("first.xml", map[string][]event.Event{
		"1": {c, d},
		"2": {e},
	})
	second := scoreWith("second.xml", map[string][]event.Event{
		"1": {e},
		"2": {c, c},
	})

	merged, err := Aggregate([]*model.Score{first, second}, []string{"1", "2"})
	assert.NoError(err)
	assert.Len(merged["1"], 3)
	assert.Len(merged["2"], 3)
	assert.True(merged["1"][2].Equal(e))
	assert.True(merged["2"][1].Equal(c))
}

func TestAggregateSkipsScoresMissingAVoice(t *testing.T) {
	assert := assert.New(t)

	c, d := quarter(t, "C"), quarter(t, "D")
	with := scoreWith("with.xml", map[string][]event.Event{"1": {c}, "2": {d}})
	without := scoreWith("without.xml", map[string][]event.Event{"1": {d}})

	merged, err := Aggregate([]*model.Score{with, without}, []string{"1", "2"})
	assert.NoError(err)
	assert.Len(merged["1"], 2)
	// voice 2 only exists in the first score; the second is skipped
	assert.Len(merged["2"], 1)
}

func TestAggregateFailsWhenVoiceNowhere(t *testing.T) {
	s := scoreWith("only1.xml", map[string][]event.Event{"1": {quarter(t, "C")}})
	_, err := Aggregate([]*model.Score{s}, []string{"1", "3"})
	assert.True(t, errors.Is(err, ErrVoiceNotFound))
	assert.Contains(t, err.Error(), "3")
}

func TestAggregateValidatesInput(t *testing.T) {
	s := scoreWith("a.xml", map[string][]event.Event{"1": {quarter(t, "C")}})

	_, err := Aggregate(nil, []string{"1"})
	assert.Error(t, err)

	_, err = Aggregate([]*model.Score{s}, nil)
	assert.Error(t, err)
}

func TestAggregateMergesPartsWithinAScore(t *testing.T) {
	assert := assert.New(t)

	c, d := quarter(t, "C"), quarter(t, "D")
	s := &model.Score{
		Source: "duo.xml",
		Parts: []model.Part{
			{Instrument: "Flute", Voices: map[string][]event.Event{"1": {c}}},
			{Instrument: "Cello", Voices: map[string][]event.Event{"1": {d}}},
		},
	}

	merged, err := Aggregate([]*model.Score{s}, []string{"1"})
	assert.NoError(err)
	assert.Len(merged["1"], 2)
	assert.True(merged["1"][0].Equal(c))
	assert.True(merged["1"][1].Equal(d))
}

func TestMinLength(t *testing.T) {
	assert := assert.New(t)

	c := quarter(t, "C")
	assert.Equal(1, MinLength(map[string][]event.Event{
		"1": {c, c, c},
		"2": {c},
	}))
	assert.Equal(0, MinLength(nil))
}
