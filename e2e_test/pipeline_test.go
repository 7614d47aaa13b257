//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/lmontes/melgen/corpus"
	"github.com/lmontes/melgen/markov"
	"github.com/lmontes/melgen/midifile"
	"github.com/lmontes/melgen/model"
	"github.com/lmontes/melgen/score"
)

const twoStaffDoc = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <part-list>
    <score-part id="P1"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>2</divisions>
        <staves>2</staves>
        <clef number="1"><sign>G</sign><line>2</line></clef>
        <clef number="2"><sign>F</sign><line>4</line></clef>
      </attributes>
      <direction><sound tempo="96"/></direction>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>2</duration><type>quarter</type><staff>1</staff></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration><type>quarter</type><staff>1</staff></note>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration><type>quarter</type><staff>1</staff></note>
      <note><rest/><duration>2</duration><type>quarter</type><staff>1</staff></note>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>4</duration><type>half</type><staff>2</staff></note>
      <note><pitch><step>G</step><octave>2</octave></pitch><duration>4</duration><type>half</type><staff>2</staff></note>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>2</duration><type>quarter</type><staff>2</staff></note>
      <note><pitch><step>E</step><octave>3</octave></pitch><duration>2</duration><type>quarter</type><staff>2</staff></note>
    </measure>
  </part>
</score-partwise>`

func TestFullPipeline(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	scorePath := filepath.Join(dir, "piece.xml")
	assert.NoError(os.WriteFile(scorePath, []byte(twoStaffDoc), 0666))

	parsed, err := score.ParseFile(scorePath)
	assert.NoError(err)
	assert.Equal(model.Info{Divisions: 2, Tempo: 96}, parsed.Info)

	streams, err := corpus.Aggregate([]*model.Score{parsed, parsed}, []string{"1", "2"})
	assert.NoError(err)
	assert.Equal(8, corpus.MinLength(streams))

	table, err := markov.Build(streams, []string{"1", "2"}, 2)
	assert.NoError(err)

	tablePath := filepath.Join(dir, "table.csv")
	assert.NoError(table.WriteCSV(tablePath))
	loaded, err := markov.ReadCSV(tablePath)
	assert.NoError(err)

	comp, err := loaded.Compose(rand.New(rand.NewSource(5)), 16)
	assert.NoError(err)
	assert.Len(comp.Groups, 17)
	assert.Equal(0, comp.DeadEnds)

	midiPath := filepath.Join(dir, "out.mid")
	opts := midifile.Options{
		Divisions:   parsed.Info.Divisions,
		Tempo:       parsed.Info.Tempo,
		Velocity:    100,
		Instruments: []string{"piano", "cello"},
	}
	assert.NoError(midifile.WriteGroups(comp.Groups, midiPath, opts))

	dat, err := os.ReadFile(midiPath)
	assert.NoError(err)
	mid, err := smf.ReadFrom(bytes.NewReader(dat))
	assert.NoError(err)
	assert.Len(mid.Tracks, 2)
}
