package markov

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmontes/melgen/event"
	"github.com/lmontes/melgen/note"
)

var treble = note.Clef{Sign: "G", Line: 2}

// quarter builds a plain quarter-note event on the given letter and octave.
func quarter(t *testing.T, name string, octave int) event.Event {
	t.Helper()
	ev, err := event.New([]note.Note{note.New(treble, name, "", octave, nil)}, event.Frac(1, 4))
	assert.NoError(t, err)
	return ev
}

func groupKey(evs ...event.Event) string {
	return Group{Events: evs}.Key()
}

func TestBuildSingleVoiceOrderOne(t *testing.T) {
	assert := assert.New(t)

	e1 := quarter(t, "C", 4)
	e2 := quarter(t, "D", 4)
	e3 := quarter(t, "E", 4)
	streams := map[string][]event.Event{"1": {e1, e2, e3}}

	table, err := Build(streams, []string{"1"}, 1)
	assert.NoError(err)

	// windows wrap around the end of the corpus, so the last event also
	// starts a transition (back to the first event)
	assert.ElementsMatch(
		[]string{groupKey(e1), groupKey(e2), groupKey(e3)},
		table.RowKeys(),
	)
	assert.Equal(1.0, table.Prob(groupKey(e1), groupKey(e2)))
	assert.Equal(1.0, table.Prob(groupKey(e2), groupKey(e3)))
	assert.Equal(1.0, table.Prob(groupKey(e3), groupKey(e1)))
}

func TestBuildTwoVoicesOrderTwo(t *testing.T) {
	assert := assert.New(t)

	var upper, lower []event.Event
	letters := []string{"C", "D", "E", "F", "G"}
	for i, l := range letters {
		upper = append(upper, quarter(t, l, 4))
		lower = append(lower, quarter(t, letters[(i+2)%5], 3))
	}
	streams := map[string][]event.Event{"1": upper, "2": lower}

	table, err := Build(streams, []string{"1", "2"}, 2)
	assert.NoError(err)

	// one state per modular-wrapped window over 5 time steps
	assert.Equal(5, table.NumStates())
	assert.LessOrEqual(table.NumSuccessors(), 5)
	assert.Equal(2, table.Order())
}

func TestRowsAreStochastic(t *testing.T) {
	assert := assert.New(t)

	evs := []event.Event{
		quarter(t, "C", 4), quarter(t, "D", 4), quarter(t, "C", 4),
		quarter(t, "E", 4), quarter(t, "C", 4), quarter(t, "D", 4),
	}
	table, err := Build(map[string][]event.Event{"1": evs}, []string{"1"}, 1)
	assert.NoError(err)

	for _, row := range table.RowKeys() {
		var sum float64
		for _, col := range table.ColKeys() {
			sum += table.Prob(row, col)
		}
		assert.InDelta(1.0, sum, 1e-9, "row %v not stochastic", row)
	}
}

func TestZeroRowFallbackIsRecurrent(t *testing.T) {
	assert := assert.New(t)

	table := &Table{
		order: 1,
		rows:  []string{"a"},
		cols:  []string{"x", "y", "z", "w"},
		probs: [][]float64{{0, 0, 0, 0}},
	}
	table.buildIndexes()
	table.normalizeRows()

	var sum float64
	for _, p := range table.probs[0] {
		assert.Equal(0.25, p)
		sum += p
	}
	assert.InDelta(1.0, sum, 1e-9)
}

func TestBuildRejectsBadConfig(t *testing.T) {
	assert := assert.New(t)

	evs := []event.Event{quarter(t, "C", 4), quarter(t, "D", 4)}
	streams := map[string][]event.Event{"1": evs}

	_, err := Build(streams, []string{"1"}, 2)
	assert.True(errors.Is(err, ErrConfig))
	assert.Contains(err.Error(), "2")

	_, err = Build(streams, []string{"1"}, 5)
	assert.True(errors.Is(err, ErrConfig))

	_, err = Build(streams, nil, 1)
	assert.True(errors.Is(err, ErrConfig))

	_, err = Build(streams, []string{"1"}, 0)
	assert.True(errors.Is(err, ErrConfig))

	_, err = Build(streams, []string{"9"}, 1)
	assert.True(errors.Is(err, ErrConfig))
}

func TestComposeLengthAndDeterminism(t *testing.T) {
	assert := assert.New(t)

	var evs []event.Event
	for i := 0; i < 8; i++ {
		evs = append(evs, quarter(t, []string{"C", "D", "E", "F"}[i%4], 3+i%3))
	}
	table, err := Build(map[string][]event.Event{"1": evs}, []string{"1"}, 2)
	assert.NoError(err)

	comp, err := table.Compose(rand.New(rand.NewSource(7)), 25)
	assert.NoError(err)
	assert.Len(comp.Groups, 26)
	assert.Equal(0, comp.DeadEnds)

	again, err := table.Compose(rand.New(rand.NewSource(7)), 25)
	assert.NoError(err)
	for i := range comp.Groups {
		assert.Equal(comp.Groups[i].Key(), again.Groups[i].Key(), "diverged at step %v", i)
	}

	other, err := table.Compose(rand.New(rand.NewSource(8)), 25)
	assert.NoError(err)
	assert.Len(other.Groups, 26)
}

func TestComposeDeadEndRepeatsPreviousOutput(t *testing.T) {
	assert := assert.New(t)

	key := groupKey(quarter(t, "C", 4))
	table := &Table{
		order: 1,
		rows:  []string{key},
		cols:  []string{key},
		probs: [][]float64{{0}},
	}
	table.buildIndexes()

	comp, err := table.Compose(rand.New(rand.NewSource(1)), 3)
	assert.NoError(err)
	assert.Len(comp.Groups, 4)
	assert.Equal(3, comp.DeadEnds)
	for _, g := range comp.Groups {
		assert.Equal(key, g.Key())
	}
}

func TestComposeRejectsEmptyTable(t *testing.T) {
	table := &Table{}
	table.buildIndexes()
	_, err := table.Compose(rand.New(rand.NewSource(1)), 5)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestStateAdvance(t *testing.T) {
	assert := assert.New(t)

	groups := make([]Group, 3)
	for i := range groups {
		groups[i] = Group{Events: []event.Event{quarter(t, "C", i+2)}}
	}

	st := State{Steps: groups[:2]}
	next := st.Advance(groups[2])
	assert.Equal(groups[1].Key()+"+"+groups[2].Key(), next.Key())
	assert.Equal(groups[2].Key(), next.Latest().Key())

	// order 1: the window is replaced wholesale
	st = State{Steps: groups[:1]}
	assert.Equal(groups[2].Key(), st.Advance(groups[2]).Key())
}

func TestKeyRoundTrip(t *testing.T) {
	assert := assert.New(t)

	g := Group{Events: []event.Event{quarter(t, "C", 4), quarter(t, "G", 3)}}
	decoded, err := DecodeGroup(g.Key())
	assert.NoError(err)
	assert.Equal(g.Key(), decoded.Key())

	st := State{Steps: []Group{g, g}}
	decodedState, err := DecodeState(st.Key())
	assert.NoError(err)
	assert.Equal(st.Key(), decodedState.Key())

	_, err = DecodeGroup("not an event")
	assert.Error(err)
}

func TestSamplingFollowsColumnOrder(t *testing.T) {
	assert := assert.New(t)

	// craft a known row: three successors at 0.2/0.3/0.5 in column order
	rowKey := groupKey(quarter(t, "A", 4))
	cols := []string{}
	for i := 0; i < 3; i++ {
		cols = append(cols, groupKey(quarter(t, string(rune('B'+i)), i)))
	}
	table := &Table{order: 1, rows: []string{rowKey}, cols: cols, probs: [][]float64{{0.2, 0.3, 0.5}}}
	table.buildIndexes()

	counts := map[string]int{}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 5000; i++ {
		succ, ok := table.drawSuccessor(rng, rowKey)
		assert.True(ok)
		counts[succ]++
	}
	assert.InDelta(0.2, float64(counts[cols[0]])/5000, 0.03)
	assert.InDelta(0.3, float64(counts[cols[1]])/5000, 0.03)
	assert.InDelta(0.5, float64(counts[cols[2]])/5000, 0.03)
}

func TestBuildCountsRepeatedTransitions(t *testing.T) {
	assert := assert.New(t)

	// C D C E: state C is followed by D once and E once (plus the wrap
	// from E back to C)
	evs := []event.Event{quarter(t, "C", 4), quarter(t, "D", 4), quarter(t, "C", 4), quarter(t, "E", 4)}
	table, err := Build(map[string][]event.Event{"1": evs}, []string{"1"}, 1)
	assert.NoError(err)

	c := groupKey(evs[0])
	assert.Equal(0.5, table.Prob(c, groupKey(evs[1])))
	assert.Equal(0.5, table.Prob(c, groupKey(evs[3])))
	assert.Equal(1.0, table.Prob(groupKey(evs[3]), c))
}

func TestGroupKeyUsesVoiceSeparator(t *testing.T) {
	assert := assert.New(t)
	g := Group{Events: []event.Event{quarter(t, "C", 4), quarter(t, "G", 3)}}
	want := quarter(t, "C", 4).String() + "&" + quarter(t, "G", 3).String()
	assert.Equal(want, g.Key())
}

func BenchmarkBuild(b *testing.B) {
	var evs []event.Event
	for i := 0; i < 256; i++ {
		n := note.New(treble, []string{"C", "D", "E", "F", "G", "A", "B"}[i%7], "", i%5, nil)
		ev, _ := event.New([]note.Note{n}, event.Frac(1, 4))
		evs = append(evs, ev)
	}
	streams := map[string][]event.Event{"1": evs}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(streams, []string{"1"}, 3); err != nil {
			b.Fatal(strconv.Itoa(i) + ": " + err.Error())
		}
	}
}
