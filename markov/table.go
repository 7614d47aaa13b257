package markov

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lmontes/melgen/event"
)

// ErrConfig is wrapped by build failures caused by a bad order or voice
// selection.
var ErrConfig = errors.New("invalid configuration")

// Table is the row-stochastic transition table of the chain. Rows are state
// keys (order-length windows), columns are single-step successor group keys.
// A table is built or loaded once and read-only afterwards.
type Table struct {
	order int
	rows  []string // sorted state keys
	cols  []string // sorted successor keys
	rowIt map[string]int
	colIt map[string]int
	probs [][]float64 // rows x cols
}

func (t *Table) Order() int         { return t.order }
func (t *Table) NumStates() int     { return len(t.rows) }
func (t *Table) NumSuccessors() int { return len(t.cols) }

// RowKeys returns the state keys in table order (lexicographic).
func (t *Table) RowKeys() []string {
	return append([]string(nil), t.rows...)
}

// ColKeys returns the successor keys in table order (lexicographic).
func (t *Table) ColKeys() []string {
	return append([]string(nil), t.cols...)
}

// Prob returns the transition probability from a state key to a successor
// key; zero when either label is unknown.
func (t *Table) Prob(row, col string) float64 {
	ri, ok := t.rowIt[row]
	if !ok {
		return 0
	}
	ci, ok := t.colIt[col]
	if !ok {
		return 0
	}
	return t.probs[ri][ci]
}

// Build constructs the transition table from the aggregated voice streams.
// voices fixes the per-group voice order; order is the context length. The
// time axis is truncated to the shortest stream, and windows wrap around the
// end of the corpus modularly, so the final time steps still start
// transitions instead of being discarded.
func Build(streams map[string][]event.Event, voices []string, order int) (*Table, error) {
	if len(voices) == 0 {
		return nil, fmt.Errorf("voice selection is empty: %w", ErrConfig)
	}
	if order < 1 {
		return nil, fmt.Errorf("order (%v) must be positive: %w", order, ErrConfig)
	}

	minLen := -1
	for _, voice := range voices {
		evs, ok := streams[voice]
		if !ok {
			return nil, fmt.Errorf("voice %q has no aggregated stream: %w", voice, ErrConfig)
		}
		if minLen == -1 || len(evs) < minLen {
			minLen = len(evs)
		}
	}
	if order >= minLen {
		return nil, fmt.Errorf("order (%v) must be less than the minimum voice length (%v): %w", order, minLen, ErrConfig)
	}

	group := func(i int) string {
		g := Group{Events: make([]event.Event, len(voices))}
		for vi, voice := range voices {
			g.Events[vi] = streams[voice][i%minLen]
		}
		return g.Key()
	}

	counts := make(map[string]map[string]float64)
	colSet := make(map[string]bool)
	for i := 0; i < minLen; i++ {
		segments := make([]string, order)
		for j := 0; j < order; j++ {
			segments[j] = group(i + j)
		}
		src := joinSegments(segments)
		dest := group(i + order)

		row, ok := counts[src]
		if !ok {
			row = make(map[string]float64)
			counts[src] = row
		}
		row[dest]++
		colSet[dest] = true
	}

	t := &Table{order: order}
	for k := range counts {
		t.rows = append(t.rows, k)
	}
	for k := range colSet {
		t.cols = append(t.cols, k)
	}
	sort.Strings(t.rows)
	sort.Strings(t.cols)
	t.buildIndexes()

	t.probs = make([][]float64, len(t.rows))
	for ri, row := range t.rows {
		t.probs[ri] = make([]float64, len(t.cols))
		for col, n := range counts[row] {
			t.probs[ri][t.colIt[col]] = n
		}
	}
	t.normalizeRows()
	return t, nil
}

func joinSegments(segments []string) string {
	s := segments[0]
	for _, seg := range segments[1:] {
		s += stepSep + seg
	}
	return s
}

func (t *Table) buildIndexes() {
	t.rowIt = make(map[string]int, len(t.rows))
	for i, k := range t.rows {
		t.rowIt[k] = i
	}
	t.colIt = make(map[string]int, len(t.cols))
	for i, k := range t.cols {
		t.colIt[k] = i
	}
}

// normalizeRows makes every row a probability distribution. A row summing to
// zero is first filled with ones: a state with no observed successors is
// treated as recurrent so the generator can never hit a dead end.
func (t *Table) normalizeRows() {
	for ri := range t.probs {
		var sum float64
		for _, p := range t.probs[ri] {
			sum += p
		}
		if sum == 0 {
			for ci := range t.probs[ri] {
				t.probs[ri][ci] = 1.0
			}
			sum = float64(len(t.probs[ri]))
		}
		for ci := range t.probs[ri] {
			t.probs[ri][ci] /= sum
		}
	}
}
