package markov

import (
	"fmt"
	"math/rand"
)

// Composition is a generated sequence of multi-voice time steps plus
// sampling diagnostics.
type Composition struct {
	Groups []Group
	// DeadEnds counts steps where the current state had no positive
	// successor and the previous output was repeated. The normalization
	// fallback makes this unreachable for freshly built tables, so a
	// nonzero value is worth surfacing.
	DeadEnds int
}

// Compose samples a new sequence of steps+1 groups from the table. The seed
// output is the most recent time step of a uniformly drawn state; every
// further group is drawn from the current state's row by inverse-CDF
// sampling, after which the state window slides forward one step.
//
// All randomness comes from rng, so a seeded source reproduces the same
// composition.
func (t *Table) Compose(rng *rand.Rand, steps int) (*Composition, error) {
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("transition table has no states: %w", ErrConfig)
	}
	if steps < 0 {
		return nil, fmt.Errorf("steps (%v) must not be negative: %w", steps, ErrConfig)
	}

	state, err := DecodeState(t.rows[rng.Intn(len(t.rows))])
	if err != nil {
		return nil, fmt.Errorf("corrupt state key: %w", err)
	}

	comp := &Composition{Groups: make([]Group, 0, steps+1)}
	comp.Groups = append(comp.Groups, state.Latest())

	for n := 0; n < steps; n++ {
		next, ok := t.drawSuccessor(rng, state.Key())
		if !ok {
			// dead end: repeat the previous output and keep going
			comp.Groups = append(comp.Groups, comp.Groups[len(comp.Groups)-1])
			comp.DeadEnds++
			continue
		}
		g, err := DecodeGroup(next)
		if err != nil {
			return nil, fmt.Errorf("corrupt successor key: %w", err)
		}
		comp.Groups = append(comp.Groups, g)
		state = state.Advance(g)
	}
	return comp, nil
}

// drawSuccessor walks the row's positive-probability successors in column
// order, accumulating probability mass until it exceeds the uniform draw.
func (t *Table) drawSuccessor(rng *rand.Rand, rowKey string) (string, bool) {
	ri, ok := t.rowIt[rowKey]
	if !ok {
		return "", false
	}
	row := t.probs[ri]

	u := rng.Float64()
	var sum float64
	last := -1
	for ci, p := range row {
		if p <= 0 {
			continue
		}
		sum += p
		last = ci
		if u < sum {
			return t.cols[ci], true
		}
	}
	if last == -1 {
		return "", false
	}
	// floating residue left u unreached; the last positive entry wins
	return t.cols[last], true
}
