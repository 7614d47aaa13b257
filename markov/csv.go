package markov

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// WriteCSV persists the table as a row/column-labeled grid: an empty corner
// cell, the successor keys as the header, then one record per state key.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{""}, t.cols...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(t.cols)+1)
	for ri, row := range t.rows {
		record[0] = row
		for ci, p := range t.probs[ri] {
			record[ci+1] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV restores a table persisted by WriteCSV. Labels are re-sorted so
// that sampling order matches a freshly built table. The order is recovered
// from the state keys themselves.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table file %v: %w", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("table file %v has no transitions", path)
	}

	cols := records[0][1:]
	byRow := make(map[string][]float64, len(records)-1)
	var rows []string
	for _, rec := range records[1:] {
		if len(rec) != len(cols)+1 {
			return nil, fmt.Errorf("table file %v: row %q has %v cells, want %v", path, rec[0], len(rec)-1, len(cols))
		}
		probs := make([]float64, len(cols))
		for i, cell := range rec[1:] {
			p, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("table file %v: bad probability %q: %w", path, cell, err)
			}
			probs[i] = p
		}
		rows = append(rows, rec[0])
		byRow[rec[0]] = probs
	}

	t := &Table{
		order: strings.Count(rows[0], stepSep) + 1,
		rows:  rows,
		cols:  append([]string(nil), cols...),
	}
	sort.Strings(t.rows)
	colOrder := make(map[string]int, len(cols))
	for i, c := range cols {
		colOrder[c] = i
	}
	sort.Strings(t.cols)

	// a single malformed key rejects the whole load
	for _, row := range t.rows {
		if _, err := DecodeState(row); err != nil {
			return nil, fmt.Errorf("table file %v: %w", path, err)
		}
	}
	for _, col := range t.cols {
		if _, err := DecodeGroup(col); err != nil {
			return nil, fmt.Errorf("table file %v: %w", path, err)
		}
	}

	t.buildIndexes()
	t.probs = make([][]float64, len(t.rows))
	for ri, row := range t.rows {
		src := byRow[row]
		t.probs[ri] = make([]float64, len(t.cols))
		for ci, col := range t.cols {
			t.probs[ri][ci] = src[colOrder[col]]
		}
	}
	return t, nil
}
