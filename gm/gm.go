package gm

import (
	"fmt"
	"sort"
	"strings"
)

type program struct {
	number     uint8
	percussion bool
}

// programs maps friendly instrument names to General MIDI program numbers.
// Percussion entries are routed to channel 10 instead of a program change.
var programs = map[string]program{
	"piano":           {0, false},
	"bright piano":    {1, false},
	"electric piano":  {4, false},
	"harpsichord":     {6, false},
	"celesta":         {8, false},
	"glockenspiel":    {9, false},
	"music box":       {10, false},
	"vibraphone":      {11, false},
	"marimba":         {12, false},
	"xylophone":       {13, false},
	"organ":           {19, false},
	"accordion":       {21, false},
	"harmonica":       {22, false},
	"guitar":          {24, false},
	"steel guitar":    {25, false},
	"electric guitar": {27, false},
	"bass":            {32, false},
	"violin":          {40, false},
	"viola":           {41, false},
	"cello":           {42, false},
	"contrabass":      {43, false},
	"harp":            {46, false},
	"timpani":         {47, false},
	"strings":         {48, false},
	"choir":           {52, false},
	"trumpet":         {56, false},
	"trombone":        {57, false},
	"tuba":            {58, false},
	"french horn":     {60, false},
	"sax":             {65, false},
	"oboe":            {68, false},
	"clarinet":        {71, false},
	"piccolo":         {72, false},
	"flute":           {73, false},
	"recorder":        {74, false},
	"banjo":           {105, false},
	"steel drums":     {114, false},
	"woodblock":       {115, false},
	"drums":           {0, true},
}

// Program resolves a friendly instrument name (case-insensitive) to its
// General MIDI program number and whether it belongs on the percussion
// channel.
func Program(name string) (uint8, bool, error) {
	p, ok := programs[strings.ToLower(name)]
	if !ok {
		return 0, false, fmt.Errorf("unknown instrument %q. Available options: %v", name, strings.Join(Names(), ", "))
	}
	return p.number, p.percussion, nil
}

// Names lists the known instrument names, sorted.
func Names() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
