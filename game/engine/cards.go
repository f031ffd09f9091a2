package engine

import "sort"

// Pattern is a 3x3 movement template centered on the moving piece.
// Cell [r][c] licenses the offset (r-1, c-1); any non-zero value is a move.
type Pattern [PatternSize][PatternSize]int

// Card is an immutable named movement template
type Card struct {
	Name    string  `json:"name"`
	Pattern Pattern `json:"pattern"`
}

// Offset is a relative (row, col) displacement
type Offset struct {
	DRow int `json:"drow"`
	DCol int `json:"dcol"`
}

// Rotated returns the pattern turned 180 degrees
func (p Pattern) Rotated() Pattern {
	var out Pattern
	for r := 0; r < PatternSize; r++ {
		for c := 0; c < PatternSize; c++ {
			out[r][c] = p[PatternSize-1-r][PatternSize-1-c]
		}
	}
	return out
}

// Offsets lists the displacements the card permits, in row-major order
func (c Card) Offsets() []Offset {
	var offsets []Offset
	for r := 0; r < PatternSize; r++ {
		for col := 0; col < PatternSize; col++ {
			if c.Pattern[r][col] != 0 {
				offsets = append(offsets, Offset{DRow: r - 1, DCol: col - 1})
			}
		}
	}
	return offsets
}

// IsValidMove reports whether the displacement from -> to matches the pattern
func (c Card) IsValidMove(from, to Position) bool {
	pr := to.Row - from.Row + 1
	pc := to.Col - from.Col + 1
	if pr < 0 || pr >= PatternSize || pc < 0 || pc >= PatternSize {
		return false
	}
	return c.Pattern[pr][pc] != 0
}

var catalog = map[string]Card{
	"Boar":     {Name: "Boar", Pattern: Pattern{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}}},
	"Cobra":    {Name: "Cobra", Pattern: Pattern{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}},
	"Crab":     {Name: "Crab", Pattern: Pattern{{0, 0, 0}, {1, 0, 1}, {0, 0, 0}}},
	"Crane":    {Name: "Crane", Pattern: Pattern{{0, 1, 0}, {0, 0, 0}, {0, 1, 0}}},
	"Dragon":   {Name: "Dragon", Pattern: Pattern{{0, 0, 1}, {1, 0, 0}, {0, 0, 1}}},
	"Eel":      {Name: "Eel", Pattern: Pattern{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}}},
	"Elephant": {Name: "Elephant", Pattern: Pattern{{0, 1, 0}, {0, 1, 0}, {0, 0, 0}}},
	"Frog":     {Name: "Frog", Pattern: Pattern{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}},
	"Goose":    {Name: "Goose", Pattern: Pattern{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}}},
	"Horse":    {Name: "Horse", Pattern: Pattern{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
	"Mantis":   {Name: "Mantis", Pattern: Pattern{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}},
	"Monkey":   {Name: "Monkey", Pattern: Pattern{{0, 1, 0}, {0, 0, 0}, {0, 1, 0}}},
	"Ox":       {Name: "Ox", Pattern: Pattern{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
	"Rabbit":   {Name: "Rabbit", Pattern: Pattern{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}},
	"Rooster":  {Name: "Rooster", Pattern: Pattern{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}}},
	"Tiger":    {Name: "Tiger", Pattern: Pattern{{0, 0, 0}, {0, 0, 0}, {0, 2, 0}}},
	"Turtle":   {Name: "Turtle", Pattern: Pattern{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}},
}

var cardNames = func() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// CatalogSize is the number of cards in the full catalog
const CatalogSize = 17

// LookupCard returns the catalog card with the given name
func LookupCard(name string) (Card, bool) {
	card, ok := catalog[name]
	return card, ok
}

// CardNames returns every catalog card name in alphabetical order
func CardNames() []string {
	out := make([]string, len(cardNames))
	copy(out, cardNames)
	return out
}

// AllCards returns the full catalog in alphabetical order
func AllCards() []Card {
	cards := make([]Card, 0, len(cardNames))
	for _, name := range cardNames {
		cards = append(cards, catalog[name])
	}
	return cards
}
