package engine

import "fmt"

// assertInvariants panics when the engine reaches a state no sequence of
// public calls should produce.
func (e *GameEngine) assertInvariants() {
	seen := make(map[string]bool, DealSize)
	for i, hand := range e.hands {
		if len(hand) != HandSize {
			panic(fmt.Sprintf("engine invariant: player %d holds %d cards", i+1, len(hand)))
		}
		for _, name := range hand {
			if seen[name] {
				panic(fmt.Sprintf("engine invariant: card %q assigned twice", name))
			}
			seen[name] = true
		}
	}
	if e.center == "" || seen[e.center] {
		panic(fmt.Sprintf("engine invariant: bad center card %q", e.center))
	}

	for _, p := range []PlayerID{Player1, Player2} {
		if n := e.board.countMasters(p); n > 1 {
			panic(fmt.Sprintf("engine invariant: player %d has %d masters", p, n))
		}
	}

	if e.selection.Kind == SelectionPiece && e.selection.Card != "" {
		panic("engine invariant: selection holds both a piece and a card")
	}
}
