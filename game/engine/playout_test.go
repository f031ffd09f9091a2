package engine

import (
	"math/rand/v2"
	"slices"
	"sort"
	"testing"
)

func activeCards(e *GameEngine) []string {
	cards := append(e.GetPlayerCards(Player1), e.GetPlayerCards(Player2)...)
	cards = append(cards, e.GetCenterCard())
	sort.Strings(cards)
	return cards
}

func allLegalMoves(e *GameEngine) []Move {
	var moves []Move
	for _, name := range e.GetPlayerCards(e.CurrentPlayer()) {
		moves = append(moves, e.LegalMovesForCard(name)...)
	}
	return moves
}

// TestRandomPlayouts plays seeded games to completion and checks the
// card and board invariants after every move.
func TestRandomPlayouts(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		engine := NewEngineWithDefaults(WithSeed(seed))
		picker := rand.New(rand.NewPCG(seed, 7))
		dealt := activeCards(engine)

		for turn := 0; turn < 200 && !engine.IsGameOver(); turn++ {
			moves := allLegalMoves(engine)
			if len(moves) == 0 {
				// A side with no legal move cannot act; the game stays in play.
				break
			}
			m := moves[picker.IntN(len(moves))]
			mover := engine.CurrentPlayer()

			if !engine.ExecuteMove(m.From.Row, m.From.Col, m.To.Row, m.To.Col, m.Card) {
				t.Fatalf("seed %d: legal move %+v rejected", seed, m)
			}

			if got := activeCards(engine); !slices.Equal(got, dealt) {
				t.Fatalf("seed %d: active cards changed from %v to %v", seed, dealt, got)
			}
			if engine.GetCenterCard() != m.Card {
				t.Fatalf("seed %d: expected %s in center, got %s", seed, m.Card, engine.GetCenterCard())
			}
			for _, p := range []PlayerID{Player1, Player2} {
				if n := len(engine.GetPlayerCards(p)); n != HandSize {
					t.Fatalf("seed %d: player %d holds %d cards", seed, p, n)
				}
			}
			if engine.IsGameOver() {
				if engine.GetOutcome().Winner != mover {
					t.Fatalf("seed %d: winner %d is not the mover %d", seed, engine.GetOutcome().Winner, mover)
				}
			} else if engine.CurrentPlayer() != mover.Opponent() {
				t.Fatalf("seed %d: turn did not pass", seed)
			}
		}

		if got := len(engine.GetMoveHistory()); got != engine.GetState().MoveCount {
			t.Errorf("seed %d: history length %d, move count %d", seed, got, engine.GetState().MoveCount)
		}
	}
}
