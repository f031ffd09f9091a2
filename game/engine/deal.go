package engine

import (
	"fmt"
	"math/rand/v2"
)

type cardPile []string

// Shuffle permutes the pile in place (Fisher-Yates)
func (p *cardPile) Shuffle(r *rand.Rand) {
	n := len(*p)
	for i := n - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		(*p)[i], (*p)[j] = (*p)[j], (*p)[i]
	}
}

// Deal shuffles pool and splits the first five cards into two hands and a center card
func Deal(pool []string, r *rand.Rand) (Hands, error) {
	if len(pool) < DealSize {
		return Hands{}, fmt.Errorf("deal: need at least %d cards, got %d", DealSize, len(pool))
	}
	pile := make(cardPile, len(pool))
	copy(pile, pool)
	pile.Shuffle(r)

	return Hands{
		Player1: []string{pile[0], pile[1]},
		Player2: []string{pile[2], pile[3]},
		Center:  pile[4],
	}, nil
}

// NewSeededRand returns a deterministic PCG source for the given seed
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
