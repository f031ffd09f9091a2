package engine

import (
	"reflect"
	"testing"
)

func TestDeal(t *testing.T) {
	pool := CardNames()
	hands, err := Deal(pool, NewSeededRand(8))
	if err != nil {
		t.Fatalf("Deal failed: %v", err)
	}

	if len(hands.Player1) != HandSize || len(hands.Player2) != HandSize || hands.Center == "" {
		t.Fatalf("Expected a 2/2/1 split, got %+v", hands)
	}
	seen := map[string]bool{}
	for _, name := range append(append(hands.Player1, hands.Player2...), hands.Center) {
		if seen[name] {
			t.Errorf("Card %q dealt twice", name)
		}
		seen[name] = true
	}

	if !reflect.DeepEqual(pool, CardNames()) {
		t.Error("Deal must not reorder the caller's pool")
	}
}

func TestDeal_SameSeedSameHands(t *testing.T) {
	a, _ := Deal(CardNames(), NewSeededRand(21))
	b, _ := Deal(CardNames(), NewSeededRand(21))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical deals, got %+v and %+v", a, b)
	}
}

func TestDeal_SeedsDiffer(t *testing.T) {
	first, _ := Deal(CardNames(), NewSeededRand(0))
	for seed := uint64(1); seed < 20; seed++ {
		h, _ := Deal(CardNames(), NewSeededRand(seed))
		if !reflect.DeepEqual(h, first) {
			return
		}
	}
	t.Error("Expected at least one of 20 seeds to produce a different deal")
}

func TestDeal_ShortPool(t *testing.T) {
	if _, err := Deal([]string{"Boar", "Crab", "Crane", "Eel"}, NewSeededRand(1)); err == nil {
		t.Error("Expected error for a pool smaller than five cards")
	}
}

func TestCardPile_ShuffleKeepsCards(t *testing.T) {
	pile := cardPile(CardNames())
	pile.Shuffle(NewSeededRand(3))

	if len(pile) != CatalogSize {
		t.Fatalf("Expected %d cards after shuffle, got %d", CatalogSize, len(pile))
	}
	counts := map[string]int{}
	for _, name := range pile {
		counts[name]++
	}
	for _, name := range CardNames() {
		if counts[name] != 1 {
			t.Errorf("Card %q appears %d times after shuffle", name, counts[name])
		}
	}
}
