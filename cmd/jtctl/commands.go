package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/jodytama/game/engine"
)

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func listCards(w io.Writer) error {
	cards := engine.AllCards()
	fmt.Fprintf(w, "%d cards\n", len(cards))
	for _, card := range cards {
		fmt.Fprintf(w, "\n%s (%d moves)\n%s\n", card.Name, len(card.Offsets()), indent(engine.FormatPattern(card.Pattern), "  "))
	}
	return nil
}

func showCard(w io.Writer, name string) error {
	if name == "" {
		return errors.New("card name required")
	}
	card, ok := engine.LookupCard(name)
	if !ok {
		return fmt.Errorf("unknown card %q (known: %s)", name, strings.Join(engine.CardNames(), ", "))
	}

	fmt.Fprintf(w, "%s\n%s\n\nOffsets (row, col):\n", card.Name, indent(engine.FormatPattern(card.Pattern), "  "))
	for _, off := range card.Offsets() {
		fmt.Fprintf(w, "  (%+d, %+d)\n", off.DRow, off.DCol)
	}
	fmt.Fprintf(w, "\nRotated (player 2 in rotate_second_player variants):\n%s\n", indent(engine.FormatPattern(card.Pattern.Rotated()), "  "))
	return nil
}

func loadConfig(path string) (*engine.GameConfig, error) {
	if path == "" {
		return engine.DefaultGameConfig(), nil
	}
	return engine.LoadGameConfig(path)
}

func deal(w io.Writer, configPath string, seed *uint64) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	s := rand.Uint64()
	if seed != nil {
		s = *seed
	} else if config.Seed != nil {
		s = *config.Seed
	}

	eng, err := engine.NewEngine(config, engine.WithSeed(s))
	if err != nil {
		return err
	}
	state := eng.GetState()

	fmt.Fprintf(w, "Variant: %s\nSeed: %d\n\n", config.Name, s)
	fmt.Fprintf(w, "%s\n\n", indent(engine.FormatBoard(state.Board), "  "))
	fmt.Fprintf(w, "Player 1: %s\n", strings.Join(state.Hands.Player1, ", "))
	fmt.Fprintf(w, "Player 2: %s\n", strings.Join(state.Hands.Player2, ", "))
	fmt.Fprintf(w, "Center:   %s\n", state.Hands.Center)

	dealt := append(append(append([]string{}, state.Hands.Player1...), state.Hands.Player2...), state.Hands.Center)
	for _, name := range dealt {
		card, _ := engine.LookupCard(name)
		fmt.Fprintf(w, "\n%s\n%s\n", name, indent(engine.FormatPattern(card.Pattern), "  "))
	}

	moves := 0
	for _, name := range state.Hands.Player1 {
		moves += len(eng.LegalMovesForCard(name))
	}
	fmt.Fprintf(w, "\nPlayer 1 opening moves: %d\n", moves)
	return nil
}

func variantFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read config dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// checkVariant loads a file and deals one game with it
func checkVariant(path string) (*engine.GameConfig, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}
	if _, err := engine.NewEngine(config, engine.WithSeed(1)); err != nil {
		return nil, err
	}
	return config, nil
}

func validateDir(w io.Writer, dir string) error {
	files, err := variantFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule variant files in %s", dir)
	}

	invalid := 0
	for _, file := range files {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), filepath.Base(file))

		config, err := checkVariant(file)
		if err != nil {
			invalid++
			fmt.Fprintln(w, "❌ INVALID")
			fmt.Fprintf(w, "  ❌ %v\n", err)
			continue
		}

		fmt.Fprintln(w, "✅ VALID")
		fmt.Fprintf(w, "  ✓ Name: %s\n", config.Name)
		fmt.Fprintf(w, "  ✓ Deck: %d cards\n", len(config.Pool()))
		fmt.Fprintf(w, "  ✓ Rotate for player 2: %t\n", config.RotateSecondPlayer)
		if config.Seed != nil {
			fmt.Fprintf(w, "  ✓ Fixed seed: %d\n", *config.Seed)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if invalid > 0 {
		fmt.Fprintln(w, "❌ Some configurations have errors")
		return fmt.Errorf("%d of %d configurations are invalid", invalid, len(files))
	}
	fmt.Fprintln(w, "✅ All configurations are valid!")
	return nil
}

// mobility summarizes player 1's opening move counts over a set of deals
type mobility struct {
	min, max, total, deals int
	noForward              int
}

func (m mobility) average() float64 {
	if m.deals == 0 {
		return 0
	}
	return float64(m.total) / float64(m.deals)
}

func openingMobility(config *engine.GameConfig, deals int) (mobility, error) {
	m := mobility{min: -1}
	for seed := uint64(1); seed <= uint64(deals); seed++ {
		eng, err := engine.NewEngine(config, engine.WithSeed(seed))
		if err != nil {
			return m, err
		}

		count, forward := 0, 0
		for _, name := range eng.GetPlayerCards(engine.Player1) {
			for _, mv := range eng.LegalMovesForCard(name) {
				count++
				if mv.To.Row < mv.From.Row {
					forward++
				}
			}
		}

		if m.min < 0 || count < m.min {
			m.min = count
		}
		if count > m.max {
			m.max = count
		}
		if forward == 0 {
			m.noForward++
		}
		m.total += count
		m.deals++
	}
	return m, nil
}

func analyzeDir(w io.Writer, dir string, deals int) error {
	files, err := variantFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))

		config, err := checkVariant(file)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}

		m, err := openingMobility(config, deals)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(w, "Name: %s\n", config.Name)
		fmt.Fprintf(w, "Deck: %d cards\n", len(config.Pool()))
		fmt.Fprintf(w, "Deals sampled: %d\n", m.deals)
		fmt.Fprintf(w, "Player 1 opening moves: avg %.2f, min %d, max %d\n", m.average(), m.min, m.max)
		if m.noForward > 0 {
			fmt.Fprintf(w, "⚠️  %d deals leave player 1 without a forward opening move\n", m.noForward)
		} else {
			fmt.Fprintln(w, "✅ Every sampled deal offers player 1 a forward opening move")
		}
	}
	return nil
}
