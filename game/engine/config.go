package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GameConfig describes a rule variant: which cards are in the draw pool and
// how patterns are oriented for the second player.
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Deck is the pool the five active cards are drawn from. Empty means the full catalog.
	Deck []string `json:"deck,omitempty" yaml:"deck,omitempty"`

	// RotateSecondPlayer turns every pattern 180 degrees for player 2
	RotateSecondPlayer bool `json:"rotate_second_player" yaml:"rotate_second_player"`

	// Seed fixes the shuffle for every game created from this config
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Messages Messages `json:"messages" yaml:"messages"`
}

// Messages are the status lines shown to players
type Messages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Turn    string `json:"turn" yaml:"turn"`       // %d = player
	Victory string `json:"victory" yaml:"victory"` // %d = winner, %s = reason
}

// Default status lines
const (
	DefaultWelcome = "Welcome to Jody-Tama! Player 1 moves first."
	DefaultTurn    = "Player %d to move"
	DefaultVictory = "Player %d wins: %s"
)

// DefaultGameConfig returns the classic variant over the full catalog
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Standard rules with all 17 cards in the draw pool",
		Messages: Messages{
			Welcome: DefaultWelcome,
			Turn:    DefaultTurn,
			Victory: DefaultVictory,
		},
	}
}

// Pool returns the card names the deal is drawn from
func (c *GameConfig) Pool() []string {
	if c == nil || len(c.Deck) == 0 {
		return CardNames()
	}
	out := make([]string, len(c.Deck))
	copy(out, c.Deck)
	return out
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if len(config.Deck) > 0 {
		if len(config.Deck) < DealSize {
			return fmt.Errorf("config validation: deck must contain at least %d cards, got %d", DealSize, len(config.Deck))
		}
		seen := make(map[string]bool, len(config.Deck))
		for i, name := range config.Deck {
			if _, ok := LookupCard(name); !ok {
				return fmt.Errorf("config validation: deck[%d]: unknown card %q", i, name)
			}
			if seen[name] {
				return fmt.Errorf("config validation: deck[%d]: duplicate card %q", i, name)
			}
			seen[name] = true
		}
	}

	if config.Messages.Turn != "" && !strings.Contains(config.Messages.Turn, "%d") {
		return fmt.Errorf("config validation: messages.turn must contain %%d for the player")
	}
	if config.Messages.Victory != "" {
		if !strings.Contains(config.Messages.Victory, "%d") || !strings.Contains(config.Messages.Victory, "%s") {
			return fmt.Errorf("config validation: messages.victory must contain %%d for the winner and %%s for the reason")
		}
	}

	return nil
}

// LoadGameConfig reads a config file; .yaml and .yml are decoded as YAML, anything else as JSON
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	config, err := DecodeGameConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DecodeGameConfig unmarshals data according to the file extension
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// EncodeGameConfig marshals config according to the file extension
func EncodeGameConfig(config *GameConfig, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	default:
		return json.MarshalIndent(config, "", "  ")
	}
}

func (c *GameConfig) welcome() string {
	if c != nil && c.Messages.Welcome != "" {
		return c.Messages.Welcome
	}
	return DefaultWelcome
}

func (c *GameConfig) turnMessage(player PlayerID) string {
	format := DefaultTurn
	if c != nil && c.Messages.Turn != "" {
		format = c.Messages.Turn
	}
	return fmt.Sprintf(format, int(player))
}

func (c *GameConfig) victoryMessage(o *Outcome) string {
	format := DefaultVictory
	if c != nil && c.Messages.Victory != "" {
		format = c.Messages.Victory
	}
	return fmt.Sprintf(format, int(o.Winner), o.Reason)
}
