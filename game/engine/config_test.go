package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultGameConfig(t *testing.T) {
	config := DefaultGameConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if len(config.Pool()) != CatalogSize {
		t.Errorf("Expected the full catalog as pool, got %d cards", len(config.Pool()))
	}
	if config.RotateSecondPlayer {
		t.Error("Expected patterns unrotated by default")
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*GameConfig)
		wantErr string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"empty name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"empty description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"short deck", func(c *GameConfig) { c.Deck = []string{"Boar", "Crab"} }, "at least 5 cards"},
		{"unknown card", func(c *GameConfig) {
			c.Deck = []string{"Boar", "Crab", "Crane", "Eel", "Unicorn"}
		}, "unknown card"},
		{"duplicate card", func(c *GameConfig) {
			c.Deck = []string{"Boar", "Crab", "Crane", "Eel", "Boar"}
		}, "duplicate card"},
		{"turn without player", func(c *GameConfig) { c.Messages.Turn = "Next!" }, "messages.turn"},
		{"victory without reason", func(c *GameConfig) { c.Messages.Victory = "Player %d wins" }, "messages.victory"},
		{"empty messages use defaults", func(c *GameConfig) { c.Messages = Messages{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGameConfig()
			tt.modify(config)
			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestDecodeGameConfig_JSON(t *testing.T) {
	data := []byte(`{
		"name": "mini",
		"description": "Five card variant",
		"deck": ["Boar", "Crab", "Crane", "Eel", "Tiger"],
		"rotate_second_player": true,
		"seed": 42,
		"messages": {"turn": "P%d"}
	}`)

	config, err := DecodeGameConfig(data, ".json")
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if config.Name != "mini" || len(config.Deck) != 5 || !config.RotateSecondPlayer {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.Seed == nil || *config.Seed != 42 {
		t.Errorf("Expected seed 42, got %v", config.Seed)
	}
	if config.Messages.Turn != "P%d" {
		t.Errorf("Expected turn message P%%d, got %q", config.Messages.Turn)
	}
}

func TestDecodeGameConfig_YAML(t *testing.T) {
	data := []byte(`name: rotated
description: Second player sees patterns from their side
rotate_second_player: true
messages:
  victory: "%d won by %s"
`)

	config, err := DecodeGameConfig(data, ".yaml")
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if config.Name != "rotated" || !config.RotateSecondPlayer {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.Seed != nil {
		t.Errorf("Expected no seed, got %d", *config.Seed)
	}
	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Expected decoded config to be valid: %v", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()

	config := DefaultGameConfig()
	config.Name = "saved"
	for _, ext := range []string{".json", ".yml"} {
		data, err := EncodeGameConfig(config, ext)
		if err != nil {
			t.Fatalf("Failed to encode %s: %v", ext, err)
		}
		path := filepath.Join(dir, "saved"+ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}

		loaded, err := LoadGameConfig(path)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", path, err)
		}
		if loaded.Name != "saved" || loaded.Messages.Turn != DefaultTurn {
			t.Errorf("Unexpected config loaded from %s: %+v", ext, loaded)
		}
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"name": "bad"}`), 0644)
	if _, err := LoadGameConfig(bad); err == nil {
		t.Error("Expected validation error for config without description")
	}
}

func TestConfigMessages(t *testing.T) {
	config := createTestConfig()
	if got := config.turnMessage(Player2); got != "Turn: player 2" {
		t.Errorf("turnMessage = %q", got)
	}
	outcome := &Outcome{Winner: Player1, Reason: ReasonTempleReached}
	if got := config.victoryMessage(outcome); got != "Player 1 won (Master reached temple)" {
		t.Errorf("victoryMessage = %q", got)
	}

	empty := &GameConfig{}
	if got := empty.turnMessage(Player1); got != "Player 1 to move" {
		t.Errorf("default turnMessage = %q", got)
	}
	if got := empty.welcome(); got != DefaultWelcome {
		t.Errorf("default welcome = %q", got)
	}
}
