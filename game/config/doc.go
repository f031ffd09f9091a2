// Package config provides rule variant management for Jody-Tama.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation through the engine package
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the configs directory defines one variant:
//   - The card pool the five active cards are drawn from
//   - Whether patterns are rotated for the second player
//   - An optional fixed shuffle seed
//   - Status messages for the welcome, turn and victory events
//
// A configuration is addressed by its file name without extension, so
// configs/classic.json and configs/rotated.yaml are "classic" and "rotated".
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("rotated")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
